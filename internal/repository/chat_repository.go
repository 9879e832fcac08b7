package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"userwatch/internal/model"
)

// ChatRepository caches chat metadata fetched on demand.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Get(ctx context.Context, chatID int64) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// Upsert stores fresh chat metadata, preserving FirstSeen of an existing row.
func (r *ChatRepository) Upsert(ctx context.Context, chat *model.Chat, now time.Time) error {
	db := r.db.WithContext(ctx)
	var existing model.Chat
	err := db.Where("chat_id = ?", chat.ChatID).First(&existing).Error
	switch {
	case err == nil:
		chat.FirstSeen = existing.FirstSeen
		chat.LastUpdated = now
		if err := db.Model(&model.Chat{}).Where("chat_id = ?", chat.ChatID).
			Updates(map[string]interface{}{
				"chat_type":    chat.ChatType,
				"title":        chat.Title,
				"username":     chat.Username,
				"description":  chat.Description,
				"member_count": chat.MemberCount,
				"last_updated": chat.LastUpdated,
			}).Error; err != nil {
			return fmt.Errorf("update chat %d: %w", chat.ChatID, err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		chat.FirstSeen = now
		chat.LastUpdated = now
		if err := db.Create(chat).Error; err != nil {
			return fmt.Errorf("create chat %d: %w", chat.ChatID, err)
		}
		return nil
	default:
		return fmt.Errorf("find chat %d: %w", chat.ChatID, err)
	}
}

func (r *ChatRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Chat{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
