package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"userwatch/internal/model"
)

// MessageRepository handles the immutable message log.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// InsertIfAbsent stores a message unless a row with the same
// (message_id, chat_id) key already exists. Returns whether a row was
// written, so redelivered updates are a visible no-op.
func (r *MessageRepository) InsertIfAbsent(ctx context.Context, msg *model.Message) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(msg)
	if res.Error != nil {
		return false, fmt.Errorf("insert message %d/%d: %w", msg.ChatID, msg.MessageID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListByUserPage returns one page of a user's messages in send order.
// Paging by offset keeps the sequence restartable: a fresh walk always
// reflects the store as of that walk.
func (r *MessageRepository) ListByUserPage(ctx context.Context, userID int64, limit, offset int) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("message_date ASC, chat_id ASC, message_id ASC").
		Limit(limit).Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// SearchText finds messages containing the term, case-insensitive,
// oldest first.
func (r *MessageRepository) SearchText(ctx context.Context, term string, limit int) ([]model.Message, error) {
	var messages []model.Message
	q := r.db.WithContext(ctx).
		Where("message_text LIKE ?", "%"+term+"%").
		Order("message_date ASC, chat_id ASC, message_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Message{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
