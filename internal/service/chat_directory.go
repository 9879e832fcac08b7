package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"userwatch/internal/model"
	"userwatch/internal/repository"
	"userwatch/internal/telegram"
)

// ChatInfoClient is the slice of the Bot API the directory needs.
type ChatInfoClient interface {
	ChatInfo(ctx context.Context, chatID int64) (*tgbotapi.Chat, int, error)
}

// ChatDirectory resolves chat metadata on demand and caches it in the
// chats table. It is driven by the presentation layer only; the ingestion
// pipeline never consults or fills it.
type ChatDirectory struct {
	client ChatInfoClient
	chats  *repository.ChatRepository
}

func NewChatDirectory(client ChatInfoClient, chats *repository.ChatRepository) *ChatDirectory {
	return &ChatDirectory{client: client, chats: chats}
}

// Lookup fetches fresh metadata for a chat, falling back to the cached row
// when the API cannot serve the request. Returns nil when the chat is
// unknown on both sides.
func (d *ChatDirectory) Lookup(ctx context.Context, chatID int64) (*model.Chat, error) {
	info, memberCount, err := d.client.ChatInfo(ctx, chatID)
	if err != nil {
		cached, cacheErr := d.chats.Get(ctx, chatID)
		if cacheErr == nil {
			return cached, nil
		}
		if errors.Is(err, telegram.ErrNotFound) && errors.Is(cacheErr, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup chat %d: %w", chatID, err)
	}

	chat := &model.Chat{
		ChatID:      info.ID,
		ChatType:    info.Type,
		Title:       info.Title,
		Username:    info.UserName,
		Description: info.Description,
		MemberCount: memberCount,
	}
	if err := d.chats.Upsert(ctx, chat, time.Now()); err != nil {
		return nil, err
	}
	return chat, nil
}
