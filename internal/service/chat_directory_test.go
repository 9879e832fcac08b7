package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"userwatch/internal/repository"
	"userwatch/internal/telegram"
)

type fakeChatInfo struct {
	chat  *tgbotapi.Chat
	count int
	err   error
}

func (f *fakeChatInfo) ChatInfo(context.Context, int64) (*tgbotapi.Chat, int, error) {
	return f.chat, f.count, f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "userwatch.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestChatLookupCachesMetadata(t *testing.T) {
	db := newTestDB(t)
	chats := repository.NewChatRepository(db)
	remote := &fakeChatInfo{
		chat:  &tgbotapi.Chat{ID: -42, Type: "supergroup", Title: "ops", UserName: "opschat"},
		count: 120,
	}
	dir := NewChatDirectory(remote, chats)
	ctx := context.Background()

	chat, err := dir.Lookup(ctx, -42)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if chat.Title != "ops" || chat.MemberCount != 120 {
		t.Fatalf("unexpected chat: %+v", chat)
	}

	// Remote goes away: the cached row keeps serving.
	remote.chat, remote.err = nil, fmt.Errorf("%w: chat not found", telegram.ErrNotFound)
	cached, err := dir.Lookup(ctx, -42)
	if err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if cached == nil || cached.Title != "ops" {
		t.Fatalf("cache miss: %+v", cached)
	}
}

func TestChatLookupUnknownEverywhereIsEmpty(t *testing.T) {
	db := newTestDB(t)
	dir := NewChatDirectory(&fakeChatInfo{err: fmt.Errorf("%w: chat not found", telegram.ErrNotFound)},
		repository.NewChatRepository(db))

	chat, err := dir.Lookup(context.Background(), -1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if chat != nil {
		t.Fatalf("expected empty result, got %+v", chat)
	}
}

func TestChatLookupTransientErrorWithoutCachePropagates(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("dial tcp: timeout")
	dir := NewChatDirectory(&fakeChatInfo{err: boom}, repository.NewChatRepository(db))

	if _, err := dir.Lookup(context.Background(), -1); !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
