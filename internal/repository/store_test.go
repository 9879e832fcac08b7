package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"userwatch/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "userwatch.db"))
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

func TestMessageInsertIfAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	msg := model.Message{MessageID: 10, ChatID: -5, UserID: 1, MessageText: "first", MessageDate: time.Now()}
	inserted, err := repo.InsertIfAbsent(ctx, &msg)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !inserted {
		t.Fatal("first insert reported as no-op")
	}

	dup := model.Message{MessageID: 10, ChatID: -5, UserID: 1, MessageText: "changed", MessageDate: time.Now()}
	inserted, err = repo.InsertIfAbsent(ctx, &dup)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Fatal("duplicate key insert must be a no-op")
	}

	var stored model.Message
	if err := db.Where("message_id = ? AND chat_id = ?", 10, -5).First(&stored).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.MessageText != "first" {
		t.Fatalf("duplicate insert overwrote the row: %+v", stored)
	}

	// Same message id in another chat is a different message.
	other := model.Message{MessageID: 10, ChatID: -6, UserID: 1, MessageText: "other chat", MessageDate: time.Now()}
	inserted, err = repo.InsertIfAbsent(ctx, &other)
	if err != nil {
		t.Fatalf("other-chat insert: %v", err)
	}
	if !inserted {
		t.Fatal("message id is only unique per chat")
	}
}

func TestOffsetLoadSaveRoundtrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewOffsetRepository(db)
	ctx := context.Background()

	next, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if next != 0 {
		t.Fatalf("fresh store should start at 0, got %d", next)
	}

	for _, want := range []int{10, 11, 250} {
		if err := repo.Save(ctx, want); err != nil {
			t.Fatalf("save %d: %v", want, err)
		}
		got, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got != want {
			t.Fatalf("roundtrip: want %d, got %d", want, got)
		}
	}

	var rows int64
	if err := db.Model(&model.IngestOffset{}).Count(&rows).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Fatalf("offset must stay a single row, got %d", rows)
	}
}

func TestChatUpsertKeepsFirstSeen(t *testing.T) {
	db := newTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.Upsert(ctx, &model.Chat{ChatID: -5, ChatType: "group", Title: "old"}, t0); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	t1 := t0.Add(time.Hour)
	if err := repo.Upsert(ctx, &model.Chat{ChatID: -5, ChatType: "supergroup", Title: "new", MemberCount: 12}, t1); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	chat, err := repo.Get(ctx, -5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !chat.FirstSeen.Equal(t0) {
		t.Fatalf("first_seen must be preserved: %s", chat.FirstSeen)
	}
	if chat.Title != "new" || chat.MemberCount != 12 || !chat.LastUpdated.Equal(t1) {
		t.Fatalf("metadata not refreshed: %+v", chat)
	}
}
