package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"userwatch/internal/model"
	"userwatch/internal/query"
	"userwatch/internal/repository"
)

func newTestStore(t *testing.T) (*gorm.DB, *query.Service) {
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
	return db, query.NewService(db)
}

func seedDossier(t *testing.T, db *gorm.DB, userID int64) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	users := repository.NewUserRepository(db)
	if err := users.Create(ctx, &model.User{
		UserID: userID, FirstName: "Alice", CurrentUsername: "alice2",
		FirstSeen: base, LastSeen: base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	histories := repository.NewHistoryRepository(db)
	for i, username := range []string{"alice", "alice2"} {
		if err := histories.Append(ctx, &model.UsernameHistory{
			UserID: userID, Username: username, ChangedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
	messages := repository.NewMessageRepository(db)
	for i := 0; i < 3; i++ {
		if _, err := messages.InsertIfAbsent(ctx, &model.Message{
			MessageID: i + 1, ChatID: -9, UserID: userID,
			MessageText: "m", MessageDate: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
}

func TestExportUserWritesDossier(t *testing.T) {
	db, queries := newTestStore(t)
	seedDossier(t, db, 42)
	dir := t.TempDir()

	path, err := NewExporter(queries, dir).ExportUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("report written outside exports dir: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if _, err := uuid.Parse(report.ReportID); err != nil {
		t.Fatalf("report id %q: %v", report.ReportID, err)
	}
	if report.User == nil || report.User.UserID != 42 {
		t.Fatalf("user missing: %+v", report.User)
	}
	if len(report.UsernameHistory) != 2 || len(report.Messages) != 3 {
		t.Fatalf("dossier incomplete: %d history, %d messages",
			len(report.UsernameHistory), len(report.Messages))
	}
}

func TestExportUnknownUserFails(t *testing.T) {
	_, queries := newTestStore(t)
	if _, err := NewExporter(queries, t.TempDir()).ExportUser(context.Background(), 7); err == nil {
		t.Fatal("exporting an unobserved user must fail")
	}
}

func TestExportAllWritesOneFilePerUser(t *testing.T) {
	db, queries := newTestStore(t)
	seedDossier(t, db, 42)
	seedDossier(t, db, 43)
	dir := t.TempDir()

	n, err := NewExporter(queries, dir).ExportAll(context.Background())
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 reports, wrote %d", n)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 files, found %d", len(entries))
	}
}
