package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"userwatch/internal/model"
)

// HistoryRepository manages the append-only username ledger.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, entry *model.UsernameHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append username history for user %d: %w", entry.UserID, err)
	}
	return nil
}

// ListByUser returns the ledger for one user, newest change first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID int64) ([]model.UsernameHistory, error) {
	var entries []model.UsernameHistory
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("changed_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindPastHolders returns ledger entries whose username equals the given
// value (case-insensitive), newest first. Callers merge these with current
// matches and deduplicate per user.
func (r *HistoryRepository) FindPastHolders(ctx context.Context, username string) ([]model.UsernameHistory, error) {
	var entries []model.UsernameHistory
	if err := r.db.WithContext(ctx).
		Where("username <> '' AND LOWER(username) = LOWER(?)", username).
		Order("changed_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *HistoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.UsernameHistory{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
