package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"userwatch/internal/model"
)

const offsetRowID = 1

// OffsetRepository persists the single ingestion cursor row. The poller is
// its only writer.
type OffsetRepository struct {
	db *gorm.DB
}

func NewOffsetRepository(db *gorm.DB) *OffsetRepository {
	return &OffsetRepository{db: db}
}

// Load returns the persisted next-offset, or 0 when ingestion has never run.
func (r *OffsetRepository) Load(ctx context.Context) (int, error) {
	var row model.IngestOffset
	err := r.db.WithContext(ctx).First(&row, offsetRowID).Error
	switch {
	case err == nil:
		return row.NextOffset, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, nil
	default:
		return 0, fmt.Errorf("load ingest offset: %w", err)
	}
}

func (r *OffsetRepository) Save(ctx context.Context, nextOffset int) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&model.IngestOffset{}).Where("id = ?", offsetRowID).
		Updates(map[string]interface{}{"next_offset": nextOffset, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("save ingest offset: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		row := model.IngestOffset{ID: offsetRowID, NextOffset: nextOffset, UpdatedAt: time.Now()}
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("save ingest offset: %w", err)
		}
	}
	return nil
}
