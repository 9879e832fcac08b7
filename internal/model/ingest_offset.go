package model

import "time"

// IngestOffset is the single-row resumption cursor of the update poller:
// NextOffset is the update_id the next getUpdates call asks for.
type IngestOffset struct {
	ID         uint `gorm:"primaryKey"`
	NextOffset int
	UpdatedAt  time.Time
}
