package model

import "time"

// UsernameHistory is one entry in the append-only username ledger.
// Rows are never updated or deleted; an empty Username records the
// transition to "no username".
type UsernameHistory struct {
	ID        uint  `gorm:"primaryKey"`
	UserID    int64 `gorm:"index"`
	Username  string
	ChangedAt time.Time
}
