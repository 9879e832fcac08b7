package model

import "time"

// Chat caches metadata about a monitored chat. Filled on demand from the
// Bot API by the chat directory, never by the ingestion pipeline.
type Chat struct {
	ChatID      int64 `gorm:"primaryKey;autoIncrement:false"`
	ChatType    string
	Title       string
	Username    string
	Description string
	MemberCount int
	FirstSeen   time.Time
	LastUpdated time.Time
}
