package model

import "time"

// User stores the latest observed profile of a Telegram account.
// CurrentUsername is kept in lockstep with the newest UsernameHistory row;
// an empty string means the account has no username.
type User struct {
	UserID          int64 `gorm:"primaryKey;autoIncrement:false"`
	FirstName       string
	LastName        string
	CurrentUsername string `gorm:"index"`
	IsBot           bool
	LanguageCode    string
	FirstSeen       time.Time
	LastSeen        time.Time
}
