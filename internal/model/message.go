package model

import "time"

// Media types recorded on messages. Empty string means plain text.
const (
	MediaPhoto     = "photo"
	MediaVideo     = "video"
	MediaDocument  = "document"
	MediaSticker   = "sticker"
	MediaVoice     = "voice"
	MediaAudio     = "audio"
	MediaAnimation = "animation"
	MediaVideoNote = "video_note"
)

// Message is one logged group message. Message IDs are only unique within
// a chat, hence the composite key. Username and FirstName are denormalized
// copies of the sender's profile at send time so attribution survives later
// profile changes.
type Message struct {
	MessageID        int   `gorm:"primaryKey;autoIncrement:false"`
	ChatID           int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID           int64 `gorm:"index"`
	Username         string
	FirstName        string
	MessageText      string
	MessageDate      time.Time `gorm:"index"`
	MediaType        string
	ForwardedFrom    int64
	ReplyToMessageID int
}
