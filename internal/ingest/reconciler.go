package ingest

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"userwatch/internal/model"
	"userwatch/internal/repository"
)

// Reconciler turns one raw update into consistent entity state: a user
// upsert, a username-history append when the username moved, and the
// message row itself. All of it runs in a single transaction, so a failed
// update leaves no partial state behind.
type Reconciler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{db: db, now: time.Now}
}

// Apply reconciles one update. Updates without a message or without a
// sender (service messages) are a no-op. Apply is idempotent: redelivering
// the same update changes nothing beyond last_seen.
func (r *Reconciler) Apply(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}

	observedAt := r.now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reconcileSender(ctx, tx, msg.From, observedAt); err != nil {
			return err
		}
		_, err := repository.NewMessageRepository(tx).InsertIfAbsent(ctx, messageRecord(msg))
		return err
	})
}

// reconcileSender upserts the user row and appends to the username ledger
// when the observed username differs from the stored one. The comparison is
// byte-exact; a missing username counts as the distinct value "".
func reconcileSender(ctx context.Context, tx *gorm.DB, from *tgbotapi.User, observedAt time.Time) error {
	users := repository.NewUserRepository(tx)

	var previous string
	user, err := users.FindByID(ctx, from.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := model.User{
			UserID:       from.ID,
			FirstName:    from.FirstName,
			LastName:     from.LastName,
			IsBot:        from.IsBot,
			LanguageCode: from.LanguageCode,
			FirstSeen:    observedAt,
			LastSeen:     observedAt,
		}
		if err := users.Create(ctx, &created); err != nil {
			return err
		}
		previous = ""
	case err != nil:
		return err
	default:
		previous = user.CurrentUsername
		if err := users.UpdateProfile(ctx, from.ID, map[string]interface{}{
			"first_name":    from.FirstName,
			"last_name":     from.LastName,
			"is_bot":        from.IsBot,
			"language_code": from.LanguageCode,
			"last_seen":     observedAt,
		}); err != nil {
			return err
		}
	}

	if from.UserName == previous {
		return nil
	}
	histories := repository.NewHistoryRepository(tx)
	if err := histories.Append(ctx, &model.UsernameHistory{
		UserID:    from.ID,
		Username:  from.UserName,
		ChangedAt: observedAt,
	}); err != nil {
		return err
	}
	return users.SetCurrentUsername(ctx, from.ID, from.UserName)
}

func messageRecord(msg *tgbotapi.Message) *model.Message {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	record := &model.Message{
		MessageID:   msg.MessageID,
		ChatID:      msg.Chat.ID,
		UserID:      msg.From.ID,
		Username:    msg.From.UserName,
		FirstName:   msg.From.FirstName,
		MessageText: text,
		MessageDate: msg.Time(),
		MediaType:   mediaType(msg),
	}
	if msg.ForwardFrom != nil {
		record.ForwardedFrom = msg.ForwardFrom.ID
	}
	if msg.ReplyToMessage != nil {
		record.ReplyToMessageID = msg.ReplyToMessage.MessageID
	}
	return record
}

func mediaType(msg *tgbotapi.Message) string {
	switch {
	case len(msg.Photo) > 0:
		return model.MediaPhoto
	case msg.Video != nil:
		return model.MediaVideo
	case msg.Document != nil:
		return model.MediaDocument
	case msg.Sticker != nil:
		return model.MediaSticker
	case msg.Voice != nil:
		return model.MediaVoice
	case msg.Audio != nil:
		return model.MediaAudio
	case msg.Animation != nil:
		return model.MediaAnimation
	case msg.VideoNote != nil:
		return model.MediaVideoNote
	default:
		return ""
	}
}
