package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client wraps the Bot API surface this tool consumes: the getUpdates long
// poll for ingestion plus the on-demand lookup calls. All errors pass
// through classify so callers only deal with the local taxonomy.
type Client struct {
	api *tgbotapi.BotAPI
}

// New connects and validates the token via getMe.
func New(token string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", classify(err))
	}
	return &Client{api: api}, nil
}

// Self returns the bot's own account as reported by getMe.
func (c *Client) Self() tgbotapi.User {
	return c.api.Self
}

// FetchUpdates long-polls for updates with update_id >= offset. The remote
// call itself is not interruptible, so cancellation is reported on entry
// and takes full effect between batches.
func (c *Client) FetchUpdates(ctx context.Context, offset int, timeout time.Duration) ([]tgbotapi.Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := tgbotapi.NewUpdate(offset)
	cfg.Timeout = int(timeout.Seconds())
	updates, err := c.api.GetUpdates(cfg)
	if err != nil {
		return nil, classify(err)
	}
	return updates, nil
}

// ChatInfo fetches chat metadata and its member count.
func (c *Client) ChatInfo(ctx context.Context, chatID int64) (*tgbotapi.Chat, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	chat, err := c.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, 0, classify(err)
	}
	count, err := c.api.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		// Some chat types refuse the count call; the metadata is still useful.
		count = 0
	}
	return &chat, count, nil
}

func (c *Client) ChatMember(ctx context.Context, chatID, userID int64) (*tgbotapi.ChatMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return nil, classify(err)
	}
	return &member, nil
}

func (c *Client) ChatAdministrators(ctx context.Context, chatID int64) ([]tgbotapi.ChatMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	admins, err := c.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, classify(err)
	}
	return admins, nil
}

// ProfilePhotoCount returns how many profile photos the user exposes.
func (c *Client) ProfilePhotoCount(ctx context.Context, userID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	photos, err := c.api.GetUserProfilePhotos(tgbotapi.NewUserProfilePhotos(userID))
	if err != nil {
		return 0, classify(err)
	}
	return photos.TotalCount, nil
}
