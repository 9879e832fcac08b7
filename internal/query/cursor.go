package query

import (
	"context"

	"userwatch/internal/model"
	"userwatch/internal/repository"
)

const cursorPageSize = 100

// MessageCursor walks one user's messages in send order, fetching pages
// lazily. It holds no database resources between calls, only the position,
// so an abandoned cursor costs nothing.
type MessageCursor struct {
	messages *repository.MessageRepository
	userID   int64
	pageSize int

	buf      []model.Message
	next     int
	fetched  int
	finished bool
}

func newMessageCursor(messages *repository.MessageRepository, userID int64) *MessageCursor {
	return &MessageCursor{messages: messages, userID: userID, pageSize: cursorPageSize}
}

// Next returns the next message, or nil once the walk is finished.
func (c *MessageCursor) Next(ctx context.Context) (*model.Message, error) {
	if c.next >= len(c.buf) {
		if c.finished {
			return nil, nil
		}
		page, err := c.messages.ListByUserPage(ctx, c.userID, c.pageSize, c.fetched)
		if err != nil {
			return nil, err
		}
		if len(page) < c.pageSize {
			c.finished = true
		}
		if len(page) == 0 {
			return nil, nil
		}
		c.buf = page
		c.next = 0
		c.fetched += len(page)
	}
	msg := &c.buf[c.next]
	c.next++
	return msg, nil
}

// Collect drains the remainder of the walk into a slice.
func (c *MessageCursor) Collect(ctx context.Context) ([]model.Message, error) {
	var all []model.Message
	for {
		msg, err := c.Next(ctx)
		if err != nil {
			return nil, err
		}
		if msg == nil {
			return all, nil
		}
		all = append(all, *msg)
	}
}
