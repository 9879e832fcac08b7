package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Remote failure taxonomy. Anything not classified below is treated as
// transient and retried by the poller.
var (
	// ErrAuth marks an invalid or revoked bot token. Terminal: the
	// ingestion loop stops and surfaces it to the operator.
	ErrAuth = errors.New("telegram: authentication failed")

	// ErrNotFound marks a missing chat, member or user. Callers propagate
	// it as an empty result, not a failure.
	ErrNotFound = errors.New("telegram: not found")
)

// RateLimitedError carries the cooldown advertised by the API.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("telegram: rate limited, retry after %s", e.RetryAfter)
}

// classify maps a Bot API error onto the taxonomy above.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.RetryAfter > 0 || apiErr.Code == 429:
		after := time.Duration(apiErr.RetryAfter) * time.Second
		if after <= 0 {
			after = time.Second
		}
		return &RateLimitedError{RetryAfter: after}
	case apiErr.Code == 401:
		return fmt.Errorf("%w: %s", ErrAuth, apiErr.Message)
	case apiErr.Code == 404, strings.Contains(strings.ToLower(apiErr.Message), "not found"):
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	default:
		return err
	}
}
