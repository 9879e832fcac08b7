package telegram

import (
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, got error)
	}{
		{
			name: "nil passes through",
			err:  nil,
			check: func(t *testing.T, got error) {
				if got != nil {
					t.Fatalf("got %v", got)
				}
			},
		},
		{
			name: "401 is terminal auth failure",
			err:  &tgbotapi.Error{Code: 401, Message: "Unauthorized"},
			check: func(t *testing.T, got error) {
				if !errors.Is(got, ErrAuth) {
					t.Fatalf("got %v", got)
				}
			},
		},
		{
			name: "429 carries the advertised cooldown",
			err: &tgbotapi.Error{
				Code:               429,
				Message:            "Too Many Requests",
				ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7},
			},
			check: func(t *testing.T, got error) {
				var limited *RateLimitedError
				if !errors.As(got, &limited) {
					t.Fatalf("got %v", got)
				}
				if limited.RetryAfter != 7*time.Second {
					t.Fatalf("retry after %s", limited.RetryAfter)
				}
			},
		},
		{
			name: "chat not found is an empty result",
			err:  &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"},
			check: func(t *testing.T, got error) {
				if !errors.Is(got, ErrNotFound) {
					t.Fatalf("got %v", got)
				}
			},
		},
		{
			name: "server errors stay transient",
			err:  &tgbotapi.Error{Code: 502, Message: "Bad Gateway"},
			check: func(t *testing.T, got error) {
				if errors.Is(got, ErrAuth) || errors.Is(got, ErrNotFound) {
					t.Fatalf("got %v", got)
				}
				var limited *RateLimitedError
				if errors.As(got, &limited) {
					t.Fatalf("got %v", got)
				}
			},
		},
		{
			name: "plain network errors stay transient",
			err:  errors.New("dial tcp: i/o timeout"),
			check: func(t *testing.T, got error) {
				if got == nil || errors.Is(got, ErrAuth) {
					t.Fatalf("got %v", got)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, classify(tc.err))
		})
	}
}
