package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"userwatch/internal/repository"
	"userwatch/internal/telegram"
)

const (
	backoffBase = 1 * time.Second
	backoffMax  = 30 * time.Second
)

// UpdateFetcher is the slice of the Bot API the poller needs.
type UpdateFetcher interface {
	FetchUpdates(ctx context.Context, offset int, timeout time.Duration) ([]tgbotapi.Update, error)
}

// Applier reconciles a single update into the store.
type Applier interface {
	Apply(ctx context.Context, update tgbotapi.Update) error
}

// Poller owns the ingestion cursor. It long-polls for update batches,
// hands every update to the reconciler once per delivery, then advances
// and persists the offset before the next fetch. Delivery is therefore
// at-least-once: a crash between reconciliation and the offset write
// redelivers the batch, which the reconciler tolerates.
type Poller struct {
	fetcher    UpdateFetcher
	reconciler Applier
	offsets    *repository.OffsetRepository
	timeout    time.Duration

	// retry tuning, overridable in tests
	backoffBase time.Duration
	backoffMax  time.Duration
}

func NewPoller(fetcher UpdateFetcher, reconciler Applier, offsets *repository.OffsetRepository, timeout time.Duration) *Poller {
	return &Poller{
		fetcher:     fetcher,
		reconciler:  reconciler,
		offsets:     offsets,
		timeout:     timeout,
		backoffBase: backoffBase,
		backoffMax:  backoffMax,
	}
}

// Run loops until ctx is cancelled or the token is rejected. Transient
// fetch failures back off exponentially with jitter and never stop the
// loop; rate limits pause for the advertised cooldown and retry the same
// offset.
func (p *Poller) Run(ctx context.Context) error {
	offset, err := p.offsets.Load(ctx)
	if err != nil {
		return err
	}
	log.Printf("[info] ingestion starting at offset %d", offset)

	delay := p.backoffBase
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := p.fetcher.FetchUpdates(ctx, offset, p.timeout)
		if err != nil {
			var limited *telegram.RateLimitedError
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return ctx.Err()
			case errors.Is(err, telegram.ErrAuth):
				return fmt.Errorf("ingestion stopped: %w", err)
			case errors.As(err, &limited):
				log.Printf("[warn] rate limited, cooling down for %s", limited.RetryAfter)
				if !sleepCtx(ctx, limited.RetryAfter) {
					return ctx.Err()
				}
			default:
				log.Printf("[warn] fetch updates: %v (retry in %s)", err, delay)
				if !sleepCtx(ctx, withJitter(delay)) {
					return ctx.Err()
				}
				delay = min(delay*2, p.backoffMax)
			}
			continue
		}
		delay = p.backoffBase

		if len(updates) == 0 {
			continue
		}
		for _, update := range updates {
			// A poison update is logged and skipped; the offset still
			// advances past it so it is never retried forever.
			if err := p.reconciler.Apply(ctx, update); err != nil {
				log.Printf("[error] skipping update %d: %v", update.UpdateID, err)
			}
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
		}
		if err := p.offsets.Save(ctx, offset); err != nil {
			return fmt.Errorf("persist offset %d: %w", offset, err)
		}
	}
}

// withJitter spreads retries to avoid thundering on a recovering endpoint.
func withJitter(d time.Duration) time.Duration {
	return d/2 + rand.N(d/2+1)
}

// sleepCtx waits for d, returning false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
