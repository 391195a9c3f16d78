package localview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/avast/retry-go"

	"github.com/iammohit64/wrap-up/internal/model"
)

// ErrSyncTimeout is returned when the store never reflected a confirmation
// within the polling window. The view keeps its optimistic state; the caller
// decides whether to keep waiting or reload wholesale.
var ErrSyncTimeout = errors.New("timed out waiting for sync")

var errNotAnchored = errors.New("not anchored yet")

// Fetcher reads authoritative comment state, typically the HTTP API.
type Fetcher interface {
	GetByID(ctx context.Context, commentID string) (*model.Comment, error)
}

// Reloader polls the authoritative store with backoff until a confirmation
// becomes visible, instead of sleeping a fixed interval and hoping.
type Reloader struct {
	fetcher  Fetcher
	attempts uint
	delay    time.Duration
}

func NewReloader(fetcher Fetcher) *Reloader {
	return &Reloader{
		fetcher:  fetcher,
		attempts: 6,
		delay:    500 * time.Millisecond,
	}
}

// WaitForAnchor polls until the comment shows up as anchored, backing off
// between attempts. Exhausting the window yields ErrSyncTimeout.
func (r *Reloader) WaitForAnchor(ctx context.Context, commentID string) (*model.Comment, error) {
	var comment *model.Comment

	err := retry.Do(
		func() error {
			c, err := r.fetcher.GetByID(ctx, commentID)
			if err != nil {
				return err
			}
			if !c.OnChain {
				return errNotAnchored
			}
			comment = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool {
			// Keep polling while the row simply hasn't caught up; a missing
			// comment will not appear by waiting.
			return !errors.Is(err, model.ErrCommentNotFound)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			return nil, err
		}
		if errors.Is(err, errNotAnchored) || errors.Is(err, context.DeadlineExceeded) {
			log.Printf("[Reloader] Comment %s not anchored after %d attempts", commentID, r.attempts)
			return nil, fmt.Errorf("%w: comment %s", ErrSyncTimeout, commentID)
		}
		return nil, err
	}
	return comment, nil
}
