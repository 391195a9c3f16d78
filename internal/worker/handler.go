package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iammohit64/wrap-up/internal/queue"
)

// Reconciler applies ledger-confirmed facts to the relational store. This
// abstracts the sync service so workers don't depend on it directly.
type Reconciler interface {
	// ApplyCommentPosted anchors the staged comment matching contentHash.
	ApplyCommentPosted(ctx context.Context, onChainID int64, contentHash string) error

	// ApplyCommentUpvoted overwrites an anchored comment's upvote count.
	ApplyCommentUpvoted(ctx context.Context, onChainID int64, newCount int) error

	// ApplyArticleUpvoted overwrites an anchored article's upvote count.
	ApplyArticleUpvoted(ctx context.Context, onChainID int64, newCount int) error

	// ApplyPointsAwarded overwrites a wallet's points total.
	ApplyPointsAwarded(ctx context.Context, walletAddress string, points int64) error
}

// Handler processes chain events from the queue.
type Handler struct {
	reconciler Reconciler
}

// NewHandler creates a new event handler.
func NewHandler(reconciler Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ChainEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventCommentPosted:
		err = h.handleCommentPosted(ctx, event)
	case queue.EventCommentUpvoted:
		err = h.handleCommentUpvoted(ctx, event)
	case queue.EventArticleUpvoted:
		err = h.handleArticleUpvoted(ctx, event)
	case queue.EventPointsAwarded:
		err = h.handlePointsAwarded(ctx, event)
	case queue.EventArticleSubmitted:
		// Article anchoring is keyed by URL, which the contract does not
		// carry; the submitting client reports it through the sync API.
		log.Printf("[Worker] ArticleSubmitted: article=%d tx=%s (anchored via sync API)",
			event.OnChainArticleID, event.TxHash)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

func (h *Handler) handleCommentPosted(ctx context.Context, event queue.ChainEvent) error {
	log.Printf("[Worker] CommentPosted: comment=%d article=%d hash=%s",
		event.OnChainCommentID, event.OnChainArticleID, event.ContentHash)

	if event.ContentHash == "" {
		return fmt.Errorf("comment posted event without content hash")
	}
	if err := h.reconciler.ApplyCommentPosted(ctx, event.OnChainCommentID, event.ContentHash); err != nil {
		return fmt.Errorf("apply comment posted: %w", err)
	}
	return nil
}

func (h *Handler) handleCommentUpvoted(ctx context.Context, event queue.ChainEvent) error {
	log.Printf("[Worker] CommentUpvoted: comment=%d count=%d", event.OnChainCommentID, event.NewCount)

	if err := h.reconciler.ApplyCommentUpvoted(ctx, event.OnChainCommentID, int(event.NewCount)); err != nil {
		return fmt.Errorf("apply comment upvoted: %w", err)
	}
	return nil
}

func (h *Handler) handleArticleUpvoted(ctx context.Context, event queue.ChainEvent) error {
	log.Printf("[Worker] ArticleUpvoted: article=%d count=%d", event.OnChainArticleID, event.NewCount)

	if err := h.reconciler.ApplyArticleUpvoted(ctx, event.OnChainArticleID, int(event.NewCount)); err != nil {
		return fmt.Errorf("apply article upvoted: %w", err)
	}
	return nil
}

func (h *Handler) handlePointsAwarded(ctx context.Context, event queue.ChainEvent) error {
	log.Printf("[Worker] PointsAwarded: account=%s total=%d", event.Actor, event.PointsTotal)

	if event.Actor == "" {
		return fmt.Errorf("points awarded event without account")
	}
	if err := h.reconciler.ApplyPointsAwarded(ctx, event.Actor, event.PointsTotal); err != nil {
		return fmt.Errorf("apply points awarded: %w", err)
	}
	return nil
}
