package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/iammohit64/wrap-up/internal/queue"
)

type mockReconciler struct {
	commentPostedFn  func(ctx context.Context, onChainID int64, contentHash string) error
	commentUpvotedFn func(ctx context.Context, onChainID int64, newCount int) error
	articleUpvotedFn func(ctx context.Context, onChainID int64, newCount int) error
	pointsAwardedFn  func(ctx context.Context, walletAddress string, points int64) error

	commentPostedCalls  int
	commentUpvotedCalls int
	articleUpvotedCalls int
	pointsAwardedCalls  int
}

func (m *mockReconciler) ApplyCommentPosted(ctx context.Context, onChainID int64, contentHash string) error {
	m.commentPostedCalls++
	if m.commentPostedFn != nil {
		return m.commentPostedFn(ctx, onChainID, contentHash)
	}
	return nil
}

func (m *mockReconciler) ApplyCommentUpvoted(ctx context.Context, onChainID int64, newCount int) error {
	m.commentUpvotedCalls++
	if m.commentUpvotedFn != nil {
		return m.commentUpvotedFn(ctx, onChainID, newCount)
	}
	return nil
}

func (m *mockReconciler) ApplyArticleUpvoted(ctx context.Context, onChainID int64, newCount int) error {
	m.articleUpvotedCalls++
	if m.articleUpvotedFn != nil {
		return m.articleUpvotedFn(ctx, onChainID, newCount)
	}
	return nil
}

func (m *mockReconciler) ApplyPointsAwarded(ctx context.Context, walletAddress string, points int64) error {
	m.pointsAwardedCalls++
	if m.pointsAwardedFn != nil {
		return m.pointsAwardedFn(ctx, walletAddress, points)
	}
	return nil
}

func TestHandler_HandleEvent_CommentPosted(t *testing.T) {
	var gotID int64
	var gotHash string
	rec := &mockReconciler{
		commentPostedFn: func(ctx context.Context, onChainID int64, contentHash string) error {
			gotID, gotHash = onChainID, contentHash
			return nil
		},
	}
	h := NewHandler(rec)

	err := h.HandleEvent(context.Background(), queue.ChainEvent{
		Type:             queue.EventCommentPosted,
		OnChainCommentID: 7,
		ContentHash:      "abc123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != 7 || gotHash != "abc123" {
		t.Errorf("ApplyCommentPosted(%d, %q), want (7, abc123)", gotID, gotHash)
	}
}

func TestHandler_HandleEvent_CommentPosted_MissingHash(t *testing.T) {
	rec := &mockReconciler{}
	h := NewHandler(rec)

	err := h.HandleEvent(context.Background(), queue.ChainEvent{
		Type:             queue.EventCommentPosted,
		OnChainCommentID: 7,
	})
	if err == nil {
		t.Fatal("expected error for event without content hash")
	}
	if rec.commentPostedCalls != 0 {
		t.Error("reconciler should not be called without a content hash")
	}
}

func TestHandler_HandleEvent_Routing(t *testing.T) {
	rec := &mockReconciler{}
	h := NewHandler(rec)

	events := []queue.ChainEvent{
		{Type: queue.EventCommentUpvoted, OnChainCommentID: 7, NewCount: 5},
		{Type: queue.EventArticleUpvoted, OnChainArticleID: 42, NewCount: 9},
		{Type: queue.EventPointsAwarded, Actor: "0xabc", PointsTotal: 150},
	}
	for _, ev := range events {
		if err := h.HandleEvent(context.Background(), ev); err != nil {
			t.Fatalf("HandleEvent(%s): %v", ev.Type, err)
		}
	}

	if rec.commentUpvotedCalls != 1 || rec.articleUpvotedCalls != 1 || rec.pointsAwardedCalls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1",
			rec.commentUpvotedCalls, rec.articleUpvotedCalls, rec.pointsAwardedCalls)
	}
}

func TestHandler_HandleEvent_ArticleSubmittedIsLoggedOnly(t *testing.T) {
	rec := &mockReconciler{}
	h := NewHandler(rec)

	err := h.HandleEvent(context.Background(), queue.ChainEvent{
		Type:             queue.EventArticleSubmitted,
		OnChainArticleID: 42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandler_HandleEvent_UnknownType(t *testing.T) {
	h := NewHandler(&mockReconciler{})

	if err := h.HandleEvent(context.Background(), queue.ChainEvent{Type: "mystery"}); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestHandler_HandleEvent_ReconcilerErrorPropagates(t *testing.T) {
	wantErr := errors.New("db down")
	rec := &mockReconciler{
		commentUpvotedFn: func(ctx context.Context, onChainID int64, newCount int) error {
			return wantErr
		},
	}
	h := NewHandler(rec)

	err := h.HandleEvent(context.Background(), queue.ChainEvent{Type: queue.EventCommentUpvoted})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}
