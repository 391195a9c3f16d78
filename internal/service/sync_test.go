package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iammohit64/wrap-up/internal/model"
)

func TestSyncService_MarkCommentOnChain(t *testing.T) {
	anchored := func(id string, onChainID int64) *model.Comment {
		return &model.Comment{ID: id, OnChain: true, OnChainID: int64Ptr(onChainID)}
	}

	tests := []struct {
		name        string
		commentID   string
		onChainID   int64
		contentHash string
		mockGetByID func(ctx context.Context, commentID string) (*model.Comment, error)
		wantErr     error
		wantMark    bool
	}{
		{
			name:        "first confirmation",
			commentID:   "c1",
			onChainID:   7,
			contentHash: "abc123",
			mockGetByID: func(ctx context.Context, commentID string) (*model.Comment, error) {
				return &model.Comment{ID: commentID}, nil
			},
			wantMark: true,
		},
		{
			name:        "replayed confirmation is a no-op write",
			commentID:   "c1",
			onChainID:   7,
			contentHash: "abc123",
			mockGetByID: func(ctx context.Context, commentID string) (*model.Comment, error) {
				return anchored(commentID, 7), nil
			},
			wantMark: true,
		},
		{
			name:        "conflicting id is overwritten",
			commentID:   "c1",
			onChainID:   9,
			contentHash: "abc123",
			mockGetByID: func(ctx context.Context, commentID string) (*model.Comment, error) {
				return anchored(commentID, 7), nil
			},
			wantMark: true,
		},
		{
			name:        "unknown comment",
			commentID:   "missing",
			onChainID:   7,
			contentHash: "abc123",
			mockGetByID: func(ctx context.Context, commentID string) (*model.Comment, error) {
				return nil, model.ErrCommentNotFound
			},
			wantErr: model.ErrCommentNotFound,
		},
		{
			name:        "zero on-chain id rejected",
			commentID:   "c1",
			contentHash: "abc123",
			wantErr:     model.ErrOnChainIDRequired,
		},
		{
			name:      "missing content hash rejected",
			commentID: "c1",
			onChainID: 7,
			wantErr:   model.ErrContentHashRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockComments := &mockCommentRepository{getByIDFn: tt.mockGetByID}
			svc := NewSyncService(mockComments, &mockArticleRepository{}, &mockUserRepository{}, nil)

			comment, err := svc.MarkCommentOnChain(context.Background(), tt.commentID, tt.onChainID, tt.contentHash)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if len(mockComments.markOnChainCalls) != 0 {
					t.Error("MarkOnChain should not be called on a rejected request")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !comment.OnChain || comment.OnChainID == nil || *comment.OnChainID != tt.onChainID {
				t.Errorf("comment not anchored as %d: %+v", tt.onChainID, comment)
			}
			if tt.wantMark && len(mockComments.markOnChainCalls) != 1 {
				t.Errorf("MarkOnChain called %d times, want 1", len(mockComments.markOnChainCalls))
			}
		})
	}
}

func TestSyncService_SyncCommentUpvotes(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr error
	}{
		{name: "positive count", count: 12},
		{name: "zero is a valid ledger total", count: 0},
		{name: "negative count rejected", count: -1, wantErr: model.ErrInvalidUpvoteCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockComments := &mockCommentRepository{}
			svc := NewSyncService(mockComments, &mockArticleRepository{}, &mockUserRepository{}, nil)

			comment, err := svc.SyncCommentUpvotes(context.Background(), "c1", tt.count)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				if len(mockComments.setUpvoteCountCalls) != 0 {
					t.Error("SetUpvoteCount should not be called for an invalid count")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if comment.UpvoteCount != tt.count {
				t.Errorf("upvote_count = %d, want %d", comment.UpvoteCount, tt.count)
			}
		})
	}
}

func TestSyncService_ApplyCommentPosted(t *testing.T) {
	mockComments := &mockCommentRepository{
		getByContentHashFn: func(ctx context.Context, hash string) (*model.Comment, error) {
			if hash == "abc123" {
				return &model.Comment{ID: "c1"}, nil
			}
			return nil, model.ErrCommentNotFound
		},
		getByIDFn: func(ctx context.Context, commentID string) (*model.Comment, error) {
			return &model.Comment{ID: commentID}, nil
		},
	}
	svc := NewSyncService(mockComments, &mockArticleRepository{}, &mockUserRepository{}, nil)

	if err := svc.ApplyCommentPosted(context.Background(), 7, "abc123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mockComments.markOnChainCalls) != 1 || mockComments.markOnChainCalls[0] != 7 {
		t.Errorf("MarkOnChain calls = %v, want [7]", mockComments.markOnChainCalls)
	}

	// A hash this store never staged belongs to someone else's client; the
	// event is skipped, not treated as a failure.
	if err := svc.ApplyCommentPosted(context.Background(), 8, "unknown"); err != nil {
		t.Errorf("unknown hash should be skipped, got error: %v", err)
	}
	if len(mockComments.markOnChainCalls) != 1 {
		t.Error("unknown hash must not anchor anything")
	}
}

func TestSyncService_ApplyCommentUpvoted(t *testing.T) {
	mockComments := &mockCommentRepository{
		getByOnChainIDFn: func(ctx context.Context, onChainID int64) (*model.Comment, error) {
			if onChainID == 7 {
				return &model.Comment{ID: "c1", OnChain: true, OnChainID: int64Ptr(7)}, nil
			}
			return nil, model.ErrCommentNotFound
		},
	}
	svc := NewSyncService(mockComments, &mockArticleRepository{}, &mockUserRepository{}, nil)

	if err := svc.ApplyCommentUpvoted(context.Background(), 7, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mockComments.setUpvoteCountCalls) != 1 || mockComments.setUpvoteCountCalls[0] != 5 {
		t.Errorf("SetUpvoteCount calls = %v, want [5]", mockComments.setUpvoteCountCalls)
	}

	if err := svc.ApplyCommentUpvoted(context.Background(), 99, 5); err != nil {
		t.Errorf("unknown on-chain id should be skipped, got error: %v", err)
	}
}

func TestSyncService_ApplyArticleUpvoted(t *testing.T) {
	mockArticles := &mockArticleRepository{
		getByOnChainIDFn: func(ctx context.Context, onChainID int64) (*model.Article, error) {
			if onChainID == 3 {
				return &model.Article{ID: "a1", ArticleURL: "https://example.com/post", OnChain: true, OnChainID: int64Ptr(3)}, nil
			}
			return nil, model.ErrArticleNotFound
		},
	}
	svc := NewSyncService(&mockCommentRepository{}, mockArticles, &mockUserRepository{}, nil)

	if err := svc.ApplyArticleUpvoted(context.Background(), 3, 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mockArticles.setUpvoteCountCalls) != 1 || mockArticles.setUpvoteCountCalls[0] != 9 {
		t.Errorf("SetUpvoteCountByURL calls = %v, want [9]", mockArticles.setUpvoteCountCalls)
	}

	if err := svc.ApplyArticleUpvoted(context.Background(), 99, 9); err != nil {
		t.Errorf("unknown on-chain id should be skipped, got error: %v", err)
	}
}

func TestSyncService_SetUserPoints(t *testing.T) {
	mockUsers := &mockUserRepository{}
	cache := &mockLeaderboardCache{}
	svc := NewSyncService(&mockCommentRepository{}, &mockArticleRepository{}, mockUsers, cache)

	if err := svc.SetUserPoints(context.Background(), "0xabc", 150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mockUsers.setPointsCalls) != 1 || mockUsers.setPointsCalls[0] != 150 {
		t.Errorf("SetPoints calls = %v, want [150]", mockUsers.setPointsCalls)
	}
	if len(cache.setScoreCalls) != 1 {
		t.Error("leaderboard cache should be updated")
	}
}

func TestSyncService_SetUserPoints_CacheFailureTolerated(t *testing.T) {
	mockUsers := &mockUserRepository{}
	cache := &mockLeaderboardCache{
		setScoreFn: func(ctx context.Context, walletAddress string, points int64) error {
			return errors.New("redis down")
		},
	}
	svc := NewSyncService(&mockCommentRepository{}, &mockArticleRepository{}, mockUsers, cache)

	// The relational store is the source of truth; a cache failure is logged,
	// not surfaced.
	if err := svc.SetUserPoints(context.Background(), "0xabc", 150); err != nil {
		t.Errorf("cache failure should not fail the sync: %v", err)
	}
}
