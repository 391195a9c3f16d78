package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/iammohit64/wrap-up/internal/model"
	"github.com/iammohit64/wrap-up/internal/repository"
)

// LeaderboardCache mirrors the ledger's points totals into a sorted set so
// the leaderboard endpoint does not hit Postgres on every request.
type LeaderboardCache interface {
	SetScore(ctx context.Context, walletAddress string, points int64) error
}

// SyncService applies ledger-confirmed facts to the relational store. Every
// method is idempotent: confirmations can be replayed (by a retrying caller
// or by the event worker re-reading its stream) without changing the result.
type SyncService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	leaderboard LeaderboardCache
}

func NewSyncService(
	commentRepo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	leaderboard LeaderboardCache,
) *SyncService {
	return &SyncService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		userRepo:    userRepo,
		leaderboard: leaderboard,
	}
}

// MarkCommentOnChain records a confirmed ledger anchoring for a comment.
// Replays with the same on-chain ID are no-ops; a differing on-chain ID is
// overwritten with a warning, since the ledger is authoritative and the
// stale value usually means an abandoned first submission.
func (s *SyncService) MarkCommentOnChain(ctx context.Context, commentID string, onChainID int64, contentHash string) (*model.Comment, error) {
	if commentID == "" {
		return nil, model.ErrCommentNotFound
	}
	if onChainID <= 0 {
		return nil, model.ErrOnChainIDRequired
	}
	if contentHash == "" {
		return nil, model.ErrContentHashRequired
	}

	existing, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if existing.OnChain && existing.OnChainID != nil && *existing.OnChainID != onChainID {
		log.Printf("[Sync] Comment %s already anchored as %d, overwriting with %d", commentID, *existing.OnChainID, onChainID)
	}

	comment, err := s.commentRepo.MarkOnChain(ctx, commentID, onChainID, contentHash)
	if err != nil {
		return nil, err
	}
	log.Printf("[Sync] Comment %s anchored on-chain as %d", commentID, onChainID)
	return comment, nil
}

// SyncCommentUpvotes overwrites a comment's upvote counter with the ledger's
// authoritative total. Off-chain upvoter tuples are retained even when the
// new count disagrees with their number.
func (s *SyncService) SyncCommentUpvotes(ctx context.Context, commentID string, count int) (*model.Comment, error) {
	if commentID == "" {
		return nil, model.ErrCommentNotFound
	}
	if count < 0 {
		return nil, model.ErrInvalidUpvoteCount
	}
	comment, err := s.commentRepo.SetUpvoteCount(ctx, commentID, count)
	if err != nil {
		return nil, err
	}
	log.Printf("[Sync] Comment %s upvote count set to %d", commentID, count)
	return comment, nil
}

// MarkArticleOnChain records a confirmed ledger anchoring for an article,
// keyed by URL because that is the identifier the submitting client holds.
func (s *SyncService) MarkArticleOnChain(ctx context.Context, articleURL string, onChainID int64, contentHash string) (*model.Article, error) {
	if articleURL == "" {
		return nil, model.ErrArticleURLRequired
	}
	if onChainID <= 0 {
		return nil, model.ErrOnChainIDRequired
	}

	article, err := s.articleRepo.MarkOnChainByURL(ctx, articleURL, onChainID, contentHash)
	if err != nil {
		return nil, err
	}
	log.Printf("[Sync] Article %s anchored on-chain as %d", article.ID, onChainID)
	return article, nil
}

// SyncArticleUpvotes overwrites an article's upvote counter, keyed by URL.
func (s *SyncService) SyncArticleUpvotes(ctx context.Context, articleURL string, count int) (*model.Article, error) {
	if articleURL == "" {
		return nil, model.ErrArticleURLRequired
	}
	if count < 0 {
		return nil, model.ErrInvalidUpvoteCount
	}
	article, err := s.articleRepo.SetUpvoteCountByURL(ctx, articleURL, count)
	if err != nil {
		return nil, err
	}
	log.Printf("[Sync] Article %s upvote count set to %d", article.ID, count)
	return article, nil
}

// SetUserPoints overwrites a profile's points total with the ledger's value
// and mirrors it into the leaderboard cache. The cache write is best-effort.
func (s *SyncService) SetUserPoints(ctx context.Context, walletAddress string, points int64) error {
	if walletAddress == "" {
		return model.ErrUserNotFound
	}
	if err := s.userRepo.SetPoints(ctx, walletAddress, points); err != nil {
		return fmt.Errorf("set points: %w", err)
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.SetScore(ctx, walletAddress, points); err != nil {
			log.Printf("[Sync] Leaderboard cache update failed for %s: %v", walletAddress, err)
		}
	}
	log.Printf("[Sync] Points for %s set to %d", walletAddress, points)
	return nil
}

// Reconciliation entry points, driven by the chain-event worker. These differ
// from the caller-facing methods above in how rows are located: the worker
// only knows ledger identifiers, so rows are resolved by content hash or
// on-chain ID. A row that cannot be resolved is logged and skipped, not
// retried forever: it belongs to a client this store never saw.

// ApplyCommentPosted resolves the staged comment by content hash and anchors
// it with the on-chain ID the ledger assigned.
func (s *SyncService) ApplyCommentPosted(ctx context.Context, onChainID int64, contentHash string) error {
	comment, err := s.commentRepo.GetByContentHash(ctx, contentHash)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			log.Printf("[Sync] CommentPosted %d: no staged comment with hash %s, skipping", onChainID, contentHash)
			return nil
		}
		return fmt.Errorf("resolve comment by hash: %w", err)
	}
	_, err = s.MarkCommentOnChain(ctx, comment.ID, onChainID, contentHash)
	return err
}

// ApplyCommentUpvoted carries the ledger's new total for an anchored comment.
func (s *SyncService) ApplyCommentUpvoted(ctx context.Context, onChainID int64, newCount int) error {
	comment, err := s.commentRepo.GetByOnChainID(ctx, onChainID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			log.Printf("[Sync] CommentUpvoted %d: no anchored comment, skipping", onChainID)
			return nil
		}
		return fmt.Errorf("resolve comment by on-chain id: %w", err)
	}
	_, err = s.SyncCommentUpvotes(ctx, comment.ID, newCount)
	return err
}

// ApplyArticleUpvoted carries the ledger's new total for an anchored article.
func (s *SyncService) ApplyArticleUpvoted(ctx context.Context, onChainID int64, newCount int) error {
	article, err := s.articleRepo.GetByOnChainID(ctx, onChainID)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			log.Printf("[Sync] ArticleUpvoted %d: no anchored article, skipping", onChainID)
			return nil
		}
		return fmt.Errorf("resolve article by on-chain id: %w", err)
	}
	if newCount < 0 {
		return model.ErrInvalidUpvoteCount
	}
	_, err = s.articleRepo.SetUpvoteCountByURL(ctx, article.ArticleURL, newCount)
	if err != nil {
		return err
	}
	log.Printf("[Sync] Article %s upvote count set to %d", article.ID, newCount)
	return nil
}

// ApplyPointsAwarded carries a ledger points total for a wallet.
func (s *SyncService) ApplyPointsAwarded(ctx context.Context, walletAddress string, points int64) error {
	return s.SetUserPoints(ctx, walletAddress, points)
}
