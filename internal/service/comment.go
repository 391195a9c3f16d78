package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iammohit64/wrap-up/internal/model"
	"github.com/iammohit64/wrap-up/internal/repository"
)

// txRunner wraps a unit of work in a transaction. Factored out of the service
// so tests can substitute a pass-through runner.
type txRunner func(ctx context.Context, fn func(tx *sqlx.Tx) error) error

func newTxRunner(db *sqlx.DB) txRunner {
	return func(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	}
}

// CommentService owns the nested-comment data model: creation, parent/child
// linkage, retrieval, and off-chain upvote bookkeeping.
type CommentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	identity    *IdentityService
	runTx       txRunner
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	identity *IdentityService,
	db *sqlx.DB,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		identity:    identity,
		runTx:       newTxRunner(db),
	}
}

// Create persists a new comment with onChain=false. The comment gets its
// durable ID here, before anything touches the network.
func (s *CommentService) Create(ctx context.Context, req model.CreateCommentRequest) (*model.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	switch {
	case req.ArticleID == "":
		return nil, model.ErrArticleIDRequired
	case req.ArticleURL == "":
		return nil, model.ErrArticleURLRequired
	case req.Content == "":
		return nil, model.ErrContentRequired
	case req.Author == "":
		return nil, model.ErrAuthorRequired
	}
	if len(req.Content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	// A reply must reference a comment that already exists. Children always
	// post-date parents, which structurally rules out cycles.
	if req.ParentID != nil && *req.ParentID != "" {
		if _, err := s.commentRepo.GetByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, model.ErrCommentNotFound) {
				return nil, model.ErrParentCommentNotFound
			}
			return nil, fmt.Errorf("check parent comment: %w", err)
		}
	} else {
		req.ParentID = nil
	}

	// Display name is resolved once at creation and frozen, unless the
	// caller supplied one.
	authorName := req.AuthorName
	if authorName == "" {
		authorName = s.identity.ResolveDisplayName(ctx, req.Author)
	}

	var comment *model.Comment
	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		comment, err = s.commentRepo.Create(ctx, tx, req.ArticleID, req.ArticleURL, req.Content, req.Author, authorName, req.ParentID)
		if err != nil {
			return err
		}

		// The article row may not exist yet when comments arrive for an
		// article known only by URL; the counter is best-effort in that case.
		if err := s.articleRepo.IncrementCommentCount(ctx, tx, req.ArticleID, 1); err != nil {
			if !errors.Is(err, model.ErrArticleNotFound) {
				return err
			}
			log.Printf("[CommentService] No article row %s for comment %s, skipping counter", req.ArticleID, comment.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if comment.ParentID != nil {
		log.Printf("[CommentService] Comment %s created (reply to %s)", comment.ID, *comment.ParentID)
	} else {
		log.Printf("[CommentService] Comment %s created", comment.ID)
	}
	return comment, nil
}

// GetByID retrieves a single comment with its upvoters.
func (s *CommentService) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	if commentID == "" {
		return nil, model.ErrCommentNotFound
	}
	return s.commentRepo.GetByID(ctx, commentID)
}

// GetByArticle returns the article's comment tree: top-level newest-first,
// replies oldest-first.
func (s *CommentService) GetByArticle(ctx context.Context, articleURL string) ([]model.Comment, error) {
	if articleURL == "" {
		return nil, model.ErrArticleURLRequired
	}
	comments, err := s.commentRepo.GetByArticleURL(ctx, articleURL)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

// GetReplies returns a comment's direct children, oldest-first.
func (s *CommentService) GetReplies(ctx context.Context, commentID string) ([]model.Comment, error) {
	if commentID == "" {
		return nil, model.ErrCommentNotFound
	}
	replies, err := s.commentRepo.GetReplies(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("get replies: %w", err)
	}
	if replies == nil {
		replies = []model.Comment{}
	}
	return replies, nil
}

// UpvoteComment records an off-chain vote: at most one per voter per comment.
// The upvoter tuple and the counter commit atomically; duplicates fail with
// ErrAlreadyUpvoted no matter how the race lands.
func (s *CommentService) UpvoteComment(ctx context.Context, commentID, voter string) (*model.UpvoteResult, error) {
	if commentID == "" {
		return nil, model.ErrCommentNotFound
	}
	if voter == "" {
		return nil, model.ErrVoterRequired
	}

	voterName := s.identity.ResolveDisplayName(ctx, voter)

	var newCount int
	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		newCount, err = s.commentRepo.AddUpvote(ctx, tx, commentID, voter, voterName)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[CommentService] %s upvoted comment %s (count=%d)", voter, commentID, newCount)
	return &model.UpvoteResult{UpvoteCount: newCount}, nil
}

// UpvoteArticle is the article-side equivalent of UpvoteComment.
func (s *CommentService) UpvoteArticle(ctx context.Context, articleID, voter string) (*model.UpvoteResult, error) {
	if articleID == "" {
		return nil, model.ErrArticleNotFound
	}
	if voter == "" {
		return nil, model.ErrVoterRequired
	}

	voterName := s.identity.ResolveDisplayName(ctx, voter)

	var newCount int
	err := s.runTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		newCount, err = s.articleRepo.AddUpvote(ctx, tx, articleID, voter, voterName)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[CommentService] %s upvoted article %s (count=%d)", voter, articleID, newCount)
	return &model.UpvoteResult{UpvoteCount: newCount}, nil
}
