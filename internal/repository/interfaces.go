package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iammohit64/wrap-up/internal/model"
)

type CommentRepository interface {
	// Create inserts a new comment inside tx. The durable ID is assigned
	// here, before any network call, so a failed ledger submission still
	// leaves a retriable record.
	Create(ctx context.Context, tx *sqlx.Tx, articleID, articleURL, content, author, authorName string, parentID *string) (*model.Comment, error)
	GetByID(ctx context.Context, commentID string) (*model.Comment, error)
	// GetByArticleURL returns top-level comments newest-first, each with its
	// direct replies attached oldest-first and upvoter tuples loaded.
	GetByArticleURL(ctx context.Context, articleURL string) ([]model.Comment, error)
	// GetReplies returns direct children oldest-first.
	GetReplies(ctx context.Context, parentID string) ([]model.Comment, error)
	SetContentHash(ctx context.Context, commentID, hash string) (*model.Comment, error)
	// MarkOnChain is idempotent: replaying the same confirmation leaves the
	// row unchanged.
	MarkOnChain(ctx context.Context, commentID string, onChainID int64, contentHash string) (*model.Comment, error)
	// SetUpvoteCount overwrites the counter with a ledger-authoritative
	// value. Upvoter rows are left untouched.
	SetUpvoteCount(ctx context.Context, commentID string, count int) (*model.Comment, error)
	// AddUpvote appends an upvoter tuple and increments the counter in one
	// transaction. The (comment_id, voter) primary key is the duplicate-vote
	// boundary; violations surface as model.ErrAlreadyUpvoted.
	AddUpvote(ctx context.Context, tx *sqlx.Tx, commentID, voter, voterName string) (newCount int, err error)
	GetByContentHash(ctx context.Context, hash string) (*model.Comment, error)
	GetByOnChainID(ctx context.Context, onChainID int64) (*model.Comment, error)
}

type ArticleRepository interface {
	Create(ctx context.Context, a *model.Article) error
	GetByID(ctx context.Context, articleID string) (*model.Article, error)
	GetByURL(ctx context.Context, articleURL string) (*model.Article, error)
	GetByOnChainID(ctx context.Context, onChainID int64) (*model.Article, error)
	// List returns articles ranked by engagement (upvotes + comments).
	List(ctx context.Context, limit int) ([]model.Article, error)
	MarkOnChainByURL(ctx context.Context, articleURL string, onChainID int64, contentHash string) (*model.Article, error)
	SetUpvoteCountByURL(ctx context.Context, articleURL string, count int) (*model.Article, error)
	AddUpvote(ctx context.Context, tx *sqlx.Tx, articleID, voter, voterName string) (newCount int, err error)
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, articleID string, delta int) error
}

type UserRepository interface {
	GetByWallet(ctx context.Context, walletAddress string) (*model.User, error)
	// SetPoints upserts the profile and overwrites its points total with the
	// ledger's authoritative value.
	SetPoints(ctx context.Context, walletAddress string, points int64) error
	Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}
