package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a curated article. Comments are created
// off-chain first so they carry a durable ID before any ledger transaction;
// the on-chain fields are filled in later by the sync service once a ledger
// confirmation has been observed.
type Comment struct {
	ID          string    `db:"id" json:"id"`
	ArticleID   string    `db:"article_id" json:"article_id"`
	ArticleURL  string    `db:"article_url" json:"article_url"`
	Content     string    `db:"content" json:"content"`
	Author      string    `db:"author" json:"author"`
	AuthorName  string    `db:"author_name" json:"author_name"`
	ParentID    *string   `db:"parent_id" json:"parent_id,omitempty"`
	OnChain     bool      `db:"on_chain" json:"on_chain"`
	OnChainID   *int64    `db:"on_chain_id" json:"on_chain_id,omitempty"`
	ContentHash *string   `db:"content_hash" json:"content_hash,omitempty"`
	UpvoteCount int       `db:"upvote_count" json:"upvote_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// Joined fields (not columns on the comments table)
	Upvoters []Upvote  `json:"upvoted_by"`
	Replies  []Comment `json:"replies,omitempty"`
}

// Upvote is one voter's upvote on a comment or article. The voter identity
// is a wallet address or an ephemeral anon_ identifier; the display name is
// resolved once when the vote is recorded and frozen.
type Upvote struct {
	Voter     string    `db:"voter" json:"address"`
	VoterName string    `db:"voter_name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"timestamp"`
}

// CreateCommentRequest is the request body for creating a comment.
// AuthorName is optional; when absent it is resolved from the author identity.
type CreateCommentRequest struct {
	ArticleID  string  `json:"article_id"`
	ArticleURL string  `json:"article_url"`
	Content    string  `json:"content"`
	Author     string  `json:"author"`
	AuthorName string  `json:"author_name,omitempty"`
	ParentID   *string `json:"parent_id,omitempty"`
}

// StagedComment is what the staging service hands back to the caller: the
// durable comment ID, the on-chain ID of the parent article, and the content
// hash to submit with the ledger transaction.
type StagedComment struct {
	CommentID        string `json:"comment_id"`
	OnChainArticleID int64  `json:"on_chain_article_id"`
	ContentHash      string `json:"content_hash"`
}

// UpvoteResult reports the count after a successful off-chain upvote.
type UpvoteResult struct {
	UpvoteCount int `json:"upvote_count"`
}

// Comment constraints
const (
	MaxCommentLength = 10000
)

// Comment errors
var (
	ErrCommentNotFound       = errors.New("comment not found")
	ErrParentCommentNotFound = errors.New("parent comment not found")
	ErrContentRequired       = errors.New("comment content is required")
	ErrContentTooLong        = errors.New("comment content too long")
	ErrArticleIDRequired     = errors.New("article id is required")
	ErrArticleURLRequired    = errors.New("article url is required")
	ErrAuthorRequired        = errors.New("author is required")
	ErrVoterRequired         = errors.New("voter is required")
	ErrAlreadyUpvoted        = errors.New("already upvoted")
	ErrSelfUpvote            = errors.New("cannot upvote your own content")
	ErrOnChainIDRequired     = errors.New("on-chain id is required")
	ErrContentHashRequired   = errors.New("content hash is required")
	ErrInvalidUpvoteCount    = errors.New("upvote count must be a non-negative integer")
)

// External collaborator errors. Callers should retry these with backoff;
// this core does not retry internally.
var (
	ErrContentStoreUnavailable = errors.New("content storage unavailable")
)
