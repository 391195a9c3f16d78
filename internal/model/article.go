package model

import (
	"errors"
	"time"
)

// Article is a curated article submission. Like comments, an article exists
// off-chain with a durable ID before it is anchored on the ledger; OnChainID
// is the ledger-assigned numeric identifier required when posting comments
// against the article.
type Article struct {
	ID           string    `db:"id" json:"id"`
	ArticleURL   string    `db:"article_url" json:"article_url"`
	Title        string    `db:"title" json:"title"`
	Summary      *string   `db:"summary" json:"summary,omitempty"`
	Curator      string    `db:"curator" json:"curator"`
	CuratorName  string    `db:"curator_name" json:"curator_name"`
	OnChain      bool      `db:"on_chain" json:"on_chain"`
	OnChainID    *int64    `db:"on_chain_id" json:"on_chain_id,omitempty"`
	ContentHash  *string   `db:"content_hash" json:"content_hash,omitempty"`
	UpvoteCount  int       `db:"upvote_count" json:"upvote_count"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Upvoters []Upvote `json:"upvoted_by,omitempty"`
}

// SubmitArticleRequest is the request body for submitting an article.
type SubmitArticleRequest struct {
	ArticleURL  string  `json:"article_url"`
	Title       string  `json:"title"`
	Summary     *string `json:"summary,omitempty"`
	Curator     string  `json:"curator"`
	CuratorName string  `json:"curator_name,omitempty"`
}

// StagedArticle is the result of staging an article for ledger submission.
type StagedArticle struct {
	ArticleID   string `json:"article_id"`
	ContentHash string `json:"content_hash"`
}

// Article errors
var (
	ErrArticleNotFound   = errors.New("article not found")
	ErrArticleExists     = errors.New("article already submitted")
	ErrTitleRequired     = errors.New("article title is required")
	ErrCuratorRequired   = errors.New("curator is required")
	ErrArticleNotOnChain = errors.New("article not on-chain yet")
)
