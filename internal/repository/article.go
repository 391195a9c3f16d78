package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/iammohit64/wrap-up/internal/model"
)

const articleColumns = `id, article_url, title, summary, curator, curator_name, on_chain,
	on_chain_id, content_hash, upvote_count, comment_count, created_at`

type articleRepository struct {
	db *sqlx.DB
}

func NewArticleRepository(db *sqlx.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// Create inserts a new article submission. The URL is the alternate key used
// by callers before the article has an on-chain identifier.
func (r *articleRepository) Create(ctx context.Context, a *model.Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	query := `
		INSERT INTO articles (id, article_url, title, summary, curator, curator_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.GetContext(ctx, &a.CreatedAt, query, a.ID, a.ArticleURL, a.Title, a.Summary, a.Curator, a.CuratorName)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return model.ErrArticleExists
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, articleID string) (*model.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, articleID)
}

func (r *articleRepository) GetByURL(ctx context.Context, articleURL string) (*model.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE article_url = $1`, articleURL)
}

func (r *articleRepository) GetByOnChainID(ctx context.Context, onChainID int64) (*model.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE on_chain_id = $1`, onChainID)
}

func (r *articleRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.Article, error) {
	var article model.Article
	err := r.db.GetContext(ctx, &article, query, arg)
	if err == sql.ErrNoRows {
		return nil, model.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}

	upvoters := []model.Upvote{}
	err = r.db.SelectContext(ctx, &upvoters, `
		SELECT voter, voter_name, created_at FROM article_upvotes
		WHERE article_id = $1
		ORDER BY created_at ASC
	`, article.ID)
	if err != nil {
		return nil, fmt.Errorf("get article upvoters: %w", err)
	}
	article.Upvoters = upvoters
	return &article, nil
}

// List returns articles ranked by engagement: upvotes and comments weigh
// equally, ties broken newest-first.
func (r *articleRepository) List(ctx context.Context, limit int) ([]model.Article, error) {
	query := `
		SELECT ` + articleColumns + ` FROM articles
		ORDER BY upvote_count + comment_count DESC, created_at DESC
		LIMIT $1
	`
	var articles []model.Article
	if err := r.db.SelectContext(ctx, &articles, query, limit); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// MarkOnChainByURL records the ledger-assigned identifier. Keyed by URL
// because callers confirm articles before they know the durable ID.
func (r *articleRepository) MarkOnChainByURL(ctx context.Context, articleURL string, onChainID int64, contentHash string) (*model.Article, error) {
	query := `
		UPDATE articles SET on_chain = TRUE, on_chain_id = $2, content_hash = $3
		WHERE article_url = $1
		RETURNING ` + articleColumns
	var article model.Article
	err := r.db.GetContext(ctx, &article, query, articleURL, onChainID, contentHash)
	if err == sql.ErrNoRows {
		return nil, model.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark article on-chain: %w", err)
	}
	return &article, nil
}

func (r *articleRepository) SetUpvoteCountByURL(ctx context.Context, articleURL string, count int) (*model.Article, error) {
	query := `
		UPDATE articles SET upvote_count = $2
		WHERE article_url = $1
		RETURNING ` + articleColumns
	var article model.Article
	err := r.db.GetContext(ctx, &article, query, articleURL, count)
	if err == sql.ErrNoRows {
		return nil, model.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set article upvote count: %w", err)
	}
	return &article, nil
}

// AddUpvote mirrors the comment-side upvote: tuple append and counter bump
// commit together, duplicates rejected by the primary key.
func (r *articleRepository) AddUpvote(ctx context.Context, tx *sqlx.Tx, articleID, voter, voterName string) (int, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO article_upvotes (article_id, voter, voter_name)
		VALUES ($1, $2, $3)
	`, articleID, voter, voterName)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return 0, model.ErrAlreadyUpvoted
			case "23503":
				return 0, model.ErrArticleNotFound
			}
		}
		return 0, fmt.Errorf("insert article upvote: %w", err)
	}

	var newCount int
	err = tx.GetContext(ctx, &newCount, `
		UPDATE articles SET upvote_count = upvote_count + 1
		WHERE id = $1
		RETURNING upvote_count
	`, articleID)
	if err == sql.ErrNoRows {
		return 0, model.ErrArticleNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment article upvote count: %w", err)
	}
	return newCount, nil
}

func (r *articleRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, articleID string, delta int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE articles SET comment_count = comment_count + $2
		WHERE id = $1
	`, articleID, delta)
	if err != nil {
		return fmt.Errorf("increment comment count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment comment count: %w", err)
	}
	if rows == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}
