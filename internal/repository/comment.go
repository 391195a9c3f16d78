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

const commentColumns = `id, article_id, article_url, content, author, author_name, parent_id,
	on_chain, on_chain_id, content_hash, upvote_count, created_at`

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment. Runs inside tx so the article's comment
// counter can be bumped atomically with the insert.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, articleID, articleURL, content, author, authorName string, parentID *string) (*model.Comment, error) {
	query := `
		INSERT INTO comments (id, article_id, article_url, content, author, author_name, parent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + commentColumns
	var comment model.Comment
	err := tx.GetContext(ctx, &comment, query, uuid.NewString(), articleID, articleURL, content, author, authorName, parentID)
	if err != nil {
		// 23503 = foreign_key_violation on parent_id: the referenced parent
		// vanished between the existence check and the insert.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, model.ErrParentCommentNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	comment.Upvoters = []model.Upvote{}
	return &comment, nil
}

// GetByID retrieves a single comment with its upvoter tuples.
func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	upvoters, err := r.upvotersFor(ctx, commentID)
	if err != nil {
		return nil, err
	}
	comment.Upvoters = upvoters
	return &comment, nil
}

// GetByArticleURL returns the comment tree for an article: top-level comments
// newest-first, each with its direct replies attached oldest-first.
func (r *commentRepository) GetByArticleURL(ctx context.Context, articleURL string) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE article_url = $1 ORDER BY created_at ASC, id ASC`
	var rows []model.Comment
	if err := r.db.SelectContext(ctx, &rows, query, articleURL); err != nil {
		return nil, fmt.Errorf("get comments by article url: %w", err)
	}

	upvotes, err := r.upvotersForArticle(ctx, articleURL)
	if err != nil {
		return nil, err
	}

	// Single pass assembly. rows is oldest-first, so replies land in
	// chronological reading order; top-level comments are then reversed to
	// newest-first.
	byID := make(map[string]int, len(rows))
	for i := range rows {
		rows[i].Upvoters = upvotes[rows[i].ID]
		if rows[i].Upvoters == nil {
			rows[i].Upvoters = []model.Upvote{}
		}
		byID[rows[i].ID] = i
	}

	var topLevel []model.Comment
	for i := range rows {
		if rows[i].ParentID == nil {
			continue
		}
		if pi, ok := byID[*rows[i].ParentID]; ok {
			rows[pi].Replies = append(rows[pi].Replies, rows[i])
		}
	}
	for i := range rows {
		if rows[i].ParentID == nil {
			topLevel = append(topLevel, rows[i])
		}
	}
	for i, j := 0, len(topLevel)-1; i < j; i, j = i+1, j-1 {
		topLevel[i], topLevel[j] = topLevel[j], topLevel[i]
	}
	return topLevel, nil
}

// GetReplies returns direct children of a comment, oldest-first.
func (r *commentRepository) GetReplies(ctx context.Context, parentID string) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE parent_id = $1 ORDER BY created_at ASC, id ASC`
	var replies []model.Comment
	if err := r.db.SelectContext(ctx, &replies, query, parentID); err != nil {
		return nil, fmt.Errorf("get replies: %w", err)
	}
	for i := range replies {
		upvoters, err := r.upvotersFor(ctx, replies[i].ID)
		if err != nil {
			return nil, err
		}
		replies[i].Upvoters = upvoters
	}
	return replies, nil
}

// SetContentHash records the content-addressed storage hash. Setting the
// same hash again is a no-op.
func (r *commentRepository) SetContentHash(ctx context.Context, commentID, hash string) (*model.Comment, error) {
	query := `
		UPDATE comments SET content_hash = $2
		WHERE id = $1
		RETURNING ` + commentColumns
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID, hash)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set content hash: %w", err)
	}
	return &comment, nil
}

// MarkOnChain records the ledger-assigned identifier after a confirmed
// transaction. Replaying the same confirmation is a no-op.
func (r *commentRepository) MarkOnChain(ctx context.Context, commentID string, onChainID int64, contentHash string) (*model.Comment, error) {
	query := `
		UPDATE comments SET on_chain = TRUE, on_chain_id = $2, content_hash = $3
		WHERE id = $1
		RETURNING ` + commentColumns
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID, onChainID, contentHash)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mark comment on-chain: %w", err)
	}
	return &comment, nil
}

// SetUpvoteCount overwrites the counter with an externally authoritative
// value. Upvoter rows are deliberately not touched: the ledger count wins
// but voter identities are never discarded.
func (r *commentRepository) SetUpvoteCount(ctx context.Context, commentID string, count int) (*model.Comment, error) {
	query := `
		UPDATE comments SET upvote_count = $2
		WHERE id = $1
		RETURNING ` + commentColumns
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID, count)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set upvote count: %w", err)
	}
	return &comment, nil
}

// AddUpvote appends an upvoter row and increments the counter inside tx.
// No observer can see the incremented count without the matching upvoter row
// because both writes commit together.
func (r *commentRepository) AddUpvote(ctx context.Context, tx *sqlx.Tx, commentID, voter, voterName string) (int, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO comment_upvotes (comment_id, voter, voter_name)
		VALUES ($1, $2, $3)
	`, commentID, voter, voterName)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation: this voter already voted
				return 0, model.ErrAlreadyUpvoted
			case "23503": // foreign_key_violation: no such comment
				return 0, model.ErrCommentNotFound
			}
		}
		return 0, fmt.Errorf("insert upvote: %w", err)
	}

	var newCount int
	err = tx.GetContext(ctx, &newCount, `
		UPDATE comments SET upvote_count = upvote_count + 1
		WHERE id = $1
		RETURNING upvote_count
	`, commentID)
	if err == sql.ErrNoRows {
		return 0, model.ErrCommentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment upvote count: %w", err)
	}
	return newCount, nil
}

// GetByContentHash resolves a comment from its content-addressed hash. Used
// by the reconciler to match a CommentPosted ledger event back to the staged
// off-chain row.
func (r *commentRepository) GetByContentHash(ctx context.Context, hash string) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE content_hash = $1 ORDER BY created_at DESC LIMIT 1`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, hash)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment by content hash: %w", err)
	}
	return &comment, nil
}

// GetByOnChainID resolves a comment from its ledger-assigned identifier.
func (r *commentRepository) GetByOnChainID(ctx context.Context, onChainID int64) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE on_chain_id = $1`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, onChainID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment by on-chain id: %w", err)
	}
	return &comment, nil
}

func (r *commentRepository) upvotersFor(ctx context.Context, commentID string) ([]model.Upvote, error) {
	upvoters := []model.Upvote{}
	err := r.db.SelectContext(ctx, &upvoters, `
		SELECT voter, voter_name, created_at FROM comment_upvotes
		WHERE comment_id = $1
		ORDER BY created_at ASC
	`, commentID)
	if err != nil {
		return nil, fmt.Errorf("get upvoters: %w", err)
	}
	return upvoters, nil
}

// upvotersForArticle loads every upvoter tuple for an article's comments in
// one round trip, grouped by comment ID.
func (r *commentRepository) upvotersForArticle(ctx context.Context, articleURL string) (map[string][]model.Upvote, error) {
	type upvoteRow struct {
		CommentID string `db:"comment_id"`
		model.Upvote
	}
	var rows []upvoteRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT cu.comment_id, cu.voter, cu.voter_name, cu.created_at
		FROM comment_upvotes cu
		JOIN comments c ON c.id = cu.comment_id
		WHERE c.article_url = $1
		ORDER BY cu.created_at ASC
	`, articleURL)
	if err != nil {
		return nil, fmt.Errorf("get article comment upvoters: %w", err)
	}

	grouped := make(map[string][]model.Upvote, len(rows))
	for _, row := range rows {
		grouped[row.CommentID] = append(grouped[row.CommentID], row.Upvote)
	}
	return grouped, nil
}
