package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iammohit64/wrap-up/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on the repository INTERFACES, so unit tests swap in mocks
// with per-test behavior and call tracking instead of hitting Postgres.

// passTx is a transaction runner that just executes the unit of work. The
// mocks below ignore the tx argument, so nil is fine.
func passTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type mockCommentRepository struct {
	createFn           func(ctx context.Context, articleID, articleURL, content, author, authorName string, parentID *string) (*model.Comment, error)
	getByIDFn          func(ctx context.Context, commentID string) (*model.Comment, error)
	getByArticleURLFn  func(ctx context.Context, articleURL string) ([]model.Comment, error)
	getRepliesFn       func(ctx context.Context, parentID string) ([]model.Comment, error)
	setContentHashFn   func(ctx context.Context, commentID, hash string) (*model.Comment, error)
	markOnChainFn      func(ctx context.Context, commentID string, onChainID int64, contentHash string) (*model.Comment, error)
	setUpvoteCountFn   func(ctx context.Context, commentID string, count int) (*model.Comment, error)
	addUpvoteFn        func(ctx context.Context, commentID, voter, voterName string) (int, error)
	getByContentHashFn func(ctx context.Context, hash string) (*model.Comment, error)
	getByOnChainIDFn   func(ctx context.Context, onChainID int64) (*model.Comment, error)

	// Track calls for assertions
	createCalls         []model.CreateCommentRequest
	setContentHashCalls []string
	markOnChainCalls    []int64
	setUpvoteCountCalls []int
	addUpvoteCalls      []string
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, articleID, articleURL, content, author, authorName string, parentID *string) (*model.Comment, error) {
	m.createCalls = append(m.createCalls, model.CreateCommentRequest{
		ArticleID:  articleID,
		ArticleURL: articleURL,
		Content:    content,
		Author:     author,
		AuthorName: authorName,
		ParentID:   parentID,
	})
	if m.createFn != nil {
		return m.createFn(ctx, articleID, articleURL, content, author, authorName, parentID)
	}
	return &model.Comment{
		ID:         "generated-id",
		ArticleID:  articleID,
		ArticleURL: articleURL,
		Content:    content,
		Author:     author,
		AuthorName: authorName,
		ParentID:   parentID,
	}, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) GetByArticleURL(ctx context.Context, articleURL string) ([]model.Comment, error) {
	if m.getByArticleURLFn != nil {
		return m.getByArticleURLFn(ctx, articleURL)
	}
	return nil, nil
}

func (m *mockCommentRepository) GetReplies(ctx context.Context, parentID string) ([]model.Comment, error) {
	if m.getRepliesFn != nil {
		return m.getRepliesFn(ctx, parentID)
	}
	return nil, nil
}

func (m *mockCommentRepository) SetContentHash(ctx context.Context, commentID, hash string) (*model.Comment, error) {
	m.setContentHashCalls = append(m.setContentHashCalls, hash)
	if m.setContentHashFn != nil {
		return m.setContentHashFn(ctx, commentID, hash)
	}
	return &model.Comment{ID: commentID, ContentHash: &hash}, nil
}

func (m *mockCommentRepository) MarkOnChain(ctx context.Context, commentID string, onChainID int64, contentHash string) (*model.Comment, error) {
	m.markOnChainCalls = append(m.markOnChainCalls, onChainID)
	if m.markOnChainFn != nil {
		return m.markOnChainFn(ctx, commentID, onChainID, contentHash)
	}
	return &model.Comment{ID: commentID, OnChain: true, OnChainID: &onChainID, ContentHash: &contentHash}, nil
}

func (m *mockCommentRepository) SetUpvoteCount(ctx context.Context, commentID string, count int) (*model.Comment, error) {
	m.setUpvoteCountCalls = append(m.setUpvoteCountCalls, count)
	if m.setUpvoteCountFn != nil {
		return m.setUpvoteCountFn(ctx, commentID, count)
	}
	return &model.Comment{ID: commentID, UpvoteCount: count}, nil
}

func (m *mockCommentRepository) AddUpvote(ctx context.Context, tx *sqlx.Tx, commentID, voter, voterName string) (int, error) {
	m.addUpvoteCalls = append(m.addUpvoteCalls, voter)
	if m.addUpvoteFn != nil {
		return m.addUpvoteFn(ctx, commentID, voter, voterName)
	}
	return 1, nil
}

func (m *mockCommentRepository) GetByContentHash(ctx context.Context, hash string) (*model.Comment, error) {
	if m.getByContentHashFn != nil {
		return m.getByContentHashFn(ctx, hash)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) GetByOnChainID(ctx context.Context, onChainID int64) (*model.Comment, error) {
	if m.getByOnChainIDFn != nil {
		return m.getByOnChainIDFn(ctx, onChainID)
	}
	return nil, model.ErrCommentNotFound
}

type mockArticleRepository struct {
	createFn              func(ctx context.Context, a *model.Article) error
	getByIDFn             func(ctx context.Context, articleID string) (*model.Article, error)
	getByURLFn            func(ctx context.Context, articleURL string) (*model.Article, error)
	getByOnChainIDFn      func(ctx context.Context, onChainID int64) (*model.Article, error)
	listFn                func(ctx context.Context, limit int) ([]model.Article, error)
	markOnChainByURLFn    func(ctx context.Context, articleURL string, onChainID int64, contentHash string) (*model.Article, error)
	setUpvoteCountByURLFn func(ctx context.Context, articleURL string, count int) (*model.Article, error)
	addUpvoteFn           func(ctx context.Context, articleID, voter, voterName string) (int, error)
	incrementCommentsFn   func(ctx context.Context, articleID string, delta int) error

	createCalls         []*model.Article
	setUpvoteCountCalls []int
	incrementCalls      []string
}

func (m *mockArticleRepository) Create(ctx context.Context, a *model.Article) error {
	m.createCalls = append(m.createCalls, a)
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	return nil
}

func (m *mockArticleRepository) GetByID(ctx context.Context, articleID string) (*model.Article, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, articleID)
	}
	return nil, model.ErrArticleNotFound
}

func (m *mockArticleRepository) GetByURL(ctx context.Context, articleURL string) (*model.Article, error) {
	if m.getByURLFn != nil {
		return m.getByURLFn(ctx, articleURL)
	}
	return nil, model.ErrArticleNotFound
}

func (m *mockArticleRepository) GetByOnChainID(ctx context.Context, onChainID int64) (*model.Article, error) {
	if m.getByOnChainIDFn != nil {
		return m.getByOnChainIDFn(ctx, onChainID)
	}
	return nil, model.ErrArticleNotFound
}

func (m *mockArticleRepository) List(ctx context.Context, limit int) ([]model.Article, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockArticleRepository) MarkOnChainByURL(ctx context.Context, articleURL string, onChainID int64, contentHash string) (*model.Article, error) {
	if m.markOnChainByURLFn != nil {
		return m.markOnChainByURLFn(ctx, articleURL, onChainID, contentHash)
	}
	return &model.Article{ArticleURL: articleURL, OnChain: true, OnChainID: &onChainID}, nil
}

func (m *mockArticleRepository) SetUpvoteCountByURL(ctx context.Context, articleURL string, count int) (*model.Article, error) {
	m.setUpvoteCountCalls = append(m.setUpvoteCountCalls, count)
	if m.setUpvoteCountByURLFn != nil {
		return m.setUpvoteCountByURLFn(ctx, articleURL, count)
	}
	return &model.Article{ArticleURL: articleURL, UpvoteCount: count}, nil
}

func (m *mockArticleRepository) AddUpvote(ctx context.Context, tx *sqlx.Tx, articleID, voter, voterName string) (int, error) {
	if m.addUpvoteFn != nil {
		return m.addUpvoteFn(ctx, articleID, voter, voterName)
	}
	return 1, nil
}

func (m *mockArticleRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, articleID string, delta int) error {
	m.incrementCalls = append(m.incrementCalls, articleID)
	if m.incrementCommentsFn != nil {
		return m.incrementCommentsFn(ctx, articleID, delta)
	}
	return nil
}

type mockUserRepository struct {
	getByWalletFn func(ctx context.Context, walletAddress string) (*model.User, error)
	setPointsFn   func(ctx context.Context, walletAddress string, points int64) error
	topFn         func(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)

	setPointsCalls []int64
}

func (m *mockUserRepository) GetByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	if m.getByWalletFn != nil {
		return m.getByWalletFn(ctx, walletAddress)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) SetPoints(ctx context.Context, walletAddress string, points int64) error {
	m.setPointsCalls = append(m.setPointsCalls, points)
	if m.setPointsFn != nil {
		return m.setPointsFn(ctx, walletAddress, points)
	}
	return nil
}

func (m *mockUserRepository) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if m.topFn != nil {
		return m.topFn(ctx, limit)
	}
	return nil, nil
}

type mockContentStore struct {
	putFn func(ctx context.Context, v interface{}) (string, error)

	putCalls []interface{}
}

func (m *mockContentStore) Put(ctx context.Context, v interface{}) (string, error) {
	m.putCalls = append(m.putCalls, v)
	if m.putFn != nil {
		return m.putFn(ctx, v)
	}
	return "deadbeef", nil
}

func (m *mockContentStore) Close() error { return nil }

type mockLeaderboardCache struct {
	setScoreFn func(ctx context.Context, walletAddress string, points int64) error

	setScoreCalls []string
}

func (m *mockLeaderboardCache) SetScore(ctx context.Context, walletAddress string, points int64) error {
	m.setScoreCalls = append(m.setScoreCalls, walletAddress)
	if m.setScoreFn != nil {
		return m.setScoreFn(ctx, walletAddress, points)
	}
	return nil
}
