package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iammohit64/wrap-up/internal/contentstore"
	"github.com/iammohit64/wrap-up/internal/model"
	"github.com/iammohit64/wrap-up/internal/repository"
)

// CommentMetadata is the object pushed to content-addressed storage. Its
// hash is what the caller submits with the ledger transaction.
type CommentMetadata struct {
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName"`
	ArticleURL string    `json:"articleUrl"`
	Timestamp  time.Time `json:"timestamp"`
}

// ArticleMetadata is the article-side equivalent of CommentMetadata.
type ArticleMetadata struct {
	ArticleURL  string    `json:"articleUrl"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Curator     string    `json:"curator"`
	CuratorName string    `json:"curatorName"`
	Timestamp   time.Time `json:"timestamp"`
}

// StagingService prepares a comment for ledger submission. The comment is
// persisted first so a failed or abandoned submission still leaves a durable,
// reconcilable record; only then is content pushed to storage.
type StagingService struct {
	comments    *CommentService
	articleRepo repository.ArticleRepository
	store       contentstore.Store
}

func NewStagingService(comments *CommentService, articleRepo repository.ArticleRepository, store contentstore.Store) *StagingService {
	return &StagingService{
		comments:    comments,
		articleRepo: articleRepo,
		store:       store,
	}
}

// StageComment runs the staging sequence:
//
//  1. durable create in the comment store
//  2. precondition: the article must already be anchored on the ledger
//  3. push metadata to content-addressed storage, record the hash
//
// The precondition is checked before the storage call: a comment can never be
// anchored to an article that is not itself anchored, so there is no point
// uploading content that cannot be submitted.
func (s *StagingService) StageComment(ctx context.Context, req model.CreateCommentRequest) (*model.StagedComment, error) {
	comment, err := s.comments.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	article, err := s.articleRepo.GetByURL(ctx, req.ArticleURL)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			return nil, model.ErrArticleNotOnChain
		}
		return nil, fmt.Errorf("look up article: %w", err)
	}
	if article.OnChainID == nil {
		return nil, model.ErrArticleNotOnChain
	}

	hash, err := s.store.Put(ctx, CommentMetadata{
		Content:    comment.Content,
		Author:     comment.Author,
		AuthorName: comment.AuthorName,
		ArticleURL: comment.ArticleURL,
		Timestamp:  comment.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrContentStoreUnavailable, err)
	}

	if _, err := s.comments.commentRepo.SetContentHash(ctx, comment.ID, hash); err != nil {
		return nil, fmt.Errorf("record content hash: %w", err)
	}

	log.Printf("[Staging] Comment %s staged: hash=%s article=%d", comment.ID, hash, *article.OnChainID)
	return &model.StagedComment{
		CommentID:        comment.ID,
		OnChainArticleID: *article.OnChainID,
		ContentHash:      hash,
	}, nil
}

// StageArticle pushes an already-submitted article's metadata to
// content-addressed storage and returns the hash the curator submits with the
// ledger transaction. The hash is persisted on the article row when the
// anchoring is confirmed, not here.
func (s *StagingService) StageArticle(ctx context.Context, articleURL string) (*model.StagedArticle, error) {
	if articleURL == "" {
		return nil, model.ErrArticleURLRequired
	}

	article, err := s.articleRepo.GetByURL(ctx, articleURL)
	if err != nil {
		return nil, err
	}

	summary := ""
	if article.Summary != nil {
		summary = *article.Summary
	}
	hash, err := s.store.Put(ctx, ArticleMetadata{
		ArticleURL:  article.ArticleURL,
		Title:       article.Title,
		Summary:     summary,
		Curator:     article.Curator,
		CuratorName: article.CuratorName,
		Timestamp:   article.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrContentStoreUnavailable, err)
	}

	log.Printf("[Staging] Article %s staged: hash=%s", article.ID, hash)
	return &model.StagedArticle{
		ArticleID:   article.ID,
		ContentHash: hash,
	}, nil
}
