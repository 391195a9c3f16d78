package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/iammohit64/wrap-up/internal/model"
	"github.com/iammohit64/wrap-up/internal/repository"
)

const defaultArticleLimit = 50

// ArticleService owns article submissions: the off-chain record a curator
// creates before anchoring the article on the ledger.
type ArticleService struct {
	articleRepo repository.ArticleRepository
	identity    *IdentityService
}

func NewArticleService(articleRepo repository.ArticleRepository, identity *IdentityService) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		identity:    identity,
	}
}

// Submit creates the off-chain article record. URLs are unique: a second
// submission of the same URL fails with ErrArticleExists.
func (s *ArticleService) Submit(ctx context.Context, req model.SubmitArticleRequest) (*model.Article, error) {
	req.ArticleURL = strings.TrimSpace(req.ArticleURL)
	req.Title = strings.TrimSpace(req.Title)
	switch {
	case req.ArticleURL == "":
		return nil, model.ErrArticleURLRequired
	case req.Title == "":
		return nil, model.ErrTitleRequired
	case req.Curator == "":
		return nil, model.ErrCuratorRequired
	}

	curatorName := req.CuratorName
	if curatorName == "" {
		curatorName = s.identity.ResolveDisplayName(ctx, req.Curator)
	}

	article := &model.Article{
		ID:          uuid.NewString(),
		ArticleURL:  req.ArticleURL,
		Title:       req.Title,
		Summary:     req.Summary,
		Curator:     req.Curator,
		CuratorName: curatorName,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}

	log.Printf("[ArticleService] Article %s submitted by %s", article.ID, req.Curator)
	return article, nil
}

// GetByID retrieves an article by its durable ID.
func (s *ArticleService) GetByID(ctx context.Context, articleID string) (*model.Article, error) {
	if articleID == "" {
		return nil, model.ErrArticleNotFound
	}
	return s.articleRepo.GetByID(ctx, articleID)
}

// GetByURL retrieves an article by its URL.
func (s *ArticleService) GetByURL(ctx context.Context, articleURL string) (*model.Article, error) {
	if articleURL == "" {
		return nil, model.ErrArticleURLRequired
	}
	return s.articleRepo.GetByURL(ctx, articleURL)
}

// List returns articles ranked by engagement.
func (s *ArticleService) List(ctx context.Context, limit int) ([]model.Article, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultArticleLimit
	}
	articles, err := s.articleRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if articles == nil {
		articles = []model.Article{}
	}
	return articles, nil
}
