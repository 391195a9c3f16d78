package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iammohit64/wrap-up/internal/httputil"
	"github.com/iammohit64/wrap-up/internal/model"
	"github.com/iammohit64/wrap-up/internal/service"
	"github.com/iammohit64/wrap-up/internal/transport/http/middleware"
)

type ArticleHandler struct {
	articleService *service.ArticleService
	commentService *service.CommentService
	stagingService *service.StagingService
}

func NewArticleHandler(articleService *service.ArticleService, commentService *service.CommentService, stagingService *service.StagingService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		commentService: commentService,
		stagingService: stagingService,
	}
}

// Submit handles POST /articles
// Creates the off-chain article record for the authenticated curator.
func (h *ArticleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Session required")
		return
	}

	var req model.SubmitArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	req.Curator = identity

	article, err := h.articleService.Submit(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrArticleURLRequired):
			httputil.WriteBadRequest(w, "Article URL is required")
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Article title is required")
		case errors.Is(err, model.ErrCuratorRequired):
			httputil.WriteBadRequest(w, "Curator is required")
		case errors.Is(err, model.ErrArticleExists):
			httputil.WriteConflict(w, "Article already submitted")
		default:
			log.Printf("[ERROR] Submit article handler: curator=%s err=%v", identity, err)
			httputil.WriteInternalError(w, "Failed to submit article")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, article)
}

type stageArticleRequest struct {
	ArticleURL string `json:"article_url"`
}

// Stage handles POST /articles/stage
// Pushes the article's metadata to content storage and returns the hash for
// ledger submission.
func (h *ArticleHandler) Stage(w http.ResponseWriter, r *http.Request) {
	var req stageArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	staged, err := h.stagingService.StageArticle(r.Context(), req.ArticleURL)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrArticleURLRequired):
			httputil.WriteBadRequest(w, "Article URL is required")
		case errors.Is(err, model.ErrArticleNotFound):
			httputil.WriteNotFound(w, "Article not found")
		case errors.Is(err, model.ErrContentStoreUnavailable):
			httputil.WriteBadGateway(w, "Content storage is unavailable, retry staging")
		default:
			log.Printf("[ERROR] Stage article handler: url=%s err=%v", req.ArticleURL, err)
			httputil.WriteInternalError(w, "Failed to stage article")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, staged)
}

// GetByID handles GET /articles/{id}
func (h *ArticleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	articleID := chi.URLParam(r, "id")

	article, err := h.articleService.GetByID(r.Context(), articleID)
	if err != nil {
		if errors.Is(err, model.ErrArticleNotFound) {
			httputil.WriteNotFound(w, "Article not found")
			return
		}
		log.Printf("[ERROR] Get article handler: article=%s err=%v", articleID, err)
		httputil.WriteInternalError(w, "Failed to get article")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, article)
}

// GetByURL handles GET /articles/lookup?url=...
func (h *ArticleHandler) GetByURL(w http.ResponseWriter, r *http.Request) {
	articleURL := r.URL.Query().Get("url")

	article, err := h.articleService.GetByURL(r.Context(), articleURL)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrArticleURLRequired):
			httputil.WriteBadRequest(w, "url query parameter is required")
		case errors.Is(err, model.ErrArticleNotFound):
			httputil.WriteNotFound(w, "Article not found")
		default:
			log.Printf("[ERROR] Get article handler: url=%s err=%v", articleURL, err)
			httputil.WriteInternalError(w, "Failed to get article")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, article)
}

// List handles GET /articles
// Returns articles ranked by engagement.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	articles, err := h.articleService.List(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] List articles handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list articles")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, articles)
}

// Upvote handles POST /articles/{id}/upvote
func (h *ArticleHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Session required")
		return
	}

	articleID := chi.URLParam(r, "id")

	result, err := h.commentService.UpvoteArticle(r.Context(), articleID, identity)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyUpvoted):
			httputil.WriteConflict(w, "You have already upvoted this article")
		case errors.Is(err, model.ErrArticleNotFound):
			httputil.WriteNotFound(w, "Article not found")
		default:
			log.Printf("[ERROR] Upvote article handler: article=%s voter=%s err=%v", articleID, identity, err)
			httputil.WriteInternalError(w, "Failed to upvote article")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
