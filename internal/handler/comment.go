package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iammohit64/wrap-up/internal/httputil"
	"github.com/iammohit64/wrap-up/internal/model"
	"github.com/iammohit64/wrap-up/internal/service"
	"github.com/iammohit64/wrap-up/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
	stagingService *service.StagingService
}

func NewCommentHandler(commentService *service.CommentService, stagingService *service.StagingService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		stagingService: stagingService,
	}
}

func writeCommentValidationError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, model.ErrArticleIDRequired):
		httputil.WriteBadRequest(w, "Article ID is required")
	case errors.Is(err, model.ErrArticleURLRequired):
		httputil.WriteBadRequest(w, "Article URL is required")
	case errors.Is(err, model.ErrContentRequired):
		httputil.WriteBadRequest(w, "Comment content is required")
	case errors.Is(err, model.ErrContentTooLong):
		httputil.WriteBadRequest(w, "Comment content too long (max 10000 characters)")
	case errors.Is(err, model.ErrAuthorRequired):
		httputil.WriteBadRequest(w, "Author is required")
	case errors.Is(err, model.ErrParentCommentNotFound):
		httputil.WriteNotFound(w, "Parent comment not found")
	default:
		return false
	}
	return true
}

// Create handles POST /comments
// Creates an off-chain comment for the authenticated identity.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Session required")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	// The session, not the body, decides who is speaking.
	req.Author = identity

	comment, err := h.commentService.Create(r.Context(), req)
	if err != nil {
		if writeCommentValidationError(w, err) {
			return
		}
		log.Printf("[ERROR] Create comment handler: author=%s err=%v", identity, err)
		httputil.WriteInternalError(w, "Failed to create comment")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Stage handles POST /comments/stage
// Creates the comment and prepares it for ledger submission.
func (h *CommentHandler) Stage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Session required")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	req.Author = identity

	staged, err := h.stagingService.StageComment(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrArticleNotOnChain):
			httputil.WritePreconditionFailed(w, "Article is not on-chain yet")
		case errors.Is(err, model.ErrContentStoreUnavailable):
			httputil.WriteBadGateway(w, "Content storage is unavailable, retry staging")
		default:
			if writeCommentValidationError(w, err) {
				return
			}
			log.Printf("[ERROR] Stage comment handler: author=%s err=%v", identity, err)
			httputil.WriteInternalError(w, "Failed to stage comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, staged)
}

// GetByArticle handles GET /comments?article_url=...
// Returns the article's comment tree: top-level newest-first, replies
// oldest-first.
func (h *CommentHandler) GetByArticle(w http.ResponseWriter, r *http.Request) {
	articleURL := r.URL.Query().Get("article_url")

	comments, err := h.commentService.GetByArticle(r.Context(), articleURL)
	if err != nil {
		if errors.Is(err, model.ErrArticleURLRequired) {
			httputil.WriteBadRequest(w, "article_url query parameter is required")
			return
		}
		log.Printf("[ERROR] Get comments handler: url=%s err=%v", articleURL, err)
		httputil.WriteInternalError(w, "Failed to get comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comments)
}

// GetByID handles GET /comments/{id}
func (h *CommentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")

	comment, err := h.commentService.GetByID(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		log.Printf("[ERROR] Get comment handler: comment=%s err=%v", commentID, err)
		httputil.WriteInternalError(w, "Failed to get comment")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// GetReplies handles GET /comments/{id}/replies
func (h *CommentHandler) GetReplies(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")

	replies, err := h.commentService.GetReplies(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		log.Printf("[ERROR] Get replies handler: comment=%s err=%v", commentID, err)
		httputil.WriteInternalError(w, "Failed to get replies")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, replies)
}

// Upvote handles POST /comments/{id}/upvote
// Records an off-chain vote for the authenticated identity.
func (h *CommentHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Session required")
		return
	}

	commentID := chi.URLParam(r, "id")

	comment, err := h.commentService.GetByID(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, model.ErrCommentNotFound) {
			httputil.WriteNotFound(w, "Comment not found")
			return
		}
		log.Printf("[ERROR] Upvote comment handler: comment=%s err=%v", commentID, err)
		httputil.WriteInternalError(w, "Failed to upvote comment")
		return
	}
	if comment.Author == identity {
		httputil.WriteForbidden(w, "You cannot upvote your own comment")
		return
	}

	result, err := h.commentService.UpvoteComment(r.Context(), commentID, identity)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyUpvoted):
			httputil.WriteConflict(w, "You have already upvoted this comment")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		default:
			log.Printf("[ERROR] Upvote comment handler: comment=%s voter=%s err=%v", commentID, identity, err)
			httputil.WriteInternalError(w, "Failed to upvote comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
