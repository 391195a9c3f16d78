package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/iammohit64/wrap-up/internal/httputil"
	"github.com/iammohit64/wrap-up/internal/ledger"
	"github.com/iammohit64/wrap-up/internal/model"
	"github.com/iammohit64/wrap-up/internal/queue"
	"github.com/iammohit64/wrap-up/internal/service"
)

// SyncHandler exposes the reconciliation surface: clients report confirmed
// ledger facts here, and the confirm endpoint verifies a transaction
// server-side and fans its events onto the worker stream.
type SyncHandler struct {
	syncService *service.SyncService
	confirmer   *ledger.Confirmer
	publisher   queue.Publisher
}

func NewSyncHandler(syncService *service.SyncService, confirmer *ledger.Confirmer, publisher queue.Publisher) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		confirmer:   confirmer,
		publisher:   publisher,
	}
}

type markOnChainRequest struct {
	OnChainID   int64  `json:"on_chain_id"`
	ContentHash string `json:"content_hash"`
}

// MarkCommentOnChain handles POST /sync/comments/{id}/onchain
func (h *SyncHandler) MarkCommentOnChain(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")

	var req markOnChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.syncService.MarkCommentOnChain(r.Context(), commentID, req.OnChainID, req.ContentHash)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrOnChainIDRequired):
			httputil.WriteBadRequest(w, "A positive on-chain ID is required")
		case errors.Is(err, model.ErrContentHashRequired):
			httputil.WriteBadRequest(w, "Content hash is required")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		default:
			log.Printf("[ERROR] Mark comment on-chain handler: comment=%s err=%v", commentID, err)
			httputil.WriteInternalError(w, "Failed to mark comment on-chain")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

type syncCountRequest struct {
	Count int `json:"count"`
}

// SyncCommentUpvotes handles POST /sync/comments/{id}/upvotes
func (h *SyncHandler) SyncCommentUpvotes(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "id")

	var req syncCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.syncService.SyncCommentUpvotes(r.Context(), commentID, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidUpvoteCount):
			httputil.WriteBadRequest(w, "Upvote count must be a non-negative integer")
		case errors.Is(err, model.ErrCommentNotFound):
			httputil.WriteNotFound(w, "Comment not found")
		default:
			log.Printf("[ERROR] Sync comment upvotes handler: comment=%s err=%v", commentID, err)
			httputil.WriteInternalError(w, "Failed to sync upvote count")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

type markArticleOnChainRequest struct {
	ArticleURL  string `json:"article_url"`
	OnChainID   int64  `json:"on_chain_id"`
	ContentHash string `json:"content_hash"`
}

// MarkArticleOnChain handles POST /sync/articles/onchain
// Keyed by URL: that is the identifier the submitting client holds.
func (h *SyncHandler) MarkArticleOnChain(w http.ResponseWriter, r *http.Request) {
	var req markArticleOnChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	article, err := h.syncService.MarkArticleOnChain(r.Context(), req.ArticleURL, req.OnChainID, req.ContentHash)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrArticleURLRequired):
			httputil.WriteBadRequest(w, "Article URL is required")
		case errors.Is(err, model.ErrOnChainIDRequired):
			httputil.WriteBadRequest(w, "A positive on-chain ID is required")
		case errors.Is(err, model.ErrArticleNotFound):
			httputil.WriteNotFound(w, "Article not found")
		default:
			log.Printf("[ERROR] Mark article on-chain handler: url=%s err=%v", req.ArticleURL, err)
			httputil.WriteInternalError(w, "Failed to mark article on-chain")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, article)
}

type syncArticleCountRequest struct {
	ArticleURL string `json:"article_url"`
	Count      int    `json:"count"`
}

// SyncArticleUpvotes handles POST /sync/articles/upvotes
func (h *SyncHandler) SyncArticleUpvotes(w http.ResponseWriter, r *http.Request) {
	var req syncArticleCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	article, err := h.syncService.SyncArticleUpvotes(r.Context(), req.ArticleURL, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrArticleURLRequired):
			httputil.WriteBadRequest(w, "Article URL is required")
		case errors.Is(err, model.ErrInvalidUpvoteCount):
			httputil.WriteBadRequest(w, "Upvote count must be a non-negative integer")
		case errors.Is(err, model.ErrArticleNotFound):
			httputil.WriteNotFound(w, "Article not found")
		default:
			log.Printf("[ERROR] Sync article upvotes handler: url=%s err=%v", req.ArticleURL, err)
			httputil.WriteInternalError(w, "Failed to sync upvote count")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, article)
}

type confirmRequest struct {
	TxHash string `json:"tx_hash"`
}

type confirmResponse struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	Events      int    `json:"events"`
}

// Confirm handles POST /sync/confirm
// Verifies the transaction against the ledger and fans its decoded events
// onto the chain stream for the reconciliation workers.
func (h *SyncHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if h.confirmer == nil {
		httputil.WriteBadGateway(w, "Ledger RPC is not configured")
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.TxHash == "" {
		httputil.WriteBadRequest(w, "Transaction hash is required")
		return
	}

	conf, err := h.confirmer.Confirm(r.Context(), common.HexToHash(req.TxHash))
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrTxNotFound):
			httputil.WriteNotFound(w, "Transaction not found on the ledger")
		case errors.Is(err, ledger.ErrTxFailed):
			httputil.WriteConflict(w, "Transaction reverted")
		case errors.Is(err, ledger.ErrInsufficientConfirmations):
			httputil.WritePreconditionFailed(w, "Transaction not confirmed deep enough yet, retry later")
		default:
			log.Printf("[ERROR] Confirm handler: tx=%s err=%v", req.TxHash, err)
			httputil.WriteBadGateway(w, "Ledger RPC failed")
		}
		return
	}

	if err := h.publisher.PublishConfirmation(r.Context(), conf); err != nil {
		log.Printf("[ERROR] Confirm handler: publish tx=%s err=%v", req.TxHash, err)
		httputil.WriteInternalError(w, "Failed to enqueue confirmed events")
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, confirmResponse{
		TxHash:      conf.TxHash.Hex(),
		BlockNumber: conf.BlockNumber,
		Events:      len(conf.Events),
	})
}
