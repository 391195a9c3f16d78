package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iammohit64/wrap-up/internal/handler"
	"github.com/iammohit64/wrap-up/internal/httputil"
	identitymw "github.com/iammohit64/wrap-up/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	CommentHandler     *handler.CommentHandler
	ArticleHandler     *handler.ArticleHandler
	SyncHandler        *handler.SyncHandler
	LeaderboardHandler *handler.LeaderboardHandler
	SessionHandler     *handler.SessionHandler
	SessionSecret      string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Session minting - no authentication required
	r.Route("/session", func(r chi.Router) {
		r.Post("/anonymous", cfg.SessionHandler.Anonymous)
		r.Post("/wallet", cfg.SessionHandler.Wallet)
	})

	// Public read endpoints with optional identity
	optional := identitymw.OptionalIdentityMiddleware(cfg.SessionSecret)
	r.With(optional).Get("/comments", cfg.CommentHandler.GetByArticle)
	r.With(optional).Get("/comments/{id}", cfg.CommentHandler.GetByID)
	r.With(optional).Get("/comments/{id}/replies", cfg.CommentHandler.GetReplies)
	r.With(optional).Get("/articles", cfg.ArticleHandler.List)
	r.With(optional).Get("/articles/lookup", cfg.ArticleHandler.GetByURL)
	r.With(optional).Get("/articles/{id}", cfg.ArticleHandler.GetByID)
	r.With(optional).Get("/leaderboard", cfg.LeaderboardHandler.Top)

	// Protected routes - require a session (wallet or anonymous)
	r.Group(func(r chi.Router) {
		r.Use(identitymw.IdentityMiddleware(cfg.SessionSecret))

		r.Post("/comments", cfg.CommentHandler.Create)
		r.Post("/comments/stage", cfg.CommentHandler.Stage)
		r.Post("/comments/{id}/upvote", cfg.CommentHandler.Upvote)

		r.Post("/articles", cfg.ArticleHandler.Submit)
		r.Post("/articles/stage", cfg.ArticleHandler.Stage)
		r.Post("/articles/{id}/upvote", cfg.ArticleHandler.Upvote)

		// Reconciliation surface: clients report confirmed ledger facts
		r.Route("/sync", func(r chi.Router) {
			r.Post("/confirm", cfg.SyncHandler.Confirm)
			r.Post("/comments/{id}/onchain", cfg.SyncHandler.MarkCommentOnChain)
			r.Post("/comments/{id}/upvotes", cfg.SyncHandler.SyncCommentUpvotes)
			r.Post("/articles/onchain", cfg.SyncHandler.MarkArticleOnChain)
			r.Post("/articles/upvotes", cfg.SyncHandler.SyncArticleUpvotes)
		})
	})

	return r
}
