package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/iammohit64/wrap-up/internal/httputil"
	"github.com/iammohit64/wrap-up/internal/service"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Top handles GET /leaderboard
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.leaderboardService.Top(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] Leaderboard handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to read leaderboard")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entries)
}
