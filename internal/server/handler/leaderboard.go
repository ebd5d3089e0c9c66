package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/openpredict/marketd/internal/domain"
)

// LeaderboardService defines what the leaderboard handler requires from the
// service layer.
type LeaderboardService interface {
	Leaderboard(ctx context.Context, tf domain.Timeframe, limit int) ([]byte, error)
}

// LeaderboardHandler serves the trader ranking endpoint.
type LeaderboardHandler struct {
	leaderboard LeaderboardService
	logger      *slog.Logger
}

// NewLeaderboardHandler creates a LeaderboardHandler.
func NewLeaderboardHandler(leaderboard LeaderboardService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard, logger: logger}
}

// GetLeaderboard returns traders ranked by volume for a timeframe.
// GET /api/leaderboard?timeframe=ALL&limit=20
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	payload, err := h.leaderboard.Leaderboard(r.Context(), parseTimeframe(q.Get("timeframe")), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get leaderboard failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get leaderboard")
		return
	}
	writePayload(w, http.StatusOK, payload)
}
