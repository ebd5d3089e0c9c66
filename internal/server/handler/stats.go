package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// StatsService defines what the stats handler requires from the service
// layer.
type StatsService interface {
	Stats(ctx context.Context) ([]byte, error)
	Categories(ctx context.Context) ([]byte, error)
}

// StatsHandler serves the sampled stats aggregate and the category list.
type StatsHandler struct {
	stats  StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// GetStats returns aggregate figures over a sample of live markets.
// GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	payload, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get stats failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writePayload(w, http.StatusOK, payload)
}

// ListCategories returns the market categories currently in use.
// GET /api/categories
func (h *StatsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	payload, err := h.stats.Categories(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list categories failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writePayload(w, http.StatusOK, payload)
}
