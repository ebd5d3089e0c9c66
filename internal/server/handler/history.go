package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openpredict/marketd/internal/domain"
)

// HistoryService defines what the history handler requires from the service
// layer.
type HistoryService interface {
	GetHistory(ctx context.Context, marketID, tokenID string, interval domain.HistoryInterval) ([]byte, error)
}

// HistoryHandler serves the price history endpoint.
type HistoryHandler struct {
	history HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(history HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// GetHistory returns the price history series for a market's Yes token.
// GET /api/markets/{id}/history?tokenId=&interval=1D
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	q := r.URL.Query()
	payload, err := h.history.GetHistory(r.Context(), id, q.Get("tokenId"), parseInterval(q.Get("interval")))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get history failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get price history")
		return
	}
	writePayload(w, http.StatusOK, payload)
}
