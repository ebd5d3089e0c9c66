package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/service"
)

// MarketService defines the methods that the market handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type MarketService interface {
	ListMarkets(ctx context.Context, params service.ListParams) ([]byte, error)
	GetMarket(ctx context.Context, id string) ([]byte, error)
	ListEventMarkets(ctx context.Context, params service.ListParams) ([]byte, error)
}

// MarketHandler serves market-listing and single-market HTTP endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger,
	}
}

// ListMarkets returns live markets with pagination and filters.
// GET /api/markets?limit=50&offset=0&category=&search=&marketType=
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	payload, err := h.markets.ListMarkets(r.Context(), parseListParams(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list markets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list markets")
		return
	}
	writePayload(w, http.StatusOK, payload)
}

// GetMarket returns a single market by its ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	payload, err := h.markets.GetMarket(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get market failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get market")
		return
	}
	writePayload(w, http.StatusOK, payload)
}

// ListEventMarkets returns event-bundled markets enriched with subgraph
// signals.
// GET /api/markets-subgraph?limit=50&offset=0&tagSlug=
func (h *MarketHandler) ListEventMarkets(w http.ResponseWriter, r *http.Request) {
	payload, err := h.markets.ListEventMarkets(r.Context(), parseListParams(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list event markets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list event markets")
		return
	}
	writePayload(w, http.StatusOK, payload)
}
