package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openpredict/marketd/internal/domain"
)

// ProfileService defines what the profile handler requires from the service
// layer.
type ProfileService interface {
	Profile(ctx context.Context, address string, tf domain.Timeframe) ([]byte, error)
}

// ProfileHandler serves the user profile endpoint.
type ProfileHandler struct {
	profiles ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// GetProfile returns the aggregated portfolio profile for a wallet address.
// GET /api/user/{address}/profile?timeframe=ALL
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing wallet address")
		return
	}

	tf := parseTimeframe(r.URL.Query().Get("timeframe"))
	payload, err := h.profiles.Profile(r.Context(), address, tf)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, "invalid wallet address")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get profile failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get user profile")
		return
	}
	writePayload(w, http.StatusOK, payload)
}
