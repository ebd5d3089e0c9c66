package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openpredict/marketd/internal/aggregate"
	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/normalize"
	"github.com/openpredict/marketd/internal/platform/gamma"
)

// ClobAPI is the upstream surface the history service needs from the CLOB
// client.
type ClobAPI interface {
	GetPriceHistory(ctx context.Context, tokenID string, interval domain.HistoryInterval) ([]domain.PriceHistoryPoint, error)
}

// HistoryService serves price history series for a market's Yes token.
type HistoryService struct {
	clob   ClobAPI
	gamma  GammaAPI
	cache  domain.ResponseCache
	logger *slog.Logger
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(clob ClobAPI, g GammaAPI, cache domain.ResponseCache, logger *slog.Logger) *HistoryService {
	return &HistoryService{clob: clob, gamma: g, cache: cache, logger: logger}
}

// historyPayload is the wire shape of the history endpoint.
type historyPayload struct {
	Success bool                       `json:"success"`
	History []domain.PriceHistoryPoint `json:"history"`
}

// GetHistory returns the marshaled price history for a market. When tokenID
// is empty the Yes token is resolved from the market itself; a market whose
// token cannot be resolved serves an empty series rather than an error.
func (s *HistoryService) GetHistory(ctx context.Context, marketID, tokenID string, interval domain.HistoryInterval) ([]byte, error) {
	key := "history|id=" + marketID + "|token=" + tokenID + "|interval=" + string(interval)
	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}

	if tokenID == "" {
		resolved, err := s.resolveYesToken(ctx, marketID)
		if err != nil {
			return nil, err
		}
		tokenID = resolved
	}

	history := []domain.PriceHistoryPoint{}
	if tokenID != "" {
		points, err := s.clob.GetPriceHistory(ctx, tokenID, interval)
		if err != nil {
			return nil, fmt.Errorf("service: price history for market %s: %w", marketID, err)
		}
		history = aggregate.DedupeHistory(points)
	} else {
		s.logger.InfoContext(ctx, "service: market has no resolvable token, serving empty history",
			slog.String("market_id", marketID),
		)
	}

	payload, err := json.Marshal(historyPayload{Success: true, History: history})
	if err != nil {
		return nil, fmt.Errorf("service: marshal history: %w", err)
	}

	s.cache.Put(ctx, key, payload)
	return payload, nil
}

// resolveYesToken fetches the market and returns its Yes-side token ID, or ""
// when the market carries no usable token identifiers. A direct-fetch miss is
// retried through the question-ID sibling lookup before giving up.
func (s *HistoryService) resolveYesToken(ctx context.Context, marketID string) (string, error) {
	raw, err := s.gamma.GetMarket(ctx, marketID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("service: resolve token for market %s: %w", marketID, err)
		}
		siblings, qErr := s.gamma.GetMarketsByQuestionID(ctx, marketID)
		if qErr != nil || len(siblings) == 0 {
			return "", fmt.Errorf("service: resolve token for market %s: %w", marketID, err)
		}
		raw = siblings[0]
	}

	m := normalize.Market(&raw, normalize.Lookup{})
	if len(m.Outcomes) == 0 {
		return "", nil
	}
	return m.Outcomes[0].YesTokenID, nil
}

var _ GammaAPI = (*gamma.Client)(nil)
