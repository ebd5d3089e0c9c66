// Package service contains the fetch orchestration layer: ordered fallback
// chains over the upstream clients, normalization, and the response cache.
// Service methods return fully marshaled response payloads so that a cache
// hit serves the byte-identical response that was computed on the miss.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/openpredict/marketd/internal/aggregate"
	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/normalize"
	"github.com/openpredict/marketd/internal/platform/gamma"
)

// GammaAPI is the upstream surface the market service needs from the Gamma
// client.
type GammaAPI interface {
	ListMarkets(ctx context.Context, q gamma.ListQuery) ([]gamma.Market, error)
	ListEvents(ctx context.Context, q gamma.ListQuery) ([]gamma.Event, error)
	GetMarket(ctx context.Context, id string) (gamma.Market, error)
	GetEvent(ctx context.Context, id string) (gamma.Event, error)
	GetMarketsByQuestionID(ctx context.Context, questionID string) ([]gamma.Market, error)
}

// MarketService serves market listings, single-market lookups, categories,
// and the sampled stats aggregate.
type MarketService struct {
	gamma    GammaAPI
	subgraph *aggregate.SubgraphAggregator
	cache    domain.ResponseCache
	logger   *slog.Logger
}

// NewMarketService creates a MarketService.
func NewMarketService(g GammaAPI, subgraph *aggregate.SubgraphAggregator, cache domain.ResponseCache, logger *slog.Logger) *MarketService {
	return &MarketService{
		gamma:    g,
		subgraph: subgraph,
		cache:    cache,
		logger:   logger,
	}
}

const (
	defaultLimit = 50
	maxLimit     = 500
	// search terms shorter than this are ignored rather than forwarded.
	minSearchLen = 3
	// sample size for the categories and stats aggregates.
	sampleLimit = 100
)

// ListParams are the market-listing filters. Every field participates in the
// cache key, so distinct queries never collide.
type ListParams struct {
	Limit      int
	Offset     int
	Category   string
	Search     string
	MarketType string // "", "binary", or "multi"
	TagSlug    string
}

// normalized applies the limit cap, defaults, and the minimum search length.
func (p ListParams) normalized() ListParams {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if len(p.Search) < minSearchLen {
		p.Search = ""
	}
	return p
}

func (p ListParams) cacheKey(prefix string) string {
	return strings.Join([]string{
		prefix,
		"limit=" + strconv.Itoa(p.Limit),
		"offset=" + strconv.Itoa(p.Offset),
		"category=" + p.Category,
		"search=" + p.Search,
		"type=" + p.MarketType,
		"tag=" + p.TagSlug,
	}, "|")
}

// listMarketsPayload is the wire shape of the market-list endpoints.
type listMarketsPayload struct {
	Success bool            `json:"success"`
	Markets []domain.Market `json:"markets"`
	Total   int             `json:"total"`
}

// ListMarkets returns the marshaled market listing for the given filters,
// trying the markets endpoint first and the events endpoint as fallback.
func (s *MarketService) ListMarkets(ctx context.Context, params ListParams) ([]byte, error) {
	params = params.normalized()

	key := params.cacheKey("markets")
	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}

	markets, err := s.fetchMarketList(ctx, params)
	if err != nil {
		return nil, err
	}

	markets = filterMarkets(markets, params)

	payload, err := json.Marshal(listMarketsPayload{
		Success: true,
		Markets: markets,
		Total:   len(markets),
	})
	if err != nil {
		return nil, fmt.Errorf("service: marshal market list: %w", err)
	}

	s.cache.Put(ctx, key, payload)
	return payload, nil
}

// fetchMarketList runs the listing fallback chain: the paginated markets
// endpoint, then the paginated events endpoint with equivalent filters.
func (s *MarketService) fetchMarketList(ctx context.Context, params ListParams) ([]domain.Market, error) {
	open := false
	q := gamma.ListQuery{
		Limit:   params.Limit,
		Offset:  params.Offset,
		Search:  params.Search,
		TagSlug: params.TagSlug,
		Closed:  &open,
	}

	raw, err := s.gamma.ListMarkets(ctx, q)
	if err == nil {
		markets := make([]domain.Market, 0, len(raw))
		for i := range raw {
			markets = append(markets, normalize.Market(&raw[i], normalize.Lookup{}))
		}
		return markets, nil
	}

	s.logger.WarnContext(ctx, "service: markets endpoint failed, falling back to events",
		slog.String("error", err.Error()),
	)

	events, evErr := s.gamma.ListEvents(ctx, q)
	if evErr != nil {
		return nil, fmt.Errorf("service: list markets exhausted fallbacks: %w", evErr)
	}

	markets := make([]domain.Market, 0, len(events))
	for i := range events {
		markets = append(markets, normalize.Event(&events[i], normalize.Lookup{}))
	}
	return markets, nil
}

// filterMarkets applies the locally-evaluated filters: canonical category and
// market type.
func filterMarkets(markets []domain.Market, params ListParams) []domain.Market {
	if params.Category == "" && params.MarketType == "" {
		return markets
	}
	out := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if params.Category != "" && !strings.EqualFold(m.Category, params.Category) {
			continue
		}
		switch params.MarketType {
		case "binary":
			if !m.IsYesNo {
				continue
			}
		case "multi":
			if m.IsYesNo {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// marketPayload is the wire shape of the single-market endpoint.
type marketPayload struct {
	Success bool          `json:"success"`
	Market  domain.Market `json:"market"`
}

// GetMarket returns the marshaled single-market response. Beyond the direct
// market fetch it always tries to resolve the parent bundling event, so a
// multi-choice market surfaces its sibling outcomes.
func (s *MarketService) GetMarket(ctx context.Context, id string) ([]byte, error) {
	key := "market|id=" + id
	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}

	market, err := s.fetchMarket(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(marketPayload{Success: true, Market: market})
	if err != nil {
		return nil, fmt.Errorf("service: marshal market: %w", err)
	}

	s.cache.Put(ctx, key, payload)
	return payload, nil
}

// fetchMarket fetches the market by ID and runs the parent-event resolution
// chain. The market fetch and the event resolution fail independently; only
// when both produce nothing does the lookup fail.
func (s *MarketService) fetchMarket(ctx context.Context, id string) (domain.Market, error) {
	raw, marketErr := s.gamma.GetMarket(ctx, id)
	if marketErr != nil {
		s.logger.WarnContext(ctx, "service: direct market fetch failed",
			slog.String("market_id", id),
			slog.String("error", marketErr.Error()),
		)
	}

	if ev, ok := s.resolveParentEvent(ctx, &raw, id); ok && len(ev.Markets) > 0 {
		return normalize.Event(&ev, normalize.Lookup{}), nil
	}

	if marketErr != nil {
		return domain.Market{}, fmt.Errorf("service: get market %s: %w", id, marketErr)
	}
	return normalize.Market(&raw, normalize.Lookup{}), nil
}

// resolveParentEvent attempts, in order: an event lookup by the market's own
// ID, a question-ID recovery of the true event ID followed by a second event
// lookup, and finally any event payload embedded in the market itself.
func (s *MarketService) resolveParentEvent(ctx context.Context, m *gamma.Market, id string) (gamma.Event, bool) {
	if ev, err := s.gamma.GetEvent(ctx, id); err == nil && len(ev.Markets) > 0 {
		return ev, true
	}

	if m.QuestionID != "" {
		if siblings, err := s.gamma.GetMarketsByQuestionID(ctx, m.QuestionID); err == nil {
			for i := range siblings {
				for _, stub := range siblings[i].Events {
					if stub.ID == "" || stub.ID == id {
						continue
					}
					if ev, err := s.gamma.GetEvent(ctx, stub.ID); err == nil && len(ev.Markets) > 0 {
						return ev, true
					}
				}
			}
		}
	}

	// Last resort: an event embedded in the original market payload.
	for _, stub := range m.Events {
		if len(stub.Markets) > 0 {
			return stub, true
		}
	}
	return gamma.Event{}, false
}

// eventMarketsPayload is the wire shape of the subgraph-enriched listing.
type eventMarketsPayload struct {
	Success bool            `json:"success"`
	Markets []domain.Market `json:"markets"`
	Total   int             `json:"total"`
}

// ListEventMarkets serves the event-bundled multi-choice listing, enriched
// with order-book and open-interest signals from the subgraphs.
func (s *MarketService) ListEventMarkets(ctx context.Context, params ListParams) ([]byte, error) {
	params = params.normalized()

	key := params.cacheKey("markets-subgraph")
	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}

	open := false
	events, err := s.gamma.ListEvents(ctx, gamma.ListQuery{
		Limit:   params.Limit,
		Offset:  params.Offset,
		TagSlug: params.TagSlug,
		Closed:  &open,
	})
	if err != nil {
		return nil, fmt.Errorf("service: list event markets: %w", err)
	}

	var conditionIDs []string
	for i := range events {
		for j := range events[i].Markets {
			if cid := events[i].Markets[j].ConditionID; cid != "" {
				conditionIDs = append(conditionIDs, cid)
			}
		}
	}
	lookup := s.subgraph.Collect(ctx, conditionIDs)

	markets := make([]domain.Market, 0, len(events))
	for i := range events {
		markets = append(markets, normalize.Event(&events[i], lookup))
	}

	payload, err := json.Marshal(eventMarketsPayload{
		Success: true,
		Markets: markets,
		Total:   len(markets),
	})
	if err != nil {
		return nil, fmt.Errorf("service: marshal event markets: %w", err)
	}

	s.cache.Put(ctx, key, payload)
	return payload, nil
}

// categoriesPayload is the wire shape of the categories endpoint.
type categoriesPayload struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

// Categories returns the categories observed on a sample of live markets,
// vocabulary entries first. When the upstream is unavailable the fixed
// vocabulary is served instead.
func (s *MarketService) Categories(ctx context.Context) ([]byte, error) {
	const key = "categories"
	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}

	categories := s.sampleCategories(ctx)

	payload, err := json.Marshal(categoriesPayload{Success: true, Categories: categories})
	if err != nil {
		return nil, fmt.Errorf("service: marshal categories: %w", err)
	}

	s.cache.Put(ctx, key, payload)
	return payload, nil
}

func (s *MarketService) sampleCategories(ctx context.Context) []string {
	open := false
	raw, err := s.gamma.ListMarkets(ctx, gamma.ListQuery{Limit: sampleLimit, Closed: &open})
	if err != nil {
		s.logger.WarnContext(ctx, "service: categories sample failed, serving vocabulary",
			slog.String("error", err.Error()),
		)
		return append([]string(nil), normalize.Categories...)
	}

	seen := make(map[string]bool, len(raw))
	var extras []string
	for i := range raw {
		c := normalize.ResolveCategory(raw[i].Tags)
		if seen[c] {
			continue
		}
		seen[c] = true
		if !isVocabulary(c) {
			extras = append(extras, c)
		}
	}

	out := make([]string, 0, len(seen))
	for _, c := range normalize.Categories {
		if seen[c] {
			out = append(out, c)
		}
	}
	out = append(out, extras...)
	if len(out) == 0 {
		return append([]string(nil), normalize.Categories...)
	}
	return out
}

func isVocabulary(c string) bool {
	for _, v := range normalize.Categories {
		if v == c {
			return true
		}
	}
	return false
}

// statsPayload is the wire shape of the stats endpoint.
type statsPayload struct {
	Success bool               `json:"success"`
	Stats   domain.MarketStats `json:"stats"`
}

// Stats aggregates 24h volume, active-market count, and total liquidity over
// a sample of live markets.
func (s *MarketService) Stats(ctx context.Context) ([]byte, error) {
	const key = "stats"
	if payload, ok := s.cache.Get(ctx, key); ok {
		return payload, nil
	}

	open := false
	raw, err := s.gamma.ListMarkets(ctx, gamma.ListQuery{Limit: sampleLimit, Closed: &open})
	if err != nil {
		return nil, fmt.Errorf("service: stats sample: %w", err)
	}

	stats := domain.MarketStats{SampledMarkets: len(raw)}
	for i := range raw {
		m := normalize.Market(&raw[i], normalize.Lookup{})
		stats.Volume24h += m.Volume24h
		stats.TotalLiquidity += m.Liquidity
		if bool(raw[i].Active) && !bool(raw[i].Closed) {
			stats.ActiveMarkets++
		}
	}

	payload, err := json.Marshal(statsPayload{Success: true, Stats: stats})
	if err != nil {
		return nil, fmt.Errorf("service: marshal stats: %w", err)
	}

	s.cache.Put(ctx, key, payload)
	return payload, nil
}
