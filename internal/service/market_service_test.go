package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openpredict/marketd/internal/aggregate"
	"github.com/openpredict/marketd/internal/cache/memory"
	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/platform/gamma"
	"github.com/openpredict/marketd/internal/platform/goldsky"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubSubgraph satisfies aggregate.SubgraphQuerier with empty tables.
type stubSubgraph struct{}

func (stubSubgraph) FetchBooks(context.Context, []string) (map[string]goldsky.BookStats, error) {
	return nil, nil
}

func (stubSubgraph) FetchVolumes(context.Context, []string) (map[string]float64, error) {
	return nil, nil
}

// newMarketService builds a MarketService over an httptest Gamma upstream
// and a fresh in-memory cache. The subgraph aggregator is backed by a stub
// that returns empty tables.
func newMarketService(t *testing.T, upstream http.Handler) *MarketService {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	return NewMarketService(
		gamma.NewClient(srv.URL),
		aggregate.NewSubgraphAggregator(stubSubgraph{}, 200, discardLogger()),
		memory.New(time.Minute, 50),
		discardLogger(),
	)
}

func TestListMarketsFallsBackToEvents(t *testing.T) {
	var marketCalls, eventCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("GET /markets", func(w http.ResponseWriter, r *http.Request) {
		marketCalls.Add(1)
		http.Error(w, "upstream down", http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		eventCalls.Add(1)
		io.WriteString(w, `[{
			"id": "evt-1",
			"title": "Will the proposal pass?",
			"markets": [{
				"id": "m-1",
				"question": "Will the proposal pass?",
				"outcomes": "[\"Yes\",\"No\"]",
				"outcomePrices": "[\"0.62\",\"0.38\"]",
				"volumeNum": 1000
			}]
		}]`)
	})

	svc := newMarketService(t, mux)
	payload, err := svc.ListMarkets(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("ListMarkets: %v", err)
	}

	var resp struct {
		Success bool            `json:"success"`
		Markets []domain.Market `json:"markets"`
		Total   int             `json:"total"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !resp.Success || resp.Total != 1 || len(resp.Markets) != 1 {
		t.Fatalf("resp = %+v, want success with 1 market", resp)
	}
	if got := resp.Markets[0].YesPrice; got != 0.62 {
		t.Errorf("yesPrice = %v, want 0.62", got)
	}
	if marketCalls.Load() != 1 || eventCalls.Load() != 1 {
		t.Errorf("calls = markets:%d events:%d, want 1 each", marketCalls.Load(), eventCalls.Load())
	}
}

func TestListMarketsServesCachedPayload(t *testing.T) {
	var calls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("GET /markets", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `[{
			"id": "m-1",
			"question": "Cached?",
			"outcomes": "[\"Yes\",\"No\"]",
			"outcomePrices": "[\"0.5\",\"0.5\"]"
		}]`)
	})

	svc := newMarketService(t, mux)

	first, err := svc.ListMarkets(context.Background(), ListParams{Limit: 10})
	if err != nil {
		t.Fatalf("first ListMarkets: %v", err)
	}
	second, err := svc.ListMarkets(context.Background(), ListParams{Limit: 10})
	if err != nil {
		t.Fatalf("second ListMarkets: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("cache hit returned a different payload")
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1", calls.Load())
	}
}

func TestListMarketsDistinctParamsMissCache(t *testing.T) {
	var calls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("GET /markets", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `[]`)
	})

	svc := newMarketService(t, mux)
	ctx := context.Background()

	if _, err := svc.ListMarkets(ctx, ListParams{Limit: 10}); err != nil {
		t.Fatalf("ListMarkets: %v", err)
	}
	if _, err := svc.ListMarkets(ctx, ListParams{Limit: 20}); err != nil {
		t.Fatalf("ListMarkets: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("upstream calls = %d, want 2 for distinct params", calls.Load())
	}
}

func TestGetMarketNotFoundAfterExhaustion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	svc := newMarketService(t, mux)
	_, err := svc.GetMarket(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetMarketResolvesParentEvent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /markets/{id}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"id": "m-1",
			"question": "Candidate A wins?",
			"outcomes": "[\"Yes\",\"No\"]",
			"outcomePrices": "[\"0.4\",\"0.6\"]"
		}`)
	})
	mux.HandleFunc("GET /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"id": "evt-1",
			"title": "Who wins the election?",
			"markets": [
				{"id": "m-1", "groupItemTitle": "Candidate A", "outcomePrices": "[\"0.4\",\"0.6\"]", "volumeNum": 100},
				{"id": "m-2", "groupItemTitle": "Candidate B", "outcomePrices": "[\"0.35\",\"0.65\"]", "volumeNum": 90},
				{"id": "m-3", "groupItemTitle": "Candidate C", "outcomePrices": "[\"0.25\",\"0.75\"]", "volumeNum": 80}
			]
		}`)
	})

	svc := newMarketService(t, mux)
	payload, err := svc.GetMarket(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}

	var resp struct {
		Success bool          `json:"success"`
		Market  domain.Market `json:"market"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !resp.Success {
		t.Fatal("success = false")
	}
	if resp.Market.IsYesNo {
		t.Error("isYesNo = true, want multi-outcome market")
	}
	if len(resp.Market.Outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(resp.Market.Outcomes))
	}
	if resp.Market.Outcomes[0].Name != "Candidate A" {
		t.Errorf("first outcome = %q, want Candidate A", resp.Market.Outcomes[0].Name)
	}
}

func TestCategoriesFallsBackToVocabulary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	svc := newMarketService(t, mux)
	payload, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}

	var resp struct {
		Success    bool     `json:"success"`
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !resp.Success || len(resp.Categories) == 0 {
		t.Fatalf("resp = %+v, want vocabulary fallback", resp)
	}
}

func TestStatsAggregatesSample(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /markets", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id": "m-1", "question": "A?", "active": true, "closed": false, "volume24hr": 100, "liquidityNum": 50, "outcomePrices": "[\"0.5\",\"0.5\"]"},
			{"id": "m-2", "question": "B?", "active": false, "closed": true, "volume24hr": 40, "liquidityNum": 10, "outcomePrices": "[\"0.9\",\"0.1\"]"}
		]`)
	})

	svc := newMarketService(t, mux)
	payload, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	var resp struct {
		Success bool               `json:"success"`
		Stats   domain.MarketStats `json:"stats"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if resp.Stats.SampledMarkets != 2 {
		t.Errorf("sampledMarkets = %d, want 2", resp.Stats.SampledMarkets)
	}
	if resp.Stats.ActiveMarkets != 1 {
		t.Errorf("activeMarkets = %d, want 1", resp.Stats.ActiveMarkets)
	}
	if resp.Stats.Volume24h != 140 {
		t.Errorf("volume24h = %v, want 140", resp.Stats.Volume24h)
	}
}
