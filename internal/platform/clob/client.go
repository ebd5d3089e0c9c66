// Package clob is the REST client for the order-book API, used here only for
// its read surface: outcome-token price history.
package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openpredict/marketd/internal/domain"
)

// Client is the order-book API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given API root, e.g.
// "https://clob.polymarket.com".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// historyResponse is the wire shape of /prices-history.
type historyResponse struct {
	History []struct {
		T int64   `json:"t"`
		P float64 `json:"p"`
	} `json:"history"`
}

// GetPriceHistory returns the raw price series for one outcome token at the
// fidelity implied by the interval. Points are returned as received; ordering
// and de-duplication are the aggregator's job.
func (c *Client) GetPriceHistory(ctx context.Context, tokenID string, interval domain.HistoryInterval) ([]domain.PriceHistoryPoint, error) {
	params := url.Values{}
	params.Set("market", tokenID)
	params.Set("interval", strings.ToLower(string(interval)))
	params.Set("fidelity", strconv.Itoa(interval.Fidelity()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/prices-history?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("clob: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clob: price history: %w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("clob: price history: %w: read response: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("clob: price history %s: %w", tokenID, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("clob: price history: %w: HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}

	var hr historyResponse
	if err := json.Unmarshal(body, &hr); err != nil {
		return nil, fmt.Errorf("clob: decode price history: %w", domain.ErrMalformed)
	}

	points := make([]domain.PriceHistoryPoint, 0, len(hr.History))
	for _, p := range hr.History {
		points = append(points, domain.PriceHistoryPoint{Timestamp: p.T, Price: p.P})
	}
	return points, nil
}
