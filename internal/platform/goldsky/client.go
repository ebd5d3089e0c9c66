// Package goldsky is a GraphQL client for the Goldsky-hosted subgraphs: the
// order-book subgraph (bid/ask/last price per condition) and the
// open-interest subgraph (volume per condition).
package goldsky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openpredict/marketd/internal/domain"
)

// Client queries the two subgraph endpoints.
type Client struct {
	orderbookURL    string
	openInterestURL string
	apiKey          string
	httpClient      *http.Client
}

// NewClient creates a new Goldsky GraphQL client for the given subgraph
// endpoints. The API key is optional; public subgraphs accept anonymous
// queries.
func NewClient(orderbookURL, openInterestURL, apiKey string) *Client {
	return &Client{
		orderbookURL:    orderbookURL,
		openInterestURL: openInterestURL,
		apiKey:          strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BookStats holds the order-book signals for one condition.
type BookStats struct {
	BestBid        float64
	BestAsk        float64
	LastTradePrice float64
}

// Midpoint returns the bid/ask midpoint, or 0 when either side is missing.
func (b BookStats) Midpoint() float64 {
	if b.BestBid > 0 && b.BestAsk > 0 {
		return (b.BestBid + b.BestAsk) / 2
	}
	return 0
}

// graphqlRequest is the standard GraphQL request envelope.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the standard GraphQL response envelope.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchBooks queries the order-book subgraph for one batch of condition IDs
// and returns the stats keyed by condition ID. Subgraph BigDecimal values
// arrive as strings.
func (c *Client) FetchBooks(ctx context.Context, conditionIDs []string) (map[string]BookStats, error) {
	query := `
		query Books($ids: [ID!]!) {
			marketDatas(where: { id_in: $ids }) {
				id
				bestBid
				bestAsk
				lastTradePrice
			}
		}
	`

	respData, err := c.doQuery(ctx, c.orderbookURL, query, map[string]any{"ids": lower(conditionIDs)})
	if err != nil {
		return nil, fmt.Errorf("goldsky: fetch books: %w", err)
	}

	var result struct {
		MarketDatas []struct {
			ID             string `json:"id"`
			BestBid        string `json:"bestBid"`
			BestAsk        string `json:"bestAsk"`
			LastTradePrice string `json:"lastTradePrice"`
		} `json:"marketDatas"`
	}
	if err := json.Unmarshal(respData, &result); err != nil {
		return nil, fmt.Errorf("goldsky: decode books: %w", domain.ErrMalformed)
	}

	books := make(map[string]BookStats, len(result.MarketDatas))
	for _, m := range result.MarketDatas {
		books[m.ID] = BookStats{
			BestBid:        parseDecimal(m.BestBid),
			BestAsk:        parseDecimal(m.BestAsk),
			LastTradePrice: parseDecimal(m.LastTradePrice),
		}
	}
	return books, nil
}

// FetchVolumes queries the open-interest subgraph for one batch of condition
// IDs and returns scaled collateral volume keyed by condition ID.
func (c *Client) FetchVolumes(ctx context.Context, conditionIDs []string) (map[string]float64, error) {
	query := `
		query OpenInterest($ids: [ID!]!) {
			marketOpenInterests(where: { id_in: $ids }) {
				id
				scaledCollateralVolume
			}
		}
	`

	respData, err := c.doQuery(ctx, c.openInterestURL, query, map[string]any{"ids": lower(conditionIDs)})
	if err != nil {
		return nil, fmt.Errorf("goldsky: fetch volumes: %w", err)
	}

	var result struct {
		MarketOpenInterests []struct {
			ID                     string `json:"id"`
			ScaledCollateralVolume string `json:"scaledCollateralVolume"`
		} `json:"marketOpenInterests"`
	}
	if err := json.Unmarshal(respData, &result); err != nil {
		return nil, fmt.Errorf("goldsky: decode volumes: %w", domain.ErrMalformed)
	}

	volumes := make(map[string]float64, len(result.MarketOpenInterests))
	for _, m := range result.MarketOpenInterests {
		volumes[m.ID] = parseDecimal(m.ScaledCollateralVolume)
	}
	return volumes, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doQuery executes a GraphQL query against the given endpoint and returns the
// raw "data" field from the response.
func (c *Client) doQuery(ctx context.Context, endpoint, query string, variables map[string]any) (json.RawMessage, error) {
	jsonBody, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, resp.StatusCode, body)
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", domain.ErrMalformed)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("%w: graphql error: %s", domain.ErrUpstream, gqlResp.Errors[0].Message)
	}
	return gqlResp.Data, nil
}

// lower lowercases condition IDs; subgraph entity IDs are lowercase hex.
func lower(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.ToLower(id)
	}
	return out
}

func parseDecimal(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
