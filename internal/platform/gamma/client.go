// Package gamma is the REST client for the Gamma API, which provides market
// and event discovery, metadata, and search.
package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/openpredict/marketd/internal/domain"
)

// Client is the Gamma API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gamma client for the given API root, e.g.
// "https://gamma-api.polymarket.com".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListQuery holds the filters accepted by the list endpoints. Every field
// that affects the result must also appear in the response cache key.
type ListQuery struct {
	Limit   int
	Offset  int
	Search  string
	TagSlug string
	Closed  *bool
}

func (q ListQuery) values() url.Values {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("order", "volume24hr")
	params.Set("ascending", "false")
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	if q.TagSlug != "" {
		params.Set("tag_slug", q.TagSlug)
	}
	if q.Closed != nil {
		params.Set("closed", strconv.FormatBool(*q.Closed))
		params.Set("active", strconv.FormatBool(!*q.Closed))
	}
	return params
}

// ListMarkets returns a filtered page of raw markets.
func (c *Client) ListMarkets(ctx context.Context, q ListQuery) ([]Market, error) {
	body, err := c.doGet(ctx, "/markets?"+q.values().Encode())
	if err != nil {
		return nil, fmt.Errorf("gamma: list markets: %w", err)
	}

	var markets []Market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("gamma: decode markets: %w", domain.ErrMalformed)
	}
	return markets, nil
}

// ListEvents returns a filtered page of raw events with their bundled
// sub-markets.
func (c *Client) ListEvents(ctx context.Context, q ListQuery) ([]Event, error) {
	body, err := c.doGet(ctx, "/events?"+q.values().Encode())
	if err != nil {
		return nil, fmt.Errorf("gamma: list events: %w", err)
	}

	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("gamma: decode events: %w", domain.ErrMalformed)
	}
	return events, nil
}

// GetMarket returns a single raw market by its ID.
func (c *Client) GetMarket(ctx context.Context, id string) (Market, error) {
	body, err := c.doGet(ctx, "/markets/"+url.PathEscape(id))
	if err != nil {
		return Market{}, fmt.Errorf("gamma: get market %s: %w", id, err)
	}

	var market Market
	if err := json.Unmarshal(body, &market); err != nil {
		return Market{}, fmt.Errorf("gamma: decode market: %w", domain.ErrMalformed)
	}
	return market, nil
}

// GetEvent returns a single raw event by its ID.
func (c *Client) GetEvent(ctx context.Context, id string) (Event, error) {
	body, err := c.doGet(ctx, "/events/"+url.PathEscape(id))
	if err != nil {
		return Event{}, fmt.Errorf("gamma: get event %s: %w", id, err)
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("gamma: decode event: %w", domain.ErrMalformed)
	}
	return event, nil
}

// GetMarketsByQuestionID returns the markets sharing a CTF question ID. Used
// to recover the true parent event of a market whose own ID is not an event
// ID.
func (c *Client) GetMarketsByQuestionID(ctx context.Context, questionID string) ([]Market, error) {
	params := url.Values{}
	params.Set("question_ids", questionID)

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("gamma: markets by question %s: %w", questionID, err)
	}

	var markets []Market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("gamma: decode markets: %w", domain.ErrMalformed)
	}
	return markets, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the Gamma API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, resp.StatusCode, body)
	}
	return body, nil
}
