// Package data is the REST client for the analytics/data API: user value,
// stats, positions, activity, PnL series, and the leaderboard.
package data

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

// Client is the data API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given API root, e.g.
// "https://data-api.polymarket.com".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetValue returns the current portfolio value for the address.
func (c *Client) GetValue(ctx context.Context, address string) (float64, error) {
	params := url.Values{}
	params.Set("user", address)

	body, err := c.doGet(ctx, "/value?"+params.Encode())
	if err != nil {
		return 0, fmt.Errorf("data: get value: %w", err)
	}

	var rows []struct {
		User  string  `json:"user"`
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("data: decode value: %w", domain.ErrMalformed)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Value, nil
}

// Stats is the lifetime trading summary for one address.
type Stats struct {
	Volume        float64 `json:"volume"`
	Profit        float64 `json:"profit"`
	MarketsTraded int     `json:"traded"`
}

// GetStats returns lifetime volume, profit, and markets-traded counters.
func (c *Client) GetStats(ctx context.Context, address string) (Stats, error) {
	params := url.Values{}
	params.Set("user", address)

	body, err := c.doGet(ctx, "/stats?"+params.Encode())
	if err != nil {
		return Stats{}, fmt.Errorf("data: get stats: %w", err)
	}

	var s Stats
	if err := json.Unmarshal(body, &s); err != nil {
		return Stats{}, fmt.Errorf("data: decode stats: %w", domain.ErrMalformed)
	}
	return s, nil
}

// rawPosition is the wire shape of one position row.
type rawPosition struct {
	ConditionID  string  `json:"conditionId"`
	Title        string  `json:"title"`
	Outcome      string  `json:"outcome"`
	Size         float64 `json:"size"`
	AvgPrice     float64 `json:"avgPrice"`
	CurPrice     float64 `json:"curPrice"`
	CurrentValue float64 `json:"currentValue"`
	CashPnL      float64 `json:"cashPnl"`
	Redeemable   bool    `json:"redeemable"`
}

func (p rawPosition) toDomain() domain.Position {
	return domain.Position{
		MarketID:     p.ConditionID,
		Title:        p.Title,
		Outcome:      p.Outcome,
		Size:         p.Size,
		AvgPrice:     p.AvgPrice,
		CurrentPrice: p.CurPrice,
		Value:        p.CurrentValue,
		PnL:          p.CashPnL,
		Redeemable:   p.Redeemable,
	}
}

// GetPositions returns open (closed=false) or closed/redeemable positions
// for the address.
func (c *Client) GetPositions(ctx context.Context, address string, closed bool) ([]domain.Position, error) {
	params := url.Values{}
	params.Set("user", address)
	params.Set("closed", strconv.FormatBool(closed))
	params.Set("limit", "100")

	body, err := c.doGet(ctx, "/positions?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("data: get positions: %w", err)
	}

	var rows []rawPosition
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("data: decode positions: %w", domain.ErrMalformed)
	}

	positions := make([]domain.Position, 0, len(rows))
	for _, r := range rows {
		positions = append(positions, r.toDomain())
	}
	return positions, nil
}

// rawActivity is the wire shape of one activity row.
type rawActivity struct {
	Type        string  `json:"type"`
	ConditionID string  `json:"conditionId"`
	Title       string  `json:"title"`
	Outcome     string  `json:"outcome"`
	Side        string  `json:"side"`
	Size        float64 `json:"size"`
	Price       float64 `json:"price"`
	USDCSize    float64 `json:"usdcSize"`
	Timestamp   int64   `json:"timestamp"`
}

// GetActivity returns the most recent account activity for the address.
func (c *Client) GetActivity(ctx context.Context, address string, limit int) ([]domain.Activity, error) {
	params := url.Values{}
	params.Set("user", address)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.doGet(ctx, "/activity?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("data: get activity: %w", err)
	}

	var rows []rawActivity
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("data: decode activity: %w", domain.ErrMalformed)
	}

	activity := make([]domain.Activity, 0, len(rows))
	for _, r := range rows {
		activity = append(activity, domain.Activity{
			Type:      r.Type,
			MarketID:  r.ConditionID,
			Title:     r.Title,
			Outcome:   r.Outcome,
			Side:      r.Side,
			Size:      r.Size,
			Price:     r.Price,
			USDSize:   r.USDCSize,
			Timestamp: r.Timestamp,
		})
	}
	return activity, nil
}

// GetPnLSeries returns the raw (unsorted, possibly duplicated) portfolio
// value series for the address at the given interval and fidelity.
func (c *Client) GetPnLSeries(ctx context.Context, address, interval, fidelity string) ([]domain.PnLPoint, error) {
	params := url.Values{}
	params.Set("user_address", address)
	params.Set("interval", interval)
	params.Set("fidelity", fidelity)

	body, err := c.doGet(ctx, "/user-pnl?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("data: get pnl series: %w", err)
	}

	var rows []struct {
		T int64   `json:"t"`
		P float64 `json:"p"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("data: decode pnl series: %w", domain.ErrMalformed)
	}

	points := make([]domain.PnLPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.PnLPoint{Timestamp: r.T, Value: r.P})
	}
	return points, nil
}

// GetLeaderboard returns the top traders for the given window, in upstream
// order. Ranks are assigned by the caller.
func (c *Client) GetLeaderboard(ctx context.Context, window string, limit int) ([]domain.LeaderboardEntry, error) {
	params := url.Values{}
	params.Set("window", window)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.doGet(ctx, "/leaderboard?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("data: get leaderboard: %w", err)
	}

	var rows []struct {
		ProxyWallet string  `json:"proxyWallet"`
		Name        string  `json:"name"`
		Volume      float64 `json:"amount"`
		Profit      float64 `json:"profit"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("data: decode leaderboard: %w", domain.ErrMalformed)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		e := domain.LeaderboardEntry{
			Address:  r.ProxyWallet,
			Username: r.Name,
			Volume:   r.Volume,
			Profit:   r.Profit,
		}
		if r.Volume > 0 {
			e.ROI = r.Profit / r.Volume
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

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
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrUpstream, resp.StatusCode, body)
	}
	return body, nil
}
