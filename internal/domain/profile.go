package domain

// Timeframe selects the PnL series window for a user profile.
type Timeframe string

const (
	Timeframe1D  Timeframe = "1D"
	Timeframe1W  Timeframe = "1W"
	Timeframe1M  Timeframe = "1M"
	TimeframeAll Timeframe = "ALL"
)

// UserProfile aggregates everything known about one address across the
// upstream data endpoints. Any field may be empty when its upstream call
// failed; a profile is never withheld because of a partial failure.
type UserProfile struct {
	Address         string      `json:"address"`
	Value           float64     `json:"value"`
	Volume          float64     `json:"volume"`
	Profit          float64     `json:"profit"`
	MarketsTraded   int         `json:"marketsTraded"`
	Positions       []Position  `json:"positions"`
	ClosedPositions []Position  `json:"closedPositions"`
	Activity        []Activity  `json:"activity"`
	PnLSeries       []PnLPoint  `json:"pnlSeries"`
}

// Position is one open or closed holding in a market outcome.
type Position struct {
	MarketID     string  `json:"marketId"`
	Title        string  `json:"title"`
	Outcome      string  `json:"outcome"`
	Size         float64 `json:"size"`
	AvgPrice     float64 `json:"avgPrice"`
	CurrentPrice float64 `json:"currentPrice"`
	Value        float64 `json:"value"`
	PnL          float64 `json:"pnl"`
	Redeemable   bool    `json:"redeemable,omitempty"`
}

// Activity is one recent user action (trade, redeem, split, merge).
type Activity struct {
	Type      string  `json:"type"`
	MarketID  string  `json:"marketId"`
	Title     string  `json:"title"`
	Outcome   string  `json:"outcome"`
	Side      string  `json:"side,omitempty"`
	Size      float64 `json:"size"`
	Price     float64 `json:"price"`
	USDSize   float64 `json:"usdSize"`
	Timestamp int64   `json:"timestamp"`
}

// PnLPoint is one sample of the user's portfolio value over time.
type PnLPoint struct {
	Timestamp int64   `json:"t"` // unix seconds
	Value     float64 `json:"v"`
}
