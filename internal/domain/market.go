package domain

// resolvedEpsilon is the tolerance used to decide that an outcome price has
// pinned to 0 or 1 and the outcome is effectively resolved.
const resolvedEpsilon = 0.001

// Market is the canonical market shape served to every client, regardless of
// which upstream (Gamma markets, Gamma events, or subgraph-enriched events)
// the raw data came from.
type Market struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	Image            string    `json:"image"`
	Description      string    `json:"description"`
	YesPrice         float64   `json:"yesPrice"`
	NoPrice          float64   `json:"noPrice"`
	Volume           float64   `json:"volume"`
	VolumeDisplay    string    `json:"volumeDisplay"`
	Volume24h        float64   `json:"volume24h"`
	Volume24hDisplay string    `json:"volume24hDisplay"`
	Liquidity        float64   `json:"liquidity,omitempty"`
	EndDate          string    `json:"endDate,omitempty"`
	StartDate        string    `json:"startDate,omitempty"`
	CreatedAt        string    `json:"createdAt,omitempty"`
	IsYesNo          bool      `json:"isYesNo"`
	Outcomes         []Outcome `json:"outcomes"`
	Resolver         string    `json:"resolver,omitempty"`
	ConditionID      string    `json:"conditionId,omitempty"`
}

// Outcome is one selectable choice within a market. For a plain binary market
// there are two (Yes/No); for a bundled multi-choice event there is one per
// sub-market.
type Outcome struct {
	Name               string  `json:"name"`
	Price              float64 `json:"price"`
	NoPrice            float64 `json:"noPrice"`
	Volume             float64 `json:"volume"`
	VolumeDisplay      string  `json:"volumeDisplay"`
	Volume24h          float64 `json:"volume24h"`
	Volume24hDisplay   string  `json:"volume24hDisplay"`
	Image              string  `json:"image,omitempty"`
	YesTokenID         string  `json:"yesTokenId,omitempty"`
	NoTokenID          string  `json:"noTokenId,omitempty"`
	OneWeekPriceChange float64 `json:"oneWeekPriceChange,omitempty"`
	Liquidity          float64 `json:"liquidity,omitempty"`
}

// IsResolved reports whether either side of the outcome has pinned to 0 or 1
// within the resolution tolerance.
func (o Outcome) IsResolved() bool {
	return pinned(o.Price) || pinned(o.NoPrice)
}

func pinned(p float64) bool {
	return p <= resolvedEpsilon || p >= 1-resolvedEpsilon
}

// MarketStats is the aggregate served by /api/stats, computed over a sample
// of active markets.
type MarketStats struct {
	Volume24h      float64 `json:"volume24h"`
	ActiveMarkets  int     `json:"activeMarkets"`
	TotalLiquidity float64 `json:"totalLiquidity"`
	SampledMarkets int     `json:"sampledMarkets"`
}
