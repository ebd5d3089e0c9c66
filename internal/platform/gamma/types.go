package gamma

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The Gamma API is loose about scalar encodings: numbers arrive as JSON
// numbers or quoted strings, booleans as bools or "true"/"false", and arrays
// either natively or JSON-encoded inside a string. The Flex* types absorb
// those variations at decode time so downstream code sees plain Go values.

// FlexFloat unmarshals from a JSON number, a quoted numeric string, or null.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(n)
	return nil
}

// FlexBool unmarshals from a JSON bool or a "true"/"false"/"1" string.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = FlexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// Tag is one entry of a market/event tag list. Upstream sends either a bare
// string or an object carrying some of name/label/slug.
type Tag struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Name = s
		return nil
	}
	type alias Tag
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Tag(a)
	return nil
}

// Value returns the first usable label of the tag.
func (t Tag) Value() string {
	for _, v := range []string{t.Name, t.Label, t.Slug} {
		if v != "" {
			return v
		}
	}
	return ""
}

// Token is one entry of a market's tokens array, the fallback source for
// outcome token identifiers.
type Token struct {
	TokenID string `json:"token_id"`
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
	Winner  bool   `json:"winner"`
}

// Identifier returns the token's identifier under whichever field name the
// upstream used.
func (t Token) Identifier() string {
	if t.TokenID != "" {
		return t.TokenID
	}
	return t.ID
}

// Market is the raw shape of one Gamma market, either top-level or nested
// inside an event. Array-valued fields that the API may JSON-string-encode
// are kept as RawMessage and parsed by the normalizer.
type Market struct {
	ID             string    `json:"id"`
	Question       string    `json:"question"`
	Title          string    `json:"title"`
	GroupItemTitle string    `json:"groupItemTitle"`
	Slug           string    `json:"slug"`
	ConditionID    string    `json:"conditionId"`
	QuestionID     string    `json:"questionID"`
	Description    string    `json:"description"`
	Image          string    `json:"image"`
	Icon           string    `json:"icon"`
	ResolvedBy     string    `json:"resolvedBy"`
	Active         FlexBool  `json:"active"`
	Closed         FlexBool  `json:"closed"`
	NegRisk        FlexBool  `json:"negRisk"`

	// Outcome / price / token fields in their various encodings.
	Outcomes      json.RawMessage `json:"outcomes"`
	OutcomePrices json.RawMessage `json:"outcomePrices"`
	ClobTokenIDs  json.RawMessage `json:"clobTokenIds"`
	Tokens        []Token         `json:"tokens"`

	// Direct price signals.
	Price          FlexFloat `json:"price"`
	PriceNum       FlexFloat `json:"priceNum"`
	LastPrice      FlexFloat `json:"lastPrice"`
	Probability    FlexFloat `json:"probability"`
	LastTradePrice FlexFloat `json:"lastTradePrice"`
	BestBid        FlexFloat `json:"bestBid"`
	BestAsk        FlexFloat `json:"bestAsk"`

	// Volume under its overlapping upstream names.
	Volume        FlexFloat `json:"volume"`
	VolumeNum     FlexFloat `json:"volumeNum"`
	Volume24hr    FlexFloat `json:"volume24hr"`
	Volume24hClob FlexFloat `json:"volume24hrClob"`
	Volume24hAmm  FlexFloat `json:"volume24hrAmm"`

	Liquidity          FlexFloat `json:"liquidityNum"`
	OneWeekPriceChange FlexFloat `json:"oneWeekPriceChange"`

	EndDate   string `json:"endDate"`
	StartDate string `json:"startDate"`
	CreatedAt string `json:"createdAt"`

	Tags   []Tag   `json:"tags"`
	Events []Event `json:"events"` // parent event stubs embedded in market payloads
}

// DisplayTitle returns the best human-readable name for the market: the
// per-outcome group title inside an event, else the question, else the title.
func (m *Market) DisplayTitle() string {
	for _, v := range []string{m.GroupItemTitle, m.Question, m.Title} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Event is the raw shape of one Gamma event, the upstream construct bundling
// 1..N sub-markets.
type Event struct {
	ID          string    `json:"id"`
	Ticker      string    `json:"ticker"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Icon        string    `json:"icon"`
	Active      FlexBool  `json:"active"`
	Closed      FlexBool  `json:"closed"`
	NegRisk     FlexBool  `json:"negRisk"`
	Volume      FlexFloat `json:"volume"`
	Volume24hr  FlexFloat `json:"volume24hr"`
	Liquidity   FlexFloat `json:"liquidity"`
	EndDate     string    `json:"endDate"`
	StartDate   string    `json:"startDate"`
	CreatedAt   string    `json:"createdAt"`
	Tags        []Tag     `json:"tags"`
	Markets     []Market  `json:"markets"`
}
