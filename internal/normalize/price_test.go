package normalize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/openpredict/marketd/internal/platform/gamma"
	"github.com/openpredict/marketd/internal/platform/goldsky"
)

func rawMarket(t *testing.T, jsonBody string) *gamma.Market {
	t.Helper()
	var m gamma.Market
	if err := json.Unmarshal([]byte(jsonBody), &m); err != nil {
		t.Fatalf("unmarshal raw market: %v", err)
	}
	return &m
}

func TestPriceCascadeOutcomePricesRoundTrip(t *testing.T) {
	// A string-encoded outcomePrices array must survive exactly, with no
	// clamping and no fallback resolver firing.
	m := rawMarket(t, `{
		"id": "1",
		"question": "Will it happen?",
		"outcomes": "[\"Yes\",\"No\"]",
		"outcomePrices": "[\"0.73\",\"0.27\"]",
		"lastTradePrice": "0.99"
	}`)

	got := Market(m, Lookup{})
	if got.YesPrice != 0.73 || got.NoPrice != 0.27 {
		t.Errorf("yes/no = %v/%v, want 0.73/0.27", got.YesPrice, got.NoPrice)
	}
}

func TestPriceCascadeLastTradeComplement(t *testing.T) {
	m := rawMarket(t, `{
		"id": "2",
		"question": "Binary?",
		"outcomes": ["Yes","No"],
		"lastTradePrice": 0.4
	}`)

	got := Market(m, Lookup{})
	if got.YesPrice != 0.4 {
		t.Errorf("yesPrice = %v, want 0.4", got.YesPrice)
	}
	if math.Abs(got.NoPrice-0.6) > 1e-9 {
		t.Errorf("noPrice = %v, want 0.6", got.NoPrice)
	}
}

func TestPriceCascadeEqualSplitFallback(t *testing.T) {
	m := rawMarket(t, `{
		"id": "3",
		"question": "Which one?",
		"outcomes": ["A","B","C","D"]
	}`)

	got := Market(m, Lookup{})
	if len(got.Outcomes) != 4 {
		t.Fatalf("outcomes = %d, want 4", len(got.Outcomes))
	}
	for _, o := range got.Outcomes {
		if o.Price != 0.25 {
			t.Errorf("outcome %q price = %v, want 0.25", o.Name, o.Price)
		}
	}
}

func TestPriceCascadeBookMidpoint(t *testing.T) {
	m := rawMarket(t, `{
		"id": "4",
		"question": "Mid?",
		"outcomes": ["Yes","No"],
		"bestBid": 0.30,
		"bestAsk": 0.40
	}`)

	got := Market(m, Lookup{})
	if math.Abs(got.YesPrice-0.35) > 1e-9 {
		t.Errorf("yesPrice = %v, want 0.35", got.YesPrice)
	}
	if math.Abs(got.NoPrice-0.65) > 1e-9 {
		t.Errorf("noPrice = %v, want 0.65", got.NoPrice)
	}
}

func TestPriceCascadePrecedence(t *testing.T) {
	// outcomePrices must win over lastTradePrice and book midpoint.
	m := rawMarket(t, `{
		"id": "5",
		"question": "Order?",
		"outcomes": ["Yes","No"],
		"outcomePrices": ["0.10","0.90"],
		"lastTradePrice": 0.5,
		"bestBid": 0.4,
		"bestAsk": 0.6
	}`)

	got := Market(m, Lookup{})
	if got.YesPrice != 0.10 || got.NoPrice != 0.90 {
		t.Errorf("yes/no = %v/%v, want 0.10/0.90", got.YesPrice, got.NoPrice)
	}
}

func TestPricesClampedToUnitInterval(t *testing.T) {
	m := rawMarket(t, `{
		"id": "6",
		"question": "Clamp?",
		"outcomes": ["Yes","No"],
		"outcomePrices": ["1.2","-0.2"]
	}`)

	got := Market(m, Lookup{})
	if got.YesPrice != 1 {
		t.Errorf("yesPrice = %v, want clamped 1", got.YesPrice)
	}
	if got.NoPrice != 0 {
		t.Errorf("noPrice = %v, want clamped 0", got.NoPrice)
	}
}

func TestComplementBackfillOnlyOnExactZero(t *testing.T) {
	tests := []struct {
		name    string
		prices  []float64
		outs    []string
		wantYes float64
		wantNo  float64
	}{
		{
			name:    "zero no side backfilled",
			outs:    []string{"Yes", "No"},
			prices:  []float64{0.7, 0},
			wantYes: 0.7,
			wantNo:  0.3,
		},
		{
			name:    "near zero preserved as a real resolved signal",
			outs:    []string{"Yes", "No"},
			prices:  []float64{0.9995, 0.0005},
			wantYes: 0.9995,
			wantNo:  0.0005,
		},
		{
			name:    "both zero untouched",
			outs:    []string{"Yes", "No"},
			prices:  []float64{0, 0},
			wantYes: 0,
			wantNo:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices := append([]float64(nil), tt.prices...)
			backfillComplement(tt.outs, prices)
			if math.Abs(prices[0]-tt.wantYes) > 1e-9 || math.Abs(prices[1]-tt.wantNo) > 1e-9 {
				t.Errorf("got %v/%v, want %v/%v", prices[0], prices[1], tt.wantYes, tt.wantNo)
			}
		})
	}
}

func TestSubgraphBookOverridesRESTSignals(t *testing.T) {
	m := rawMarket(t, `{
		"id": "7",
		"question": "Override?",
		"conditionId": "0xABC",
		"outcomes": ["Yes","No"],
		"lastTradePrice": 0.2
	}`)

	lk := Lookup{Books: map[string]goldsky.BookStats{
		"0xabc": {LastTradePrice: 0.8},
	}}
	got := Market(m, lk)
	if got.YesPrice != 0.8 {
		t.Errorf("yesPrice = %v, want subgraph lastTradePrice 0.8", got.YesPrice)
	}
}
