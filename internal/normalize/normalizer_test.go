package normalize

import (
	"encoding/json"
	"testing"

	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/platform/gamma"
)

func rawEvent(t *testing.T, jsonBody string) *gamma.Event {
	t.Helper()
	var ev gamma.Event
	if err := json.Unmarshal([]byte(jsonBody), &ev); err != nil {
		t.Fatalf("unmarshal raw event: %v", err)
	}
	return &ev
}

func TestEventPlaceholderFiltering(t *testing.T) {
	ev := rawEvent(t, `{
		"id": "ev1",
		"title": "Tournament winner",
		"markets": [
			{"id": "m1", "groupItemTitle": "Team A", "outcomes": ["Yes","No"]},
			{"id": "m2", "groupItemTitle": "Real Madrid", "outcomes": ["Yes","No"],
			 "outcomePrices": ["0.55","0.45"], "volumeNum": 12000},
			{"id": "m3", "groupItemTitle": "Arsenal", "outcomes": ["Yes","No"],
			 "outcomePrices": ["0.30","0.70"], "volumeNum": 8000}
		]
	}`)

	got := Event(ev, Lookup{})
	if len(got.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2 (placeholder filtered)", len(got.Outcomes))
	}
	for _, o := range got.Outcomes {
		if o.Name == "Team A" {
			t.Error("placeholder sub-market survived filtering")
		}
	}
	if got.Outcomes[0].Name != "Real Madrid" || got.Outcomes[0].Price != 0.55 {
		t.Errorf("first outcome = %q/%v, want Real Madrid/0.55", got.Outcomes[0].Name, got.Outcomes[0].Price)
	}
	if got.IsYesNo {
		t.Error("multi-choice event must not be flagged yes/no")
	}
}

func TestEventSingleSubMarketCollapses(t *testing.T) {
	ev := rawEvent(t, `{
		"id": "ev2",
		"title": "Event title",
		"image": "https://img/event.png",
		"markets": [
			{"id": "m1", "outcomes": ["Yes","No"], "outcomePrices": ["0.6","0.4"]}
		]
	}`)

	got := Event(ev, Lookup{})
	if got.ID != "m1" {
		t.Errorf("id = %q, want sub-market id m1", got.ID)
	}
	if got.Title != "Event title" {
		t.Errorf("title = %q, want event metadata backfill", got.Title)
	}
	if got.Image != "https://img/event.png" {
		t.Errorf("image = %q, want event image backfill", got.Image)
	}
	if !got.IsYesNo {
		t.Error("single binary sub-market should stay yes/no")
	}
}

func TestTokenPairResolution(t *testing.T) {
	tests := []struct {
		name     string
		jsonBody string
		wantYes  string
		wantNo   string
	}{
		{
			name:     "json string encoded pair",
			jsonBody: `{"id":"1","clobTokenIds":"[\"111\",\"222\"]"}`,
			wantYes:  "111",
			wantNo:   "222",
		},
		{
			name:     "native array pair",
			jsonBody: `{"id":"2","clobTokenIds":["333","444"]}`,
			wantYes:  "333",
			wantNo:   "444",
		},
		{
			name:     "tokens array fallback",
			jsonBody: `{"id":"3","tokens":[{"token_id":"555"},{"id":"666"}]}`,
			wantYes:  "555",
			wantNo:   "666",
		},
		{
			name:     "unresolvable stays empty",
			jsonBody: `{"id":"4"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := rawMarket(t, tt.jsonBody)
			yes, no := tokenPair(m)
			if yes != tt.wantYes || no != tt.wantNo {
				t.Errorf("tokenPair = %q/%q, want %q/%q", yes, no, tt.wantYes, tt.wantNo)
			}
		})
	}
}

func TestOutcomeDiscoveryEncodings(t *testing.T) {
	tests := []struct {
		name     string
		jsonBody string
		want     []string
	}{
		{"native array", `{"outcomes":["Yes","No"]}`, []string{"Yes", "No"}},
		{"json encoded string", `{"outcomes":"[\"Up\",\"Down\"]"}`, []string{"Up", "Down"}},
		{"comma separated", `{"outcomes":"Red, Green, Blue"}`, []string{"Red", "Green", "Blue"}},
		{"tokens fallback", `{"tokens":[{"token_id":"1","outcome":"Over"},{"token_id":"2","outcome":"Under"}]}`, []string{"Over", "Under"}},
		{"default", `{}`, []string{"Yes", "No"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := rawMarket(t, tt.jsonBody)
			got := outcomeNames(m)
			if len(got) != len(tt.want) {
				t.Fatalf("names = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("names[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestVolumeDisambiguation(t *testing.T) {
	tests := []struct {
		name      string
		jsonBody  string
		wantTotal float64
		wantDay   float64
	}{
		{
			name:      "explicit 24h and numeric total",
			jsonBody:  `{"volume24hr": 1500, "volumeNum": 90000}`,
			wantTotal: 90000,
			wantDay:   1500,
		},
		{
			name:      "24h name variants tried in order",
			jsonBody:  `{"volume24hrClob": 800}`,
			wantDay:   800,
			wantTotal: 0,
		},
		{
			name:      "ambiguous volume treated as all-time",
			jsonBody:  `{"volume": "25000", "volume24hr": 400}`,
			wantTotal: 25000,
			wantDay:   400,
		},
		{
			// Known-approximate heuristic: a bare volume equal to the
			// 24h figure is assumed to BE the 24h figure.
			name:      "volume identical to 24h left out of all-time",
			jsonBody:  `{"volume": 400, "volume24hr": 400}`,
			wantTotal: 0,
			wantDay:   400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := rawMarket(t, tt.jsonBody)
			got := resolveVolumes(m)
			if got.Total != tt.wantTotal || got.Day != tt.wantDay {
				t.Errorf("volumes = %v/%v, want %v/%v", got.Total, got.Day, tt.wantTotal, tt.wantDay)
			}
		})
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999, "$999"},
		{1_000, "$1.0K"},
		{25_500, "$25.5K"},
		{999_999, "$1000.0K"},
		{1_000_000, "$1.0M"},
		{2_340_000, "$2.3M"},
	}

	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name string
		tags string
		want string
	}{
		{"vocabulary beats first tag", `[{"label":"Other"},{"label":"Politics"}]`, "Politics"},
		{"string tags", `["Sports"]`, "Sports"},
		{"case insensitive", `["crypto"]`, "Crypto"},
		{"first tag verbatim when nothing matches", `["Middle East","Ukraine"]`, "Middle East"},
		{"no tags", `[]`, "Other"},
		{"slug only objects", `[{"slug":"politics"}]`, "Politics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags []gamma.Tag
			if err := json.Unmarshal([]byte(tt.tags), &tags); err != nil {
				t.Fatalf("unmarshal tags: %v", err)
			}
			if got := ResolveCategory(tags); got != tt.want {
				t.Errorf("category = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutcomeIsResolved(t *testing.T) {
	tests := []struct {
		name string
		o    domain.Outcome
		want bool
	}{
		{"mid price", domain.Outcome{Price: 0.5, NoPrice: 0.5}, false},
		{"price near one", domain.Outcome{Price: 0.9995, NoPrice: 0.0005}, true},
		{"price near zero", domain.Outcome{Price: 0.0003, NoPrice: 0.9997}, true},
		{"exactly at tolerance", domain.Outcome{Price: 0.001, NoPrice: 0.999}, true},
		{"just outside tolerance", domain.Outcome{Price: 0.0011, NoPrice: 0.9989}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.IsResolved(); got != tt.want {
				t.Errorf("IsResolved() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizedPricesStayInBounds(t *testing.T) {
	bodies := []string{
		`{"id":"a","outcomes":["Yes","No"],"outcomePrices":["2","-1"]}`,
		`{"id":"b","outcomes":["Yes","No"],"lastTradePrice":"1.7"}`,
		`{"id":"c","outcomes":["A","B","C"],"outcomePrices":"[\"0.2\",\"0.3\",\"0.5\"]"}`,
	}
	for _, body := range bodies {
		got := Market(rawMarket(t, body), Lookup{})
		for _, o := range got.Outcomes {
			if o.Price < 0 || o.Price > 1 || o.NoPrice < 0 || o.NoPrice > 1 {
				t.Errorf("market %s outcome %q out of bounds: %v/%v", got.ID, o.Name, o.Price, o.NoPrice)
			}
		}
	}
}
