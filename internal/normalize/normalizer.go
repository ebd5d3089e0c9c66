// Package normalize converts raw upstream market and event payloads into the
// canonical Market/Outcome contract. Upstream providers disagree on schema,
// field names, and units; everything request handlers serve goes through this
// package so the disagreements are reconciled in exactly one place.
package normalize

import (
	"regexp"
	"strings"

	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/platform/gamma"
	"github.com/openpredict/marketd/internal/platform/goldsky"
)

// Lookup holds the merged subgraph tables, keyed by lowercase condition ID.
// When a condition is present here, the subgraph signal takes precedence over
// the REST-sourced fields for the same condition.
type Lookup struct {
	Books   map[string]goldsky.BookStats
	Volumes map[string]float64
}

func (l Lookup) book(conditionID string) (goldsky.BookStats, bool) {
	b, ok := l.Books[strings.ToLower(conditionID)]
	return b, ok
}

func (l Lookup) volume(conditionID string) (float64, bool) {
	v, ok := l.Volumes[strings.ToLower(conditionID)]
	return v, ok
}

// teamPlaceholder matches scaffolding sub-markets that upstream creates
// before contestants are announced ("Team A", "Team B", ...).
var teamPlaceholder = regexp.MustCompile(`^Team [A-Za-z]$`)

// Market converts one raw binary market into the canonical shape.
func Market(m *gamma.Market, lk Lookup) domain.Market {
	names := outcomeNames(m)
	prices := binaryPrices(m, names, lk)
	vol := marketVolumes(m, lk)
	yesTok, noTok := tokenPair(m)

	out := domain.Market{
		ID:               m.ID,
		Title:            m.DisplayTitle(),
		Category:         ResolveCategory(m.Tags),
		Image:            firstNonEmpty(m.Image, m.Icon),
		Description:      m.Description,
		Volume:           vol.Total,
		VolumeDisplay:    FormatUSD(vol.Total),
		Volume24h:        vol.Day,
		Volume24hDisplay: FormatUSD(vol.Day),
		Liquidity:        float64(m.Liquidity),
		EndDate:          m.EndDate,
		StartDate:        m.StartDate,
		CreatedAt:        m.CreatedAt,
		IsYesNo:          len(names) == 2 && isYesNoPair(names),
		Resolver:         m.ResolvedBy,
		ConditionID:      m.ConditionID,
	}

	if len(prices) > 0 {
		out.YesPrice = prices[0]
	}
	if len(prices) > 1 {
		out.NoPrice = prices[1]
	}

	out.Outcomes = make([]domain.Outcome, 0, len(names))
	for i, name := range names {
		o := domain.Outcome{
			Name:               name,
			Price:              prices[i],
			Volume:             vol.Total,
			VolumeDisplay:      FormatUSD(vol.Total),
			Volume24h:          vol.Day,
			Volume24hDisplay:   FormatUSD(vol.Day),
			OneWeekPriceChange: float64(m.OneWeekPriceChange),
			Liquidity:          float64(m.Liquidity),
		}
		if len(names) == 2 {
			o.NoPrice = prices[1-i]
		} else {
			o.NoPrice = clamp01(1 - prices[i])
		}
		// Token IDs follow the side the outcome represents: the first
		// outcome is the Yes side of the pair, the second the No side.
		if i == 0 {
			o.YesTokenID, o.NoTokenID = yesTok, noTok
		} else if i == 1 {
			o.YesTokenID, o.NoTokenID = noTok, yesTok
		}
		out.Outcomes = append(out.Outcomes, o)
	}

	return out
}

// Event converts one raw event into a canonical market. Events bundling a
// single sub-market collapse to that market with event metadata backfilled;
// events bundling several become one synthesized multi-choice market with one
// outcome per live sub-market.
func Event(ev *gamma.Event, lk Lookup) domain.Market {
	if len(ev.Markets) == 1 {
		m := Market(&ev.Markets[0], lk)
		if m.Title == "" {
			m.Title = ev.Title
		}
		if m.Image == "" {
			m.Image = firstNonEmpty(ev.Image, ev.Icon)
		}
		if m.Description == "" {
			m.Description = ev.Description
		}
		if m.Category == DefaultCategory && len(ev.Tags) > 0 {
			m.Category = ResolveCategory(ev.Tags)
		}
		return m
	}

	out := domain.Market{
		ID:               ev.ID,
		Title:            ev.Title,
		Category:         ResolveCategory(ev.Tags),
		Image:            firstNonEmpty(ev.Image, ev.Icon),
		Description:      ev.Description,
		Volume:           float64(ev.Volume),
		VolumeDisplay:    FormatUSD(float64(ev.Volume)),
		Volume24h:        float64(ev.Volume24hr),
		Volume24hDisplay: FormatUSD(float64(ev.Volume24hr)),
		Liquidity:        float64(ev.Liquidity),
		EndDate:          ev.EndDate,
		StartDate:        ev.StartDate,
		CreatedAt:        ev.CreatedAt,
		IsYesNo:          false,
	}

	for i := range ev.Markets {
		sub := &ev.Markets[i]
		names := outcomeNames(sub)
		prices := binaryPrices(sub, names, lk)
		vol := marketVolumes(sub, lk)

		yesPrice := 0.0
		if len(prices) > 0 {
			yesPrice = prices[0]
		}

		name := sub.DisplayTitle()
		if isPlaceholder(name, yesPrice, vol) {
			continue
		}

		yesTok, noTok := tokenPair(sub)
		out.Outcomes = append(out.Outcomes, domain.Outcome{
			Name:               name,
			Price:              yesPrice,
			NoPrice:            clamp01(1 - yesPrice),
			Volume:             vol.Total,
			VolumeDisplay:      FormatUSD(vol.Total),
			Volume24h:          vol.Day,
			Volume24hDisplay:   FormatUSD(vol.Day),
			Image:              firstNonEmpty(sub.Image, sub.Icon),
			YesTokenID:         yesTok,
			NoTokenID:          noTok,
			OneWeekPriceChange: float64(sub.OneWeekPriceChange),
			Liquidity:          float64(sub.Liquidity),
		})
	}

	// The market-level pair mirrors the first live outcome so binary-shaped
	// consumers still see something sensible.
	if len(out.Outcomes) > 0 {
		out.YesPrice = out.Outcomes[0].Price
		out.NoPrice = out.Outcomes[0].NoPrice
	}

	return out
}

// isPlaceholder reports whether an event sub-market is inactive scaffolding:
// a "Team <letter>" placeholder name, or no volume and no price signal.
func isPlaceholder(name string, yesPrice float64, vol volumeFigures) bool {
	if teamPlaceholder.MatchString(name) {
		return true
	}
	return yesPrice == 0 && vol.Total == 0 && vol.Day == 0
}

// outcomeNames discovers the outcome names on a raw market, falling back to
// the tokens array and finally to the Yes/No default.
func outcomeNames(m *gamma.Market) []string {
	if names := parseStringList(m.Outcomes); len(names) > 0 {
		return names
	}
	if len(m.Tokens) > 0 {
		names := make([]string, 0, len(m.Tokens))
		for _, t := range m.Tokens {
			if t.Outcome != "" {
				names = append(names, t.Outcome)
			}
		}
		if len(names) > 0 {
			return names
		}
	}
	return []string{"Yes", "No"}
}

// binaryPrices builds the derivation for one raw market, preferring subgraph
// book signals over the REST fields, and runs the price cascade.
func binaryPrices(m *gamma.Market, names []string, lk Lookup) []float64 {
	list, byName := parsePrices(m.OutcomePrices)

	d := derivation{
		names:       names,
		priceList:   list,
		priceByName: byName,
		lastTrade:   float64(m.LastTradePrice),
		bestBid:     float64(m.BestBid),
		bestAsk:     float64(m.BestAsk),
	}

	if book, ok := lk.book(m.ConditionID); ok {
		if book.LastTradePrice > 0 {
			d.lastTrade = book.LastTradePrice
		}
		if book.BestBid > 0 && book.BestAsk > 0 {
			d.bestBid, d.bestAsk = book.BestBid, book.BestAsk
		}
	}

	// Direct numeric fields on the market object quote its Yes side.
	d.direct = make([]float64, len(names))
	d.hasDirect = make([]bool, len(names))
	for _, f := range []gamma.FlexFloat{m.Price, m.PriceNum, m.LastPrice, m.Probability} {
		if f > 0 && len(names) > 0 {
			d.direct[0] = float64(f)
			d.hasDirect[0] = true
			break
		}
	}

	return derivePrices(&d)
}

// marketVolumes resolves the REST volume fields, letting a subgraph
// open-interest figure override the all-time total when present.
func marketVolumes(m *gamma.Market, lk Lookup) volumeFigures {
	vol := resolveVolumes(m)
	if v, ok := lk.volume(m.ConditionID); ok && v > 0 {
		vol.Total = v
	}
	return vol
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
