package normalize

import "strings"

// derivation carries every price signal available for one raw market while
// the cascade runs.
type derivation struct {
	names       []string
	priceList   []float64
	priceByName map[string]float64
	direct      []float64 // per-outcome direct numeric field, aligned with names
	hasDirect   []bool
	lastTrade   float64
	bestBid     float64
	bestAsk     float64
}

// priceResolver attempts to produce a price for outcome i. Resolvers run in
// a fixed order; the first one that reports ok wins.
type priceResolver func(d *derivation, i int) (float64, bool)

// The precedence order is load-bearing: explicit outcomePrices beat direct
// per-outcome fields, which beat the lastTradePrice complement, which beats
// the book midpoint; equal distribution is the terminal fallback for 3+
// outcomes.
var priceResolvers = []priceResolver{
	fromOutcomePrices,
	fromDirectField,
	fromLastTradeComplement,
	fromBookMidpoint,
	fromEqualSplit,
}

// derivePrices runs the resolver cascade once per outcome and clamps every
// result into [0,1]. Outcomes with no applicable resolver stay at 0.
func derivePrices(d *derivation) []float64 {
	prices := make([]float64, len(d.names))
	for i := range d.names {
		for _, resolve := range priceResolvers {
			if p, ok := resolve(d, i); ok {
				prices[i] = clamp01(p)
				break
			}
		}
	}
	backfillComplement(d.names, prices)
	return prices
}

// fromOutcomePrices looks the outcome up in the parsed outcomePrices
// structure, by name first and positionally second.
func fromOutcomePrices(d *derivation, i int) (float64, bool) {
	if d.priceByName != nil {
		if p, ok := d.priceByName[priceKey(d.names[i])]; ok {
			return p, true
		}
	}
	if i < len(d.priceList) {
		return d.priceList[i], true
	}
	return 0, false
}

// fromDirectField uses a numeric price field found on the outcome object
// itself (price, priceNum, lastPrice, probability).
func fromDirectField(d *derivation, i int) (float64, bool) {
	if i < len(d.hasDirect) && d.hasDirect[i] {
		return d.direct[i], true
	}
	return 0, false
}

// fromLastTradeComplement derives both sides of a two-outcome market from
// lastTradePrice, which quotes the Yes side.
func fromLastTradeComplement(d *derivation, i int) (float64, bool) {
	if len(d.names) != 2 || d.lastTrade <= 0 {
		return 0, false
	}
	name := strings.ToLower(d.names[i])
	switch {
	case strings.Contains(name, "yes"):
		return d.lastTrade, true
	case strings.Contains(name, "no"):
		return 1 - d.lastTrade, true
	}
	return 0, false
}

// fromBookMidpoint uses the best-bid/best-ask midpoint. The book quotes the
// first outcome; for a two-outcome market the second side is the complement.
func fromBookMidpoint(d *derivation, i int) (float64, bool) {
	if d.bestBid <= 0 || d.bestAsk <= 0 {
		return 0, false
	}
	mid := (d.bestBid + d.bestAsk) / 2
	if i == 0 {
		return mid, true
	}
	if len(d.names) == 2 && i == 1 {
		return 1 - mid, true
	}
	return 0, false
}

// fromEqualSplit distributes probability evenly across 3+ outcomes that have
// no price signal at all.
func fromEqualSplit(d *derivation, i int) (float64, bool) {
	if len(d.names) >= 3 {
		return 1 / float64(len(d.names)), true
	}
	return 0, false
}

// backfillComplement fills the missing side of a Yes/No pair from the other
// side, but only when the missing value is exactly zero. A near-zero price is
// a real signal (a resolved outcome) and must not be overwritten.
func backfillComplement(names []string, prices []float64) {
	if len(names) != 2 || len(prices) != 2 || !isYesNoPair(names) {
		return
	}
	if prices[0] == 0 && prices[1] != 0 {
		prices[0] = clamp01(1 - prices[1])
	} else if prices[1] == 0 && prices[0] != 0 {
		prices[1] = clamp01(1 - prices[0])
	}
}

// isYesNoPair reports whether a two-outcome name pair is Yes/No-like,
// matching case-insensitively on the yes/no substrings.
func isYesNoPair(names []string) bool {
	if len(names) != 2 {
		return false
	}
	for _, n := range names {
		low := strings.ToLower(n)
		if strings.Contains(low, "yes") || strings.Contains(low, "no") {
			return true
		}
	}
	return false
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
