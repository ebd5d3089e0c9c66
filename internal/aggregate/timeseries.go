package aggregate

import (
	"sort"

	"github.com/openpredict/marketd/internal/domain"
)

// DedupeHistory returns the series sorted ascending by timestamp with
// duplicate timestamps removed. The first occurrence in input order wins.
func DedupeHistory(points []domain.PriceHistoryPoint) []domain.PriceHistoryPoint {
	seen := make(map[int64]bool, len(points))
	out := make([]domain.PriceHistoryPoint, 0, len(points))
	for _, p := range points {
		if seen[p.Timestamp] {
			continue
		}
		seen[p.Timestamp] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// DedupePnL applies the same first-wins, ascending normalization to a user
// PnL series.
func DedupePnL(points []domain.PnLPoint) []domain.PnLPoint {
	seen := make(map[int64]bool, len(points))
	out := make([]domain.PnLPoint, 0, len(points))
	for _, p := range points {
		if seen[p.Timestamp] {
			continue
		}
		seen[p.Timestamp] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
