package normalize

import (
	"fmt"

	"github.com/openpredict/marketd/internal/platform/gamma"
)

// volumeFigures holds both volume horizons for one market or outcome.
type volumeFigures struct {
	Total float64
	Day   float64
}

// resolveVolumes disambiguates the overlapping upstream volume fields.
//
// The 24h figure is taken from the first populated explicitly-24h-labeled
// variant. The all-time figure prefers the explicit numeric total; when only
// the bare "volume" field exists it is treated as all-time UNLESS it is
// numerically identical to the resolved 24h figure, in which case all-time is
// left at 0 to avoid double counting. That last rule is a best-effort guess,
// not a guaranteed-correct mapping.
func resolveVolumes(m *gamma.Market) volumeFigures {
	var v volumeFigures

	for _, day := range []gamma.FlexFloat{m.Volume24hr, m.Volume24hClob, m.Volume24hAmm} {
		if day > 0 {
			v.Day = float64(day)
			break
		}
	}

	switch {
	case m.VolumeNum > 0:
		v.Total = float64(m.VolumeNum)
	case m.Volume > 0 && float64(m.Volume) != v.Day:
		v.Total = float64(m.Volume)
	}
	return v
}

// FormatUSD renders a dollar amount as the compact display string used across
// the API: $X.XM at or above one million, $X.XK at or above one thousand,
// plain $X below that.
func FormatUSD(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
