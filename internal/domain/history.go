package domain

// PriceHistoryPoint is one sample of an outcome token's price time series.
// Series are served ascending by timestamp with duplicate timestamps removed.
type PriceHistoryPoint struct {
	Timestamp int64   `json:"t"` // unix seconds
	Price     float64 `json:"p"`
}

// HistoryInterval is the client-facing window selector for price history.
type HistoryInterval string

const (
	Interval1H  HistoryInterval = "1H"
	Interval6H  HistoryInterval = "6H"
	Interval1D  HistoryInterval = "1D"
	Interval1W  HistoryInterval = "1W"
	Interval1M  HistoryInterval = "1M"
	IntervalMax HistoryInterval = "MAX"
)

// Fidelity returns the time-bucket granularity in minutes requested from the
// history source for this interval.
func (i HistoryInterval) Fidelity() int {
	switch i {
	case Interval1H:
		return 1
	case Interval6H:
		return 5
	case Interval1D:
		return 15
	case Interval1W:
		return 60
	case Interval1M:
		return 180
	case IntervalMax:
		return 720
	default:
		return 15
	}
}
