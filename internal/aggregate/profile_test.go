package aggregate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/platform/data"
)

// fakeProfileSource returns canned sub-results, with selectable failures.
type fakeProfileSource struct {
	failValue    bool
	failStats    bool
	failOpen     bool
	failClosed   bool
	failActivity bool
	failSeries   bool

	calls atomic.Int64

	series []domain.PnLPoint
}

var errUpstreamDown = errors.New("upstream down")

func (f *fakeProfileSource) GetValue(context.Context, string) (float64, error) {
	f.calls.Add(1)
	if f.failValue {
		return 0, errUpstreamDown
	}
	return 123.45, nil
}

func (f *fakeProfileSource) GetStats(context.Context, string) (data.Stats, error) {
	f.calls.Add(1)
	if f.failStats {
		return data.Stats{}, errUpstreamDown
	}
	return data.Stats{Volume: 5000, Profit: 250, MarketsTraded: 12}, nil
}

func (f *fakeProfileSource) GetPositions(_ context.Context, _ string, closed bool) ([]domain.Position, error) {
	f.calls.Add(1)
	if closed {
		if f.failClosed {
			return nil, errUpstreamDown
		}
		return []domain.Position{{MarketID: "0xold", Outcome: "No"}}, nil
	}
	if f.failOpen {
		return nil, errUpstreamDown
	}
	return []domain.Position{{MarketID: "0xabc", Outcome: "Yes", Size: 10}}, nil
}

func (f *fakeProfileSource) GetActivity(context.Context, string, int) ([]domain.Activity, error) {
	f.calls.Add(1)
	if f.failActivity {
		return nil, errUpstreamDown
	}
	return []domain.Activity{{Type: "TRADE", MarketID: "0xabc"}}, nil
}

func (f *fakeProfileSource) GetPnLSeries(context.Context, string, string, string) ([]domain.PnLPoint, error) {
	f.calls.Add(1)
	if f.failSeries {
		return nil, errUpstreamDown
	}
	return f.series, nil
}

const testAddress = "0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326"

func TestProfilePartialFailureStillSucceeds(t *testing.T) {
	src := &fakeProfileSource{failClosed: true}
	agg := NewProfileAggregator(src, discardLogger())

	profile, err := agg.Fetch(context.Background(), testAddress, domain.TimeframeAll)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil on partial failure", err)
	}

	if len(profile.Positions) != 1 {
		t.Errorf("positions = %d, want 1", len(profile.Positions))
	}
	if profile.ClosedPositions == nil || len(profile.ClosedPositions) != 0 {
		t.Errorf("closedPositions = %#v, want empty non-nil slice", profile.ClosedPositions)
	}
	if profile.Value != 123.45 {
		t.Errorf("value = %v, want 123.45", profile.Value)
	}
	if profile.Volume != 5000 || profile.MarketsTraded != 12 {
		t.Errorf("stats not merged: %+v", profile)
	}
}

func TestProfileAllBranchesFailing(t *testing.T) {
	src := &fakeProfileSource{
		failValue: true, failStats: true, failOpen: true,
		failClosed: true, failActivity: true, failSeries: true,
	}
	agg := NewProfileAggregator(src, discardLogger())

	profile, err := agg.Fetch(context.Background(), testAddress, domain.Timeframe1D)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil even when every branch fails", err)
	}
	for name, s := range map[string]int{
		"positions":       len(profile.Positions),
		"closedPositions": len(profile.ClosedPositions),
		"activity":        len(profile.Activity),
		"pnlSeries":       len(profile.PnLSeries),
	} {
		if s != 0 {
			t.Errorf("%s = %d, want 0", name, s)
		}
	}
}

func TestProfileRejectsInvalidAddressBeforeFanOut(t *testing.T) {
	tests := []string{
		"",
		"not-an-address",
		"0x123",    // too short
		"1f9090aa", // missing 0x prefix
	}

	for _, addr := range tests {
		t.Run(addr, func(t *testing.T) {
			src := &fakeProfileSource{}
			agg := NewProfileAggregator(src, discardLogger())

			_, err := agg.Fetch(context.Background(), addr, domain.TimeframeAll)
			if !errors.Is(err, domain.ErrInvalidAddress) {
				t.Fatalf("error = %v, want ErrInvalidAddress", err)
			}
			if n := src.calls.Load(); n != 0 {
				t.Errorf("upstream calls = %d, want 0 before validation", n)
			}
		})
	}
}

func TestProfileSeriesDeduplicated(t *testing.T) {
	src := &fakeProfileSource{series: []domain.PnLPoint{
		{Timestamp: 200, Value: 2},
		{Timestamp: 100, Value: 1},
		{Timestamp: 100, Value: 9},
	}}
	agg := NewProfileAggregator(src, discardLogger())

	profile, err := agg.Fetch(context.Background(), testAddress, domain.Timeframe1W)
	if err != nil {
		t.Fatal(err)
	}
	if len(profile.PnLSeries) != 2 {
		t.Fatalf("series len = %d, want 2", len(profile.PnLSeries))
	}
	if profile.PnLSeries[0] != (domain.PnLPoint{Timestamp: 100, Value: 1}) {
		t.Errorf("series[0] = %+v, want first occurrence of t=100", profile.PnLSeries[0])
	}
}

func TestSeriesParams(t *testing.T) {
	tests := []struct {
		tf           domain.Timeframe
		wantInterval string
		wantFidelity string
	}{
		{domain.Timeframe1D, "1d", "60"},
		{domain.Timeframe1W, "1w", "60"},
		{domain.Timeframe1M, "1m", "1440"},
		{domain.TimeframeAll, "all", "1440"},
		{domain.Timeframe("bogus"), "all", "1440"},
	}

	for _, tt := range tests {
		interval, fidelity := seriesParams(tt.tf)
		if interval != tt.wantInterval || fidelity != tt.wantFidelity {
			t.Errorf("seriesParams(%s) = %s/%s, want %s/%s",
				tt.tf, interval, fidelity, tt.wantInterval, tt.wantFidelity)
		}
	}
}
