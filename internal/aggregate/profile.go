package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/openpredict/marketd/internal/domain"
	"github.com/openpredict/marketd/internal/platform/data"
)

// ProfileSource is the upstream surface the profile aggregator fans out to.
type ProfileSource interface {
	GetValue(ctx context.Context, address string) (float64, error)
	GetStats(ctx context.Context, address string) (data.Stats, error)
	GetPositions(ctx context.Context, address string, closed bool) ([]domain.Position, error)
	GetActivity(ctx context.Context, address string, limit int) ([]domain.Activity, error)
	GetPnLSeries(ctx context.Context, address, interval, fidelity string) ([]domain.PnLPoint, error)
}

// ProfileAggregator merges the five per-user data endpoints plus the PnL
// series into one profile. Branch failures produce empty sub-results, never
// a failed profile; the only hard rejection is a structurally invalid
// address, checked before any upstream call is issued.
type ProfileAggregator struct {
	src    ProfileSource
	logger *slog.Logger
}

// NewProfileAggregator creates a ProfileAggregator over the given source.
func NewProfileAggregator(src ProfileSource, logger *slog.Logger) *ProfileAggregator {
	return &ProfileAggregator{src: src, logger: logger}
}

const activityLimit = 100

// seriesParams maps the requested timeframe onto the interval and fidelity
// the PnL endpoint expects: hourly buckets for day/week windows, daily for
// month and full history.
func seriesParams(tf domain.Timeframe) (interval, fidelity string) {
	switch tf {
	case domain.Timeframe1D:
		return "1d", "60"
	case domain.Timeframe1W:
		return "1w", "60"
	case domain.Timeframe1M:
		return "1m", "1440"
	case domain.TimeframeAll:
		return "all", "1440"
	default:
		return "all", "1440"
	}
}

// Fetch builds the profile for one address. All six upstream calls run
// concurrently and are settled independently.
func (a *ProfileAggregator) Fetch(ctx context.Context, address string, tf domain.Timeframe) (domain.UserProfile, error) {
	if !common.IsHexAddress(address) {
		return domain.UserProfile{}, fmt.Errorf("aggregate: profile %q: %w", address, domain.ErrInvalidAddress)
	}
	address = common.HexToAddress(address).Hex()

	profile := domain.UserProfile{
		Address:         address,
		Positions:       []domain.Position{},
		ClosedPositions: []domain.Position{},
		Activity:        []domain.Activity{},
		PnLSeries:       []domain.PnLPoint{},
	}

	interval, fidelity := seriesParams(tf)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		value, err := a.src.GetValue(ctx, address)
		if err != nil {
			a.warn(ctx, address, "value", err)
			return nil
		}
		profile.Value = value
		return nil
	})

	g.Go(func() error {
		stats, err := a.src.GetStats(ctx, address)
		if err != nil {
			a.warn(ctx, address, "stats", err)
			return nil
		}
		profile.Volume = stats.Volume
		profile.Profit = stats.Profit
		profile.MarketsTraded = stats.MarketsTraded
		return nil
	})

	g.Go(func() error {
		positions, err := a.src.GetPositions(ctx, address, false)
		if err != nil {
			a.warn(ctx, address, "positions", err)
			return nil
		}
		if positions != nil {
			profile.Positions = positions
		}
		return nil
	})

	g.Go(func() error {
		closed, err := a.src.GetPositions(ctx, address, true)
		if err != nil {
			a.warn(ctx, address, "closed positions", err)
			return nil
		}
		if closed != nil {
			profile.ClosedPositions = closed
		}
		return nil
	})

	g.Go(func() error {
		activity, err := a.src.GetActivity(ctx, address, activityLimit)
		if err != nil {
			a.warn(ctx, address, "activity", err)
			return nil
		}
		if activity != nil {
			profile.Activity = activity
		}
		return nil
	})

	g.Go(func() error {
		series, err := a.src.GetPnLSeries(ctx, address, interval, fidelity)
		if err != nil {
			a.warn(ctx, address, "pnl series", err)
			return nil
		}
		profile.PnLSeries = DedupePnL(series)
		return nil
	})

	// Branches never return errors; Wait just joins them.
	_ = g.Wait()

	return profile, nil
}

func (a *ProfileAggregator) warn(ctx context.Context, address, call string, err error) {
	a.logger.WarnContext(ctx, "profile: upstream call failed, defaulting",
		slog.String("address", address),
		slog.String("call", call),
		slog.String("error", err.Error()),
	)
}
