// Package aggregate implements the fan-out/fan-in layers: the batched
// subgraph aggregator and the multi-source user profile aggregator. Every
// fan-out here settles all branches and tolerates per-branch failure; a slow
// or broken upstream degrades the result, it never aborts siblings.
package aggregate

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/openpredict/marketd/internal/normalize"
	"github.com/openpredict/marketd/internal/platform/goldsky"
)

// SubgraphQuerier is the per-batch query surface the aggregator needs from
// the goldsky client.
type SubgraphQuerier interface {
	FetchBooks(ctx context.Context, conditionIDs []string) (map[string]goldsky.BookStats, error)
	FetchVolumes(ctx context.Context, conditionIDs []string) (map[string]float64, error)
}

// SubgraphAggregator partitions condition-ID sets into bounded batches and
// queries both subgraphs concurrently, merging the results into the lookup
// tables the normalizer consults.
type SubgraphAggregator struct {
	client    SubgraphQuerier
	batchSize int
	logger    *slog.Logger
}

// NewSubgraphAggregator creates an aggregator issuing batches of batchSize
// IDs per request.
func NewSubgraphAggregator(client SubgraphQuerier, batchSize int, logger *slog.Logger) *SubgraphAggregator {
	return &SubgraphAggregator{
		client:    client,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Collect fetches book stats and volumes for the given condition IDs. IDs
// without the 0x prefix are dropped up front. Each batch request failure is
// logged and treated as "no data for this batch"; Collect itself never
// fails, it returns whatever merged.
func (a *SubgraphAggregator) Collect(ctx context.Context, conditionIDs []string) normalize.Lookup {
	lookup := normalize.Lookup{
		Books:   make(map[string]goldsky.BookStats),
		Volumes: make(map[string]float64),
	}

	valid := make([]string, 0, len(conditionIDs))
	for _, id := range conditionIDs {
		if strings.HasPrefix(id, "0x") {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return lookup
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for _, batch := range partition(valid, a.batchSize) {
		g.Go(func() error {
			books, err := a.client.FetchBooks(ctx, batch)
			if err != nil {
				a.logger.WarnContext(ctx, "subgraph: book batch failed",
					slog.Int("batch_size", len(batch)),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			for id, b := range books {
				lookup.Books[id] = b
			}
			mu.Unlock()
			return nil
		})

		g.Go(func() error {
			volumes, err := a.client.FetchVolumes(ctx, batch)
			if err != nil {
				a.logger.WarnContext(ctx, "subgraph: volume batch failed",
					slog.Int("batch_size", len(batch)),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			for id, v := range volumes {
				lookup.Volumes[id] = v
			}
			mu.Unlock()
			return nil
		})
	}

	// Branches swallow their own errors, so Wait only synchronizes.
	_ = g.Wait()

	return lookup
}

// partition splits ids into consecutive slices of at most size elements.
func partition(ids []string, size int) [][]string {
	if size <= 0 {
		return [][]string{ids}
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
