// Package collection drives a user's collection fetch: listing, batched
// detail requests and folding into stats aggregates.
package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/bgg-stats/pkg/client"
	"github.com/Sternrassler/bgg-stats/pkg/logging"
	"github.com/Sternrassler/bgg-stats/pkg/pagination"
	"github.com/Sternrassler/bgg-stats/pkg/stats"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Catalog is the subset of the BGG client the aggregator needs.
type Catalog interface {
	FetchCollection(ctx context.Context, username string) ([]client.CollectionItem, error)
	FetchThings(ctx context.Context, ids []string) ([]client.ItemDetail, error)
}

// Config holds aggregator settings.
type Config struct {
	// BatchSize is the number of ids per detail request (1..15).
	BatchSize int

	// TopN is the default size of top-N views.
	TopN int
}

// DefaultConfig returns the catalog batch cap and a top-10 view size.
func DefaultConfig() Config {
	return Config{
		BatchSize: pagination.DefaultBatchSize,
		TopN:      stats.DefaultTopN,
	}
}

// Aggregator builds FetchResults from the catalog.
type Aggregator struct {
	catalog Catalog
	config  Config
	logger  zerolog.Logger
}

// New creates an aggregator.
func New(catalog Catalog, cfg Config) (*Aggregator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if cfg.BatchSize < 1 || cfg.BatchSize > pagination.DefaultBatchSize {
		return nil, fmt.Errorf("batch_size must be between 1 and %d (got %d)", pagination.DefaultBatchSize, cfg.BatchSize)
	}
	if cfg.TopN < 1 {
		return nil, fmt.Errorf("top_n must be > 0 (got %d)", cfg.TopN)
	}

	return &Aggregator{
		catalog: catalog,
		config:  cfg,
		logger:  logging.NewLogger("collection"),
	}, nil
}

// TopN returns the configured default top-N size.
func (a *Aggregator) TopN() int {
	return a.config.TopN
}

// Fetch retrieves username's collection and folds every item into the
// category, mechanic and year aggregates. Any failed request aborts the
// whole fetch; no partial result is returned. An unknown user yields an
// empty result.
func (a *Aggregator) Fetch(ctx context.Context, username string) (*stats.FetchResult, error) {
	start := time.Now()
	logger := a.logger.With().
		Str("run_id", uuid.NewString()).
		Str("username", username).
		Logger()

	result, err := a.fetch(ctx, username, logger)
	outcome := outcomeOf(err)
	bggFetchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error().
			Err(err).
			Str("kind", outcome).
			Dur("duration", time.Since(start)).
			Msg("Collection fetch aborted")
		return nil, err
	}

	logger.Info().
		Int("items", result.TotalItems).
		Int("categories", result.Categories.Len()).
		Int("mechanics", result.Mechanics.Len()).
		Int("years", result.YearPublished.Len()).
		Dur("duration", time.Since(start)).
		Msg("Collection fetch complete")

	return result, nil
}

func (a *Aggregator) fetch(ctx context.Context, username string, logger zerolog.Logger) (*stats.FetchResult, error) {
	logger.Info().Msg("Fetching collection")

	listing, err := a.catalog.FetchCollection(ctx, username)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(listing))
	for i, item := range listing {
		ids[i] = item.ObjectID
	}

	logger.Debug().
		Int("items", len(ids)).
		Int("batches", pagination.BatchCount(len(ids), a.config.BatchSize)).
		Msg("Collection listing received")

	acc := stats.NewAccumulator()
	err = pagination.ForEachBatch(ctx, ids, a.config.BatchSize, func(ctx context.Context, b pagination.Batch[string]) error {
		details, err := a.catalog.FetchThings(ctx, b.Items)
		if err != nil {
			return err
		}

		acc.FoldDetails(details)
		bggBatchesTotal.Inc()
		bggItemsFoldedTotal.Add(float64(len(details)))

		logger.Debug().
			Int("batch", b.Index+1).
			Int("total", b.Total).
			Int("batch_size", len(b.Items)).
			Int("details", len(details)).
			Msg("Batch folded")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return acc.Result(username, len(listing)), nil
}

// FetchAll fetches several users concurrently. Outbound requests are still
// serialized by the client's pacer. The first failure cancels the rest.
func (a *Aggregator) FetchAll(ctx context.Context, usernames ...string) ([]*stats.FetchResult, error) {
	if len(usernames) == 0 {
		return nil, fmt.Errorf("at least one username is required")
	}

	g, gctx := errgroup.WithContext(ctx)
	results := make([]*stats.FetchResult, len(usernames))
	for i, username := range usernames {
		i, username := i, username
		g.Go(func() error {
			r, err := a.Fetch(gctx, username)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Compare fetches the users and compares their top-n mechanics as
// percentages of each collection. n <= 0 uses the configured TopN.
func (a *Aggregator) Compare(ctx context.Context, n int, usernames ...string) (stats.Comparison, error) {
	if n <= 0 {
		n = a.config.TopN
	}

	results, err := a.FetchAll(ctx, usernames...)
	if err != nil {
		return stats.Comparison{}, err
	}
	return stats.CompareTopMechanics(results, n), nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if kind := client.KindOf(err); kind != "" {
		return string(kind)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "error"
}
