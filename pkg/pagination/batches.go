package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the catalog's cap on ids per detail request.
const DefaultBatchSize = 15

// progressEvery controls how often batch progress is logged at info level.
const progressEvery = 10

// Batch is one consecutive slice of the input.
type Batch[T any] struct {
	// Index is zero-based.
	Index int

	// Total is the number of batches in the walk.
	Total int

	Items []T
}

// BatchCount returns how many batches of size n items split into.
func BatchCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Chunk partitions items into consecutive batches of size, preserving
// order. Every batch has exactly size items except possibly the last,
// which has at least one. Empty input yields no batches.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be > 0 (got %d)", size)
	}

	batches := make([][]T, 0, BatchCount(len(items), size))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches, nil
}

// ForEachBatch calls fn for each batch in order. The next batch starts only
// after fn returned for the previous one. The first error from fn, or a
// cancelled context between batches, stops the walk and is returned as-is.
func ForEachBatch[T any](ctx context.Context, items []T, size int, fn func(ctx context.Context, batch Batch[T]) error) error {
	batches, err := Chunk(items, size)
	if err != nil {
		return err
	}

	start := time.Now()
	total := len(batches)

	for i, chunk := range batches {
		if err := ctx.Err(); err != nil {
			log.Debug().
				Int("batch", i).
				Int("total", total).
				Msg("Batch walk stopped (context cancelled)")
			return err
		}

		if err := fn(ctx, Batch[T]{Index: i, Total: total, Items: chunk}); err != nil {
			log.Warn().
				Err(err).
				Int("batch", i).
				Int("total", total).
				Msg("Batch failed, aborting")
			return err
		}

		done := i + 1
		if done%progressEvery == 0 && done < total {
			log.Info().
				Int("done", done).
				Int("total", total).
				Float64("progress_pct", float64(done)/float64(total)*100).
				Msg("Batch progress")
		}
	}

	log.Debug().
		Int("batches", total).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Batch walk complete")

	return nil
}
