package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// minChunk is the smallest column range handed to a worker during
// realization. Below it the goroutine overhead outweighs the work.
const minChunk = 4096

// runChunks splits [0, n) into contiguous ranges of at least grain items and
// calls fn on each, using at most workers goroutines. It returns after every range finished
// (the node barrier) with the first error, if any.
//
// CRITICAL: fn must only write columns inside [lo, hi). Ranges never overlap,
// so workers share no mutable state.
func runChunks(ctx context.Context, n, grain, workers int, fn func(lo, hi int) error) error {
	if n == 0 {
		return nil
	}
	if workers <= 1 || n < 2*grain {
		return fn(0, n)
	}

	chunk := max((n+workers-1)/workers, grain)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(lo, hi)
		})
	}
	return g.Wait()
}
