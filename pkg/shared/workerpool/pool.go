// Package workerpool provides the bounded-concurrency primitive used
// by both the orchestrator (outer pool, per-dashboard) and the phase
// engine (inner pool, per-chart/table/pair). It is a thin wrapper over
// golang.org/x/sync/errgroup so every caller gets the same
// cancellation and limit semantics.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run executes fn(item) for every item in items, at most `limit`
// concurrently, and returns one error per item (same length and order
// as items; a nil entry means success). If stopOnError is true, the
// first error cancels the group's context: items already running
// complete, and items not yet started are not run and get the
// context's error as their result. If stopOnError is false, every item
// runs regardless of the others' outcomes.
func Run[T any](ctx context.Context, limit int, items []T, stopOnError bool, fn func(ctx context.Context, item T) error) []error {
	results := make([]error, len(items))

	if stopOnError {
		g, gctx := errgroup.WithContext(ctx)
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, item := range items {
			i, item := i, item
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					results[i] = err
					return err
				}
				err := fn(gctx, item)
				results[i] = err
				return err
			})
		}
		_ = g.Wait()
		return results
	}

	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
