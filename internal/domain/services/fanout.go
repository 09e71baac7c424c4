package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxConcurrency = 10
	DefaultCallTimeout    = 5 * time.Second
)

// fanOut calls fn for every index in [0, n) with at most limit calls in
// flight and returns once all of them have finished. fn reports results by
// writing to index-addressed storage, so callers see them in index order
// regardless of completion order.
func fanOut(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) {
	if n == 0 {
		return
	}
	if limit < 1 {
		limit = DefaultMaxConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(gctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

// withCallTimeout bounds one external call.
func withCallTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
