package sync

import (
	"context"
	stdsync "sync"

	"go.uber.org/zap"
)

// Runner drives one full synchronization: aggregate canonical records from
// every source, split them between destinations, and run each destination's
// batch. Products are synced to completion before orders begin; the two
// destinations run their phases concurrently since they hold independent
// caches and credentials.
type Runner struct {
	sources   []Source
	router    *Router
	primary   *Session
	secondary *Session // nil when no secondary account is configured
	log       *zap.Logger
}

// NewRunner creates a runner. secondary may be nil.
func NewRunner(sources []Source, router *Router, primary, secondary *Session, log *zap.Logger) *Runner {
	return &Runner{
		sources:   sources,
		router:    router,
		primary:   primary,
		secondary: secondary,
		log:       log,
	}
}

// RunProducts aggregates, routes and syncs products, returning one result per
// destination name
func (r *Runner) RunProducts(ctx context.Context) map[string]ProductResult {
	products := CollectProducts(ctx, r.sources, r.log)
	primarySet, secondarySet := r.router.SplitProducts(products)
	r.log.Info("products routed",
		zap.Int("total", len(products)),
		zap.Int("primary", len(primarySet)),
		zap.Int("secondary", len(secondarySet)),
	)

	results := make(map[string]ProductResult)
	var mu stdsync.Mutex
	var wg stdsync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		result := r.primary.SyncProducts(ctx, primarySet)
		mu.Lock()
		results[r.primary.Name()] = result
		mu.Unlock()
	}()

	if r.secondary != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := r.secondary.SyncProducts(ctx, secondarySet)
			mu.Lock()
			results[r.secondary.Name()] = result
			mu.Unlock()
		}()
	} else if len(secondarySet) > 0 {
		r.log.Warn("secondary products skipped, no secondary account configured",
			zap.Int("count", len(secondarySet)),
		)
	}

	wg.Wait()
	return results
}

// RunOrders aggregates, routes and syncs orders for the inclusive date range,
// returning one result per destination name
func (r *Runner) RunOrders(ctx context.Context, dateFrom, dateTo string) map[string]OrderResult {
	orders := CollectOrders(ctx, r.sources, dateFrom, dateTo, r.log)
	primarySet, secondarySet := r.router.SplitOrders(orders)
	r.log.Info("orders routed",
		zap.Int("total", len(orders)),
		zap.Int("primary", len(primarySet)),
		zap.Int("secondary", len(secondarySet)),
	)

	results := make(map[string]OrderResult)
	var mu stdsync.Mutex
	var wg stdsync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		result := r.primary.SyncOrders(ctx, primarySet)
		mu.Lock()
		results[r.primary.Name()] = result
		mu.Unlock()
	}()

	if r.secondary != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := r.secondary.SyncOrders(ctx, secondarySet)
			mu.Lock()
			results[r.secondary.Name()] = result
			mu.Unlock()
		}()
	} else if len(secondarySet) > 0 {
		r.log.Warn("secondary orders skipped, no secondary account configured",
			zap.Int("count", len(secondarySet)),
		)
	}

	wg.Wait()
	return results
}
