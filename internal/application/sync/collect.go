package sync

import (
	"context"
	stdsync "sync"

	"go.uber.org/zap"

	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/canonical"
)

// Source is one commerce system producing canonical records. FetchOrders
// receives an inclusive calendar-day range as YYYY-MM-DD strings. Either call
// may fail on transport errors; the aggregation treats a failed source as
// contributing zero records, never as a fatal condition for the run.
type Source interface {
	Name() string
	FetchProducts(ctx context.Context) ([]canonical.Product, error)
	FetchOrders(ctx context.Context, dateFrom, dateTo string) ([]canonical.Order, error)
}

// CollectProducts fetches products from all sources concurrently, preserving
// source order in the combined result
func CollectProducts(ctx context.Context, sources []Source, log *zap.Logger) []canonical.Product {
	perSource := make([][]canonical.Product, len(sources))

	var wg stdsync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source Source) {
			defer wg.Done()
			products, err := source.FetchProducts(ctx)
			if err != nil {
				log.Error("source product fetch failed, contributing zero records",
					zap.String("source", source.Name()),
					zap.Error(err),
				)
				return
			}
			perSource[i] = products
		}(i, source)
	}
	wg.Wait()

	var all []canonical.Product
	for _, products := range perSource {
		all = append(all, products...)
	}
	return all
}

// CollectOrders fetches orders for the date range from all sources
// concurrently, preserving source order in the combined result
func CollectOrders(ctx context.Context, sources []Source, dateFrom, dateTo string, log *zap.Logger) []canonical.Order {
	perSource := make([][]canonical.Order, len(sources))

	var wg stdsync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source Source) {
			defer wg.Done()
			orders, err := source.FetchOrders(ctx, dateFrom, dateTo)
			if err != nil {
				log.Error("source order fetch failed, contributing zero records",
					zap.String("source", source.Name()),
					zap.Error(err),
				)
				return
			}
			perSource[i] = orders
		}(i, source)
	}
	wg.Wait()

	var all []canonical.Order
	for _, orders := range perSource {
		all = append(all, orders...)
	}
	return all
}
