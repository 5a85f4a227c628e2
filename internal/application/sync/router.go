package sync

import (
	"strings"

	"go.uber.org/zap"

	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/canonical"
)

// Router partitions canonical records between the primary and secondary
// ledger accounts. Membership checks are case-insensitive. A record whose SKU
// is excluded is synced nowhere.
type Router struct {
	secondary map[string]struct{}
	excluded  map[string]struct{}
	log       *zap.Logger
}

// NewRouter creates a router from the configured SKU lists
func NewRouter(secondarySKUs, excludedSKUs []string, log *zap.Logger) *Router {
	return &Router{
		secondary: skuSet(secondarySKUs),
		excluded:  skuSet(excludedSKUs),
		log:       log,
	}
}

func skuSet(skus []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		set[strings.ToLower(sku)] = struct{}{}
	}
	return set
}

func (r *Router) isSecondary(sku string) bool {
	_, ok := r.secondary[strings.ToLower(sku)]
	return ok
}

func (r *Router) isExcluded(sku string) bool {
	_, ok := r.excluded[strings.ToLower(sku)]
	return ok
}

// SplitProducts partitions products into the primary and secondary sets,
// dropping excluded SKUs from both. Input order is preserved.
func (r *Router) SplitProducts(products []canonical.Product) (primary, secondary []canonical.Product) {
	primary = make([]canonical.Product, 0, len(products))
	secondary = make([]canonical.Product, 0)
	for _, p := range products {
		switch {
		case r.isExcluded(p.SKU):
		case r.isSecondary(p.SKU):
			secondary = append(secondary, p)
		default:
			primary = append(primary, p)
		}
	}
	return primary, secondary
}

// SplitOrders partitions orders. Excluded line items are removed first; an
// order emptied by the exclusion filter is dropped entirely, with a
// diagnostic but no error. Mixed orders are never split: the whole order goes
// to the secondary account as soon as any surviving line is a secondary SKU.
func (r *Router) SplitOrders(orders []canonical.Order) (primary, secondary []canonical.Order) {
	primary = make([]canonical.Order, 0, len(orders))
	secondary = make([]canonical.Order, 0)
	for _, o := range orders {
		filtered := o.WithoutItems(func(li canonical.LineItem) bool {
			return r.isExcluded(li.SKU)
		})
		if len(filtered.Items) == 0 {
			r.log.Info("order dropped, all items excluded",
				zap.String("order_id", o.ID),
				zap.Time("date", o.Date),
				zap.String("first_sku", firstSKU(o)),
			)
			continue
		}
		if r.anySecondary(filtered.Items) {
			secondary = append(secondary, filtered)
		} else {
			primary = append(primary, filtered)
		}
	}
	return primary, secondary
}

func (r *Router) anySecondary(items []canonical.LineItem) bool {
	for _, li := range items {
		if r.isSecondary(li.SKU) {
			return true
		}
	}
	return false
}

func firstSKU(o canonical.Order) string {
	if len(o.Items) == 0 {
		return ""
	}
	return o.Items[0].SKU
}
