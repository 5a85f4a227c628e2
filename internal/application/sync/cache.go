package sync

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/holded"
)

// productRef is the cached identity of an existing ledger product. Tax keeps
// the account's tax code so rate resolution can honor it.
type productRef struct {
	ID  string
	Tax string
}

// referenceCache is the per-destination snapshot of existing ledger entities.
// It is rebuilt at the start of every sync call and exclusively owned by one
// session, so two destinations never interfere. Upserts write through
// immediately, making new entries visible to later lookups in the same run.
type referenceCache struct {
	products       map[string]productRef // sku -> ref
	contacts       map[string]string     // email (or name) -> id
	salesChannels  map[string]string     // name -> id
	warehouses     map[string]string     // name -> id
	paymentMethods map[string]string     // lowercased name -> id
}

func newReferenceCache() *referenceCache {
	return &referenceCache{
		products:       make(map[string]productRef),
		contacts:       make(map[string]string),
		salesChannels:  make(map[string]string),
		warehouses:     make(map[string]string),
		paymentMethods: make(map[string]string),
	}
}

// load rebuilds every map from the ledger. Failures are contained per entity:
// a reference map that cannot be loaded stays empty and downgrades its
// feature (unmapped channels/warehouses/payment methods, or create-only
// product sync) instead of aborting the run.
func (c *referenceCache) load(ctx context.Context, client LedgerClient, pageSize int, log *zap.Logger) {
	c.reset()

	products, err := loadPaged(ctx, pageSize, client.ListProducts)
	if err != nil {
		// Without the product index every product looks new; duplicates may
		// be created until the next healthy run.
		log.Error("failed to load existing products, treating all products as new", zap.Error(err))
	} else {
		for _, p := range products {
			if p.SKU == "" {
				continue
			}
			c.products[p.SKU] = productRef{ID: p.ID, Tax: p.Tax}
		}
	}

	contacts, err := loadPaged(ctx, pageSize, client.ListContacts)
	if err != nil {
		log.Error("failed to load existing contacts", zap.Error(err))
	} else {
		for _, contact := range contacts {
			key := contact.Email
			if key == "" {
				key = contact.Name
			}
			if key == "" {
				continue
			}
			if _, dup := c.contacts[key]; !dup {
				c.contacts[key] = contact.ID
			}
		}
	}

	c.salesChannels = loadNamedRefs(ctx, "sales channels", client.ListSalesChannels, log, false)
	c.warehouses = loadNamedRefs(ctx, "warehouses", client.ListWarehouses, log, false)
	c.paymentMethods = loadNamedRefs(ctx, "payment methods", client.ListPaymentMethods, log, true)

	log.Debug("reference cache loaded",
		zap.Int("products", len(c.products)),
		zap.Int("contacts", len(c.contacts)),
		zap.Int("sales_channels", len(c.salesChannels)),
		zap.Int("warehouses", len(c.warehouses)),
		zap.Int("payment_methods", len(c.paymentMethods)),
	)
}

func (c *referenceCache) reset() {
	*c = *newReferenceCache()
}

// loadPaged requests fixed-size pages until a short page. A failed request
// aborts the load with an error: an error page must never be mistaken for the
// end of the list, or the caller would operate on silently truncated data.
func loadPaged[T any](ctx context.Context, pageSize int, fetch func(ctx context.Context, page, limit int) ([]T, error)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		items, err := fetch(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < pageSize {
			return all, nil
		}
	}
}

// loadNamedRefs loads one id/name reference map. Failure is non-fatal: the
// map stays empty and the corresponding document field is simply omitted.
func loadNamedRefs(ctx context.Context, entity string, fetch func(ctx context.Context) ([]holded.NamedRef, error), log *zap.Logger, lowercase bool) map[string]string {
	refs, err := fetch(ctx)
	if err != nil {
		log.Warn("failed to load reference entities, feature degraded to unmapped",
			zap.String("entity", entity),
			zap.Error(err),
		)
		return make(map[string]string)
	}
	m := make(map[string]string, len(refs))
	for _, ref := range refs {
		name := ref.Name
		if lowercase {
			name = strings.ToLower(name)
		}
		m[name] = ref.ID
	}
	return m
}
