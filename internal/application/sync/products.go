package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/canonical"
	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/tax"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/holded"
)

// SyncProducts upserts the given products into the destination account.
// The reference cache is rebuilt first; each product then either updates the
// existing ledger entry (never touching its tax configuration) or creates a
// new one carrying the resolved tax rate. A failed item is counted and the
// batch continues.
func (s *Session) SyncProducts(ctx context.Context, products []canonical.Product) ProductResult {
	runID := uuid.New()
	log := s.log.With(zap.String("run_id", runID.String()), zap.String("phase", "products"))
	log.Info("product sync started", zap.Int("count", len(products)))

	s.cache.load(ctx, s.client, s.opts.PageSize, log)

	var result ProductResult
	for _, product := range products {
		if err := s.upsertProduct(ctx, product, &result); err != nil {
			result.Errors++
			result.Failed = append(result.Failed, ItemFailure{Key: product.SKU, Message: err.Error()})
			log.Error("product sync failed",
				zap.String("sku", product.SKU),
				zap.Error(err),
			)
		}
		time.Sleep(s.opts.ProductDelay)
	}

	log.Info("product sync finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", result.Errors),
	)
	return result
}

// upsertProduct creates or updates one product, keyed by SKU
func (s *Session) upsertProduct(ctx context.Context, product canonical.Product, result *ProductResult) error {
	existing, exists := s.cache.products[product.SKU]

	rate := s.productRate(product, existing.Tax)
	price := tax.ProductNet(product.Price, product.PricesIncludeTax, rate)

	payload := holded.ProductPayload{
		Name:          product.Name,
		SKU:           product.SKU,
		Desc:          product.Description,
		Price:         toAmount(price),
		PurchasePrice: toAmount(product.PurchasePrice),
		Tags:          product.Tags,
		Kind:          "simple",
	}

	if exists {
		if err := s.client.UpdateProduct(ctx, existing.ID, payload); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	taxRate := toAmount(rate)
	payload.Tax = &taxRate

	id, err := s.client.CreateProduct(ctx, payload)
	if err != nil {
		return err
	}
	// Write through so repeated SKUs later in the batch update instead of
	// creating a second product.
	s.cache.products[product.SKU] = productRef{ID: id}
	result.Created++
	return nil
}

// productRate resolves the tax percentage for a product price. The ledger's
// existing tax code is authoritative; the source-declared site rate and the
// session defaults are fallbacks.
func (s *Session) productRate(product canonical.Product, ledgerCode string) decimal.Decimal {
	if rate, ok := tax.ParseEmbeddedRate(ledgerCode); ok {
		return rate
	}
	if !product.DefaultVATRate.IsZero() {
		return product.DefaultVATRate
	}
	return s.siteDefault(product.SitePrefix)
}

// toAmount converts a decimal into the ledger's wire representation
func toAmount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
