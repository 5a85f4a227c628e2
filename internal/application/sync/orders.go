package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/canonical"
	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/tax"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/holded"
)

// SyncOrders posts the given orders to the destination account as sales
// documents. Document creation carries no idempotency key: re-running a sync
// over the same date range produces duplicate documents on the ledger.
func (s *Session) SyncOrders(ctx context.Context, orders []canonical.Order) OrderResult {
	runID := uuid.New()
	log := s.log.With(zap.String("run_id", runID.String()), zap.String("phase", "orders"))
	log.Info("order sync started", zap.Int("count", len(orders)))

	s.cache.load(ctx, s.client, s.opts.PageSize, log)

	var result OrderResult
	for _, order := range orders {
		if err := s.createDocument(ctx, order, log); err != nil {
			result.Errors++
			result.Failed = append(result.Failed, ItemFailure{Key: order.ID, Message: err.Error()})
			log.Error("order sync failed",
				zap.String("order_id", order.ID),
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		} else {
			result.Created++
		}
		time.Sleep(s.opts.DocumentDelay)
	}

	log.Info("order sync finished",
		zap.Int("created", result.Created),
		zap.Int("errors", result.Errors),
	)
	return result
}

// createDocument posts one order as a sales document, then attempts payment
// marking for orders not explicitly unpaid. A failed payment marking leaves
// the order counted as created: the document exists on the ledger.
func (s *Session) createDocument(ctx context.Context, order canonical.Order, log *zap.Logger) error {
	payload := holded.DocumentPayload{
		Desc:     documentDesc(order),
		Date:     order.Date.Unix(),
		DueDate:  order.Date.Unix(),
		Currency: order.Currency,
		Items:    s.buildItems(order),
		Tags:     documentTags(order),
		Notes:    fmt.Sprintf("%s order id %s", order.Source, order.ID),
	}

	if err := s.linkContact(ctx, &payload, order.Customer, log); err != nil {
		return err
	}

	// Destination hints are attached only when the name is mapped in this
	// account; an unmapped name is silently omitted.
	if order.SalesChannel != "" {
		if id, ok := s.cache.salesChannels[order.SalesChannel]; ok {
			payload.SalesChannelID = id
		}
	}
	if order.Warehouse != "" {
		if id, ok := s.cache.warehouses[order.Warehouse]; ok {
			payload.WarehouseID = id
		}
	}

	docID, err := s.client.CreateDocument(ctx, s.opts.DocType, payload)
	if err != nil {
		return err
	}

	if order.IsPaid() {
		s.markPaid(ctx, docID, order, log)
	}
	return nil
}

// linkContact fills the document's contact linkage in priority order:
// resolved contact id, raw VAT number as contact code, inline contact fields.
func (s *Session) linkContact(ctx context.Context, payload *holded.DocumentPayload, customer *canonical.Customer, log *zap.Logger) error {
	contactID, err := s.findOrCreateContact(ctx, customer, log)
	if err != nil {
		return err
	}
	switch {
	case contactID != "":
		payload.ContactID = contactID
	case customer != nil && customer.VATNumber != "":
		payload.ContactCode = customer.VATNumber
	case customer != nil:
		payload.ContactName = customer.Name
		payload.ContactEmail = customer.Email
	}
	return nil
}

// buildItems converts order lines into document items. The subtotal is always
// re-derived from the tax-inclusive unit total and the resolved rate; sources
// disagree on rounding and the ledger is the system of record for tax
// classification.
func (s *Session) buildItems(order canonical.Order) []holded.DocumentItem {
	siteRate := s.siteDefault(order.SitePrefix)
	items := make([]holded.DocumentItem, 0, len(order.Items))
	for _, line := range order.Items {
		ledgerCode := s.cache.products[line.SKU].Tax
		rate := tax.ResolveRate(ledgerCode, line.TaxRate, &siteRate)

		unitGross := line.TotalWithTax
		if !line.Quantity.IsZero() {
			unitGross = line.TotalWithTax.Div(line.Quantity)
		}

		items = append(items, holded.DocumentItem{
			Name:     line.Name,
			Desc:     line.Description,
			SKU:      line.SKU,
			Units:    line.Quantity.InexactFloat64(),
			Subtotal: toAmount(tax.NetFromGross(unitGross, rate)),
			Discount: toAmount(line.Discount),
			Tax:      toAmount(rate),
		})
	}
	return items
}

// markPaid registers the payment after a successful document creation. A
// failure here is only a warning: the document is already on the ledger and
// the order stays counted as created.
func (s *Session) markPaid(ctx context.Context, docID string, order canonical.Order, log *zap.Logger) {
	payment := holded.PaymentPayload{
		Date:   order.Date.Unix(),
		Amount: toAmount(order.Total),
		Desc:   documentDesc(order),
	}
	if order.PaymentMethod != "" {
		if id, ok := s.cache.paymentMethods[strings.ToLower(order.PaymentMethod)]; ok {
			payment.PaymentMethodID = id
		}
	}

	if err := s.client.PayDocument(ctx, s.opts.DocType, docID, payment); err != nil {
		log.Warn("payment marking failed, document stays synced",
			zap.String("order_id", order.ID),
			zap.String("document_id", docID),
			zap.Error(err),
		)
	}
}

func documentDesc(order canonical.Order) string {
	number := order.OrderNumber
	if number == "" {
		number = order.ID
	}
	return fmt.Sprintf("Order %s", number)
}

func documentTags(order canonical.Order) []string {
	tags := make([]string, 0, 2)
	if order.Source != "" {
		tags = append(tags, strings.ToLower(order.Source))
	}
	if order.SitePrefix != "" {
		tags = append(tags, strings.ToLower(order.SitePrefix))
	}
	return tags
}
