// Package sync is the synchronization and reconciliation engine: it routes
// canonical records between the primary and secondary ledger accounts,
// reconciles tax rates against the ledger's own configuration, and drives
// idempotent writes under a fixed-delay rate limit with partial-failure
// aggregation.
package sync

import (
	"context"
	"net/url"

	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/holded"
)

// LedgerClient is the write surface of one destination account. holded.Client
// satisfies it; tests substitute lighter fakes.
type LedgerClient interface {
	ListProducts(ctx context.Context, page, limit int) ([]holded.Product, error)
	CreateProduct(ctx context.Context, payload holded.ProductPayload) (string, error)
	UpdateProduct(ctx context.Context, id string, payload holded.ProductPayload) error

	ListContacts(ctx context.Context, page, limit int) ([]holded.Contact, error)
	SearchContacts(ctx context.Context, query url.Values) ([]holded.Contact, error)
	CreateContact(ctx context.Context, payload holded.ContactPayload) (string, error)

	ListSalesChannels(ctx context.Context) ([]holded.NamedRef, error)
	ListWarehouses(ctx context.Context) ([]holded.NamedRef, error)
	ListPaymentMethods(ctx context.Context) ([]holded.NamedRef, error)

	CreateDocument(ctx context.Context, docType holded.DocType, payload holded.DocumentPayload) (string, error)
	PayDocument(ctx context.Context, docType holded.DocType, id string, payload holded.PaymentPayload) error
}
