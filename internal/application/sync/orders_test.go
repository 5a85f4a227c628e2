package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/canonical"
	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/holded"
)

func boolPtr(b bool) *bool { return &b }

func testOrder() canonical.Order {
	return canonical.Order{
		Source:      "woocommerce",
		SitePrefix:  "ES",
		ID:          "8841",
		OrderNumber: "1001",
		Date:        time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Currency:    "EUR",
		Total:       decimal.NewFromInt(121),
		Customer: &canonical.Customer{
			Name:  "Marta Ruiz",
			Email: "marta@example.es",
		},
		Items: []canonical.LineItem{
			{
				SKU:          "ES-A-1",
				Name:         "Tinto crianza",
				Quantity:     decimal.NewFromInt(1),
				TotalWithTax: decimal.NewFromInt(121),
			},
		},
		PaymentMethod: "Stripe",
		SalesChannel:  "Online Store",
		Warehouse:     "Central",
	}
}

func TestSession_SyncOrders(t *testing.T) {
	ledger := &fakeLedger{
		products:   []holded.Product{{ID: "p1", SKU: "ES-A-1", Tax: "s_iva_21"}},
		contacts:   []holded.Contact{{ID: "c1", Name: "Marta Ruiz", Email: "marta@example.es"}},
		channels:   []holded.NamedRef{{ID: "sc1", Name: "Online Store"}},
		warehouses: []holded.NamedRef{{ID: "w1", Name: "Central"}},
		methods:    []holded.NamedRef{{ID: "pm1", Name: "Stripe"}},
	}
	session := newTestSession(t, ledger, nil)

	result := session.SyncOrders(context.Background(), []canonical.Order{testOrder()})

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Errors)
	require.Len(t, ledger.createdDocs, 1)

	doc := ledger.createdDocs[0]
	assert.Equal(t, holded.DocTypeInvoice, doc.DocType)
	assert.Equal(t, "Order 1001", doc.Payload.Desc)
	assert.Equal(t, "c1", doc.Payload.ContactID, "cached contact resolved by email")
	assert.Equal(t, "EUR", doc.Payload.Currency)
	assert.Equal(t, "sc1", doc.Payload.SalesChannelID)
	assert.Equal(t, "w1", doc.Payload.WarehouseID)
	assert.Equal(t, []string{"woocommerce", "es"}, doc.Payload.Tags)
	assert.Contains(t, doc.Payload.Notes, "8841")

	require.Len(t, doc.Payload.Items, 1)
	item := doc.Payload.Items[0]
	assert.Equal(t, "ES-A-1", item.SKU)
	assert.Equal(t, 1.0, item.Units)
	assert.Equal(t, 100.0, item.Subtotal, "subtotal re-derived from the gross at the ledger's 21% code")
	assert.Equal(t, 21.0, item.Tax)

	require.Len(t, ledger.payments, 1)
	payment := ledger.payments[0]
	assert.Equal(t, "doc-1", payment.DocumentID)
	assert.Equal(t, 121.0, payment.Payload.Amount)
	assert.Equal(t, "pm1", payment.Payload.PaymentMethodID)
}

func TestSession_SyncOrders_PaidStates(t *testing.T) {
	run := func(t *testing.T, paid *bool) *fakeLedger {
		t.Helper()
		ledger := &fakeLedger{}
		session := newTestSession(t, ledger, nil)
		order := testOrder()
		order.Paid = paid
		result := session.SyncOrders(context.Background(), []canonical.Order{order})
		require.Equal(t, 1, result.Created)
		return ledger
	}

	t.Run("explicitly unpaid skips payment", func(t *testing.T) {
		ledger := run(t, boolPtr(false))
		assert.Empty(t, ledger.payments)
	})

	t.Run("unknown payment state is treated as paid", func(t *testing.T) {
		ledger := run(t, nil)
		assert.Len(t, ledger.payments, 1)
	})

	t.Run("explicitly paid is paid", func(t *testing.T) {
		ledger := run(t, boolPtr(true))
		assert.Len(t, ledger.payments, 1)
	})
}

func TestSession_SyncOrders_PaymentFailureStillCounted(t *testing.T) {
	ledger := &fakeLedger{payErr: errors.New("payment rejected")}
	session := newTestSession(t, ledger, nil)

	result := session.SyncOrders(context.Background(), []canonical.Order{testOrder()})

	assert.Equal(t, 1, result.Created, "the document exists, the order is synced")
	assert.Equal(t, 0, result.Errors)
	assert.Empty(t, result.Failed)
}

func TestSession_SyncOrders_DocumentFailure(t *testing.T) {
	ledger := &fakeLedger{createDocErr: errors.New("validation failed")}
	session := newTestSession(t, ledger, nil)

	result := session.SyncOrders(context.Background(), []canonical.Order{testOrder()})

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "8841", result.Failed[0].Key)
	assert.Empty(t, ledger.payments, "no payment without a document")
}

func TestSession_SyncOrders_ReferenceLoadFailureDegrades(t *testing.T) {
	ledger := &fakeLedger{
		channelsErr:   errors.New("channels down"),
		warehousesErr: errors.New("warehouses down"),
		methodsErr:    errors.New("methods down"),
	}
	session := newTestSession(t, ledger, nil)

	result := session.SyncOrders(context.Background(), []canonical.Order{testOrder()})

	assert.Equal(t, 1, result.Created, "reference failures never block invoicing")
	require.Len(t, ledger.createdDocs, 1)
	assert.Empty(t, ledger.createdDocs[0].Payload.SalesChannelID)
	assert.Empty(t, ledger.createdDocs[0].Payload.WarehouseID)
	require.Len(t, ledger.payments, 1)
	assert.Empty(t, ledger.payments[0].Payload.PaymentMethodID)
}

func TestSession_SyncOrders_UnmappedNamesOmitted(t *testing.T) {
	ledger := &fakeLedger{
		channels: []holded.NamedRef{{ID: "sc1", Name: "Retail"}},
	}
	session := newTestSession(t, ledger, nil)

	order := testOrder()
	order.SalesChannel = "Marketplace" // not configured in this account

	session.SyncOrders(context.Background(), []canonical.Order{order})

	require.Len(t, ledger.createdDocs, 1)
	assert.Empty(t, ledger.createdDocs[0].Payload.SalesChannelID)
}

func TestSession_BuildItems_RateResolution(t *testing.T) {
	rate10 := decimal.NewFromInt(10)
	rate21 := decimal.NewFromInt(21)
	zero := decimal.Zero

	tests := []struct {
		name         string
		ledgerTax    string
		lineRate     *decimal.Decimal
		wantSubtotal float64
		wantTax      float64
	}{
		{
			name:         "ledger tax code wins over the line rate",
			ledgerTax:    "s_iva_10",
			lineRate:     &rate21,
			wantSubtotal: 110.0,
			wantTax:      10.0,
		},
		{
			name:         "line rate wins over the site default",
			lineRate:     &rate10,
			wantSubtotal: 110.0,
			wantTax:      10.0,
		},
		{
			name:         "explicit zero rate passes the gross through",
			lineRate:     &zero,
			wantSubtotal: 121.0,
			wantTax:      0.0,
		},
		{
			name:         "site default applies when nothing else is known",
			wantSubtotal: 100.0,
			wantTax:      21.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{}
			if tt.ledgerTax != "" {
				ledger.products = []holded.Product{{ID: "p1", SKU: "ES-A-1", Tax: tt.ledgerTax}}
			}
			session := newTestSession(t, ledger, nil)

			order := testOrder()
			order.Items[0].TaxRate = tt.lineRate

			session.SyncOrders(context.Background(), []canonical.Order{order})

			require.Len(t, ledger.createdDocs, 1)
			item := ledger.createdDocs[0].Payload.Items[0]
			assert.Equal(t, tt.wantSubtotal, item.Subtotal)
			assert.Equal(t, tt.wantTax, item.Tax)
		})
	}
}

func TestSession_BuildItems_MultiUnitLines(t *testing.T) {
	ledger := &fakeLedger{}
	session := newTestSession(t, ledger, nil)

	order := testOrder()
	order.Items[0].Quantity = decimal.NewFromInt(3)
	order.Items[0].TotalWithTax = decimal.NewFromFloat(36.30)

	session.SyncOrders(context.Background(), []canonical.Order{order})

	require.Len(t, ledger.createdDocs, 1)
	item := ledger.createdDocs[0].Payload.Items[0]
	assert.Equal(t, 3.0, item.Units)
	assert.Equal(t, 10.0, item.Subtotal, "per-unit net: 36.30 / 3 units, 21% backed out")
}

func TestSession_ContactResolution(t *testing.T) {
	t.Run("search precedence stops at the first hit", func(t *testing.T) {
		ledger := &fakeLedger{
			searchHits: map[string][]holded.Contact{
				"code=12345678Z": {{ID: "c9", Name: "Marta Ruiz"}},
			},
		}
		session := newTestSession(t, ledger, nil)

		order := testOrder()
		order.Customer.DNI = "12345678Z"
		order.Customer.VATNumber = "ES12345678Z"

		session.SyncOrders(context.Background(), []canonical.Order{order})

		assert.Equal(t, []string{"email=marta%40example.es", "code=12345678Z"}, ledger.searches,
			"email first, then national id; VAT never reached")
		require.Len(t, ledger.createdDocs, 1)
		assert.Equal(t, "c9", ledger.createdDocs[0].Payload.ContactID)
		assert.Empty(t, ledger.createdContacts)
	})

	t.Run("unknown customer is created once and cached", func(t *testing.T) {
		ledger := &fakeLedger{}
		session := newTestSession(t, ledger, nil)

		order := testOrder()
		order.Customer.Company = "Bodega Ruiz SL"
		order.Customer.Address = "Calle Mayor 1"
		order.Customer.City = "Logroño"

		session.SyncOrders(context.Background(), []canonical.Order{order, order})

		require.Len(t, ledger.createdContacts, 1, "second order reuses the cached contact")
		contact := ledger.createdContacts[0]
		assert.Equal(t, "Bodega Ruiz SL", contact.Name, "company overrides the person name")
		assert.Equal(t, "client", contact.Type)
		require.NotNil(t, contact.BillAddress)
		assert.Equal(t, "Logroño", contact.BillAddress.City)

		require.Len(t, ledger.createdDocs, 2)
		assert.Equal(t, ledger.createdDocs[0].Payload.ContactID, ledger.createdDocs[1].Payload.ContactID)
	})

	t.Run("anonymous order carries no contact linkage", func(t *testing.T) {
		ledger := &fakeLedger{}
		session := newTestSession(t, ledger, nil)

		order := testOrder()
		order.Customer = nil

		result := session.SyncOrders(context.Background(), []canonical.Order{order})

		assert.Equal(t, 1, result.Created)
		require.Len(t, ledger.createdDocs, 1)
		doc := ledger.createdDocs[0].Payload
		assert.Empty(t, doc.ContactID)
		assert.Empty(t, doc.ContactCode)
		assert.Empty(t, doc.ContactName)
		assert.Empty(t, ledger.searches)
	})

	t.Run("identity-less customer with VAT number links by contact code", func(t *testing.T) {
		ledger := &fakeLedger{}
		session := newTestSession(t, ledger, nil)

		order := testOrder()
		order.Customer = &canonical.Customer{VATNumber: "ESB12345678"}

		session.SyncOrders(context.Background(), []canonical.Order{order})

		require.Len(t, ledger.createdDocs, 1)
		doc := ledger.createdDocs[0].Payload
		assert.Empty(t, doc.ContactID)
		assert.Equal(t, "ESB12345678", doc.ContactCode)
		assert.Empty(t, ledger.createdContacts)
	})

	t.Run("contact resolution failure fails the order", func(t *testing.T) {
		ledger := &fakeLedger{searchErr: errors.New("search down")}
		session := newTestSession(t, ledger, nil)

		result := session.SyncOrders(context.Background(), []canonical.Order{testOrder()})

		assert.Equal(t, 1, result.Errors)
		assert.Empty(t, ledger.createdDocs)
	})
}
