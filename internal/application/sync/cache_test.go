package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olozano-p/holded-sync-woocommerce/internal/infrastructure/holded"
)

func seedProducts(n int) []holded.Product {
	products := make([]holded.Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, holded.Product{
			ID:  fmt.Sprintf("p%d", i),
			SKU: fmt.Sprintf("ES-A-%d", i),
		})
	}
	return products
}

func TestLoadPaged(t *testing.T) {
	t.Run("terminates on a short page", func(t *testing.T) {
		ledger := &fakeLedger{products: seedProducts(5)}

		all, err := loadPaged(context.Background(), 2, ledger.ListProducts)

		require.NoError(t, err)
		assert.Len(t, all, 5)
		assert.Equal(t, []int{1, 2, 3}, ledger.productPages)
	})

	t.Run("exact multiple needs one extra empty page", func(t *testing.T) {
		ledger := &fakeLedger{products: seedProducts(4)}

		all, err := loadPaged(context.Background(), 2, ledger.ListProducts)

		require.NoError(t, err)
		assert.Len(t, all, 4)
		assert.Equal(t, []int{1, 2, 3}, ledger.productPages)
	})

	t.Run("a failed page is an error, not the end of the list", func(t *testing.T) {
		calls := 0
		fetch := func(_ context.Context, page, limit int) ([]holded.Product, error) {
			calls++
			if page == 2 {
				return nil, errors.New("timeout")
			}
			return seedProducts(limit), nil
		}

		_, err := loadPaged(context.Background(), 2, fetch)

		require.Error(t, err)
		assert.Equal(t, 2, calls)
	})
}

func TestReferenceCache_Load(t *testing.T) {
	log := zap.NewNop()

	t.Run("maps every entity", func(t *testing.T) {
		ledger := &fakeLedger{
			products: []holded.Product{
				{ID: "p1", SKU: "ES-A-1", Tax: "s_iva_21"},
				{ID: "p2", SKU: ""}, // unsellable, no SKU
			},
			contacts: []holded.Contact{
				{ID: "c1", Email: "marta@example.es"},
				{ID: "c2", Name: "Walk-in"},
				{ID: "c3"}, // no identity at all
			},
			channels:   []holded.NamedRef{{ID: "sc1", Name: "Online Store"}},
			warehouses: []holded.NamedRef{{ID: "w1", Name: "Central"}},
			methods:    []holded.NamedRef{{ID: "pm1", Name: "Stripe"}},
		}

		cache := newReferenceCache()
		cache.load(context.Background(), ledger, 100, log)

		assert.Equal(t, productRef{ID: "p1", Tax: "s_iva_21"}, cache.products["ES-A-1"])
		assert.Len(t, cache.products, 1)
		assert.Equal(t, "c1", cache.contacts["marta@example.es"])
		assert.Equal(t, "c2", cache.contacts["Walk-in"])
		assert.Len(t, cache.contacts, 2)
		assert.Equal(t, "sc1", cache.salesChannels["Online Store"])
		assert.Equal(t, "w1", cache.warehouses["Central"])
		assert.Equal(t, "pm1", cache.paymentMethods["stripe"], "payment methods are matched case-insensitively")
	})

	t.Run("first contact wins on duplicate keys", func(t *testing.T) {
		ledger := &fakeLedger{
			contacts: []holded.Contact{
				{ID: "c1", Email: "marta@example.es"},
				{ID: "c2", Email: "marta@example.es"},
			},
		}

		cache := newReferenceCache()
		cache.load(context.Background(), ledger, 100, log)

		assert.Equal(t, "c1", cache.contacts["marta@example.es"])
	})

	t.Run("reload discards the previous snapshot", func(t *testing.T) {
		ledger := &fakeLedger{products: []holded.Product{{ID: "p1", SKU: "ES-A-1"}}}

		cache := newReferenceCache()
		cache.load(context.Background(), ledger, 100, log)
		require.Contains(t, cache.products, "ES-A-1")

		ledger.products = []holded.Product{{ID: "p2", SKU: "ES-B-2"}}
		cache.load(context.Background(), ledger, 100, log)

		assert.NotContains(t, cache.products, "ES-A-1")
		assert.Contains(t, cache.products, "ES-B-2")
	})

	t.Run("partial failures leave the other maps intact", func(t *testing.T) {
		ledger := &fakeLedger{
			products:    []holded.Product{{ID: "p1", SKU: "ES-A-1"}},
			channelsErr: errors.New("channels down"),
		}

		cache := newReferenceCache()
		cache.load(context.Background(), ledger, 100, log)

		assert.Contains(t, cache.products, "ES-A-1")
		assert.Empty(t, cache.salesChannels)
	})
}
