package holded

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{
		APIKey:         "test-key",
		APIBaseURL:     server.URL,
		TimeoutSeconds: 5,
	})
	require.NoError(t, err)
	return client, server
}

func TestConfig_Validate(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		err := (&Config{}).Validate()
		assert.ErrorIs(t, err, ErrConfigMissingAPIKey)
	})

	t.Run("defaults applied", func(t *testing.T) {
		cfg := &Config{APIKey: "k"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, ProductionAPIBaseURL, cfg.APIBaseURL)
		assert.Equal(t, 30, cfg.TimeoutSeconds)
	})
}

func TestDocType_IsValid(t *testing.T) {
	assert.True(t, DocTypeInvoice.IsValid())
	assert.True(t, DocTypeSalesReceipt.IsValid())
	assert.True(t, DocTypeCreditNote.IsValid())
	assert.False(t, DocType("estimate").IsValid())
	assert.False(t, DocType("").IsValid())
}

func TestClient_ListProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("key"))
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		_ = json.NewEncoder(w).Encode([]Product{
			{ID: "p1", SKU: "ES-A-1", Name: "Widget", Price: 100, Tax: "s_iva_21"},
		})
	})

	products, err := client.ListProducts(context.Background(), 2, 50)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "s_iva_21", products[0].Tax)
}

func TestClient_CreateProduct(t *testing.T) {
	t.Run("success returns id", func(t *testing.T) {
		var received ProductPayload
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/products", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_ = json.NewEncoder(w).Encode(apiResponse{Status: 1, ID: "new-id"})
		})

		rate := 21.0
		id, err := client.CreateProduct(context.Background(), ProductPayload{
			Name: "Widget", SKU: "ES-A-1", Price: 100, Kind: "simple", Tax: &rate,
		})
		require.NoError(t, err)
		assert.Equal(t, "new-id", id)
		require.NotNil(t, received.Tax)
		assert.Equal(t, 21.0, *received.Tax)
		assert.Equal(t, "simple", received.Kind)
	})

	t.Run("rejected mutation surfaces ledger info", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(apiResponse{Status: 0, Info: "duplicated sku"})
		})

		_, err := client.CreateProduct(context.Background(), ProductPayload{Name: "W", SKU: "S"})
		assert.ErrorIs(t, err, ErrRejected)
		assert.Contains(t, err.Error(), "duplicated sku")
	})

	t.Run("http error carries raw payload", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid key"}`, http.StatusUnauthorized)
		})

		_, err := client.CreateProduct(context.Background(), ProductPayload{Name: "W", SKU: "S"})
		assert.ErrorIs(t, err, ErrRequestFailed)
		assert.Contains(t, err.Error(), "invalid key")
	})
}

func TestClient_UpdateProduct(t *testing.T) {
	var received ProductPayload
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/p1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(apiResponse{Status: 1, ID: "p1"})
	})

	err := client.UpdateProduct(context.Background(), "p1", ProductPayload{
		Name: "Widget v2", SKU: "ES-A-1", Price: 90, Kind: "simple",
	})
	require.NoError(t, err)
	assert.Nil(t, received.Tax, "updates must never carry a tax field")
}

func TestClient_SearchContacts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contacts", r.URL.Path)
		if r.URL.Query().Get("email") == "a@b.es" {
			_ = json.NewEncoder(w).Encode([]Contact{{ID: "c1", Email: "a@b.es"}})
			return
		}
		_ = json.NewEncoder(w).Encode([]Contact{})
	})

	query := url.Values{}
	query.Set("email", "a@b.es")
	contacts, err := client.SearchContacts(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "c1", contacts[0].ID)

	query = url.Values{}
	query.Set("vatnumber", "B12345678")
	contacts, err = client.SearchContacts(context.Background(), query)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestClient_ListNamedRefs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/saleschannels":
			_ = json.NewEncoder(w).Encode([]NamedRef{{ID: "sc1", Name: "Web"}})
		case "/warehouses":
			_ = json.NewEncoder(w).Encode([]NamedRef{{ID: "w1", Name: "Central"}})
		case "/paymentmethods":
			_ = json.NewEncoder(w).Encode([]NamedRef{{ID: "pm1", Name: "Card"}})
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()

	channels, err := client.ListSalesChannels(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Web", channels[0].Name)

	warehouses, err := client.ListWarehouses(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Central", warehouses[0].Name)

	methods, err := client.ListPaymentMethods(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pm1", methods[0].ID)
}

func TestClient_CreateDocument(t *testing.T) {
	t.Run("posts to typed path", func(t *testing.T) {
		var received DocumentPayload
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/documents/invoice", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_ = json.NewEncoder(w).Encode(apiResponse{Status: 1, ID: "doc1"})
		})

		id, err := client.CreateDocument(context.Background(), DocTypeInvoice, DocumentPayload{
			ContactID: "c1",
			Date:      1770000000,
			Items:     []DocumentItem{{Name: "Widget", Units: 1, Subtotal: 100, Tax: 21}},
		})
		require.NoError(t, err)
		assert.Equal(t, "doc1", id)
		assert.Equal(t, int64(1770000000), received.Date)
	})

	t.Run("invalid doc type", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})

		_, err := client.CreateDocument(context.Background(), DocType("estimate"), DocumentPayload{})
		assert.ErrorIs(t, err, ErrInvalidDocType)
	})
}

func TestClient_PayDocument(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/invoice/doc1/pay", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(apiResponse{Status: 1})
	})

	err := client.PayDocument(context.Background(), DocTypeInvoice, "doc1", PaymentPayload{
		Date: 1770000000, Amount: 121,
	})
	require.NoError(t, err)
}
