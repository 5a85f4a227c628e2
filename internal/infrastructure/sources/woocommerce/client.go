// Package woocommerce fetches catalog and sales data from one WooCommerce
// storefront through its REST v3 API and normalizes it into canonical records.
// Each configured site gets its own Source instance; the site prefix tags
// every SKU so records from different stores never collide.
package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olozano-p/holded-sync-woocommerce/internal/domain/canonical"
)

// maxResponseSize is the maximum allowed response size from the API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const defaultPageSize = 100

// Client errors
var (
	ErrUnavailable     = errors.New("woocommerce: api unavailable")
	ErrRequestFailed   = errors.New("woocommerce: request failed")
	ErrInvalidResponse = errors.New("woocommerce: invalid response")
	ErrMissingPrefix   = errors.New("woocommerce: site prefix is required")
	ErrMissingBaseURL  = errors.New("woocommerce: site base url is required")
)

// Config describes one storefront
type Config struct {
	// Prefix tags every SKU produced by this site ("ES", "PT")
	Prefix string
	// BaseURL is the store root, without the API path ("https://shop.example.es")
	BaseURL string
	// ConsumerKey and ConsumerSecret are the REST API credentials
	ConsumerKey    string
	ConsumerSecret string
	// VATRate is this site's default VAT percentage
	VATRate decimal.Decimal
	// PricesIncludeTax reports whether the store displays tax-inclusive prices
	PricesIncludeTax bool
	// PageSize for list requests; defaults to 100
	PageSize int
	// Timeout for HTTP requests; defaults to 30s
	Timeout time.Duration
}

// Source is one storefront's read-only feed of canonical records
type Source struct {
	config     Config
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a storefront source
func New(config Config, log *zap.Logger) (*Source, error) {
	if config.Prefix == "" {
		return nil, ErrMissingPrefix
	}
	if config.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Source{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log.With(zap.String("source", "woocommerce"), zap.String("site", config.Prefix)),
	}, nil
}

// Name identifies this source in logs and aggregation diagnostics
func (s *Source) Name() string {
	return "woocommerce/" + s.config.Prefix
}

// FetchProducts returns the site's published catalog as canonical products.
// Records that fail boundary validation are skipped with a diagnostic, never
// surfaced as a fetch error.
func (s *Source) FetchProducts(ctx context.Context) ([]canonical.Product, error) {
	raw, err := fetchPaged[wcProduct](ctx, s, "/wp-json/wc/v3/products", url.Values{"status": {"publish"}})
	if err != nil {
		return nil, err
	}

	products := make([]canonical.Product, 0, len(raw))
	for _, wc := range raw {
		product, err := s.normalizeProduct(wc)
		if err != nil {
			s.log.Warn("skipping product",
				zap.Int64("product_id", wc.ID),
				zap.String("sku", wc.SKU),
				zap.Error(err),
			)
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// FetchOrders returns the completed and processing orders created inside the
// inclusive [dateFrom, dateTo] calendar-day range, dates as YYYY-MM-DD.
func (s *Source) FetchOrders(ctx context.Context, dateFrom, dateTo string) ([]canonical.Order, error) {
	query := url.Values{
		"status": {"completed,processing"},
		"after":  {dateFrom + "T00:00:00"},
		"before": {dateTo + "T23:59:59"},
	}
	raw, err := fetchPaged[wcOrder](ctx, s, "/wp-json/wc/v3/orders", query)
	if err != nil {
		return nil, err
	}

	orders := make([]canonical.Order, 0, len(raw))
	for _, wc := range raw {
		order, err := s.normalizeOrder(wc)
		if err != nil {
			s.log.Warn("skipping order",
				zap.Int64("order_id", wc.ID),
				zap.Error(err),
			)
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *Source) normalizeProduct(wc wcProduct) (canonical.Product, error) {
	if wc.SKU == "" {
		return canonical.Product{}, errors.New("product has no sku")
	}

	price, err := parseAmount(wc.Price)
	if err != nil {
		return canonical.Product{}, fmt.Errorf("bad price %q: %w", wc.Price, err)
	}
	weight, err := parseAmount(wc.Weight)
	if err != nil {
		weight = decimal.Zero
	}

	product := canonical.Product{
		SKU:              s.prefixSKU(wc.SKU),
		Name:             wc.Name,
		Description:      wc.Description,
		Price:            price,
		PricesIncludeTax: s.config.PricesIncludeTax,
		DefaultVATRate:   s.config.VATRate,
		Categories:       refNames(wc.Categories),
		Tags:             refNames(wc.Tags),
		Weight:           weight,
		SitePrefix:       s.config.Prefix,
		Source:           "woocommerce",
	}
	if wc.StockQuantity != nil {
		product.Stock = *wc.StockQuantity
	}
	if err := product.Validate(); err != nil {
		return canonical.Product{}, err
	}
	return product, nil
}

func (s *Source) normalizeOrder(wc wcOrder) (canonical.Order, error) {
	date, err := time.Parse("2006-01-02T15:04:05", wc.DateCreated)
	if err != nil {
		return canonical.Order{}, fmt.Errorf("bad order date %q: %w", wc.DateCreated, err)
	}
	total, err := parseAmount(wc.Total)
	if err != nil {
		return canonical.Order{}, fmt.Errorf("bad order total %q: %w", wc.Total, err)
	}
	totalTax, err := parseAmount(wc.TotalTax)
	if err != nil {
		return canonical.Order{}, fmt.Errorf("bad order tax %q: %w", wc.TotalTax, err)
	}

	items := make([]canonical.LineItem, 0, len(wc.LineItems))
	for i, line := range wc.LineItems {
		item, err := s.normalizeLine(line)
		if err != nil {
			return canonical.Order{}, fmt.Errorf("line %d: %w", i, err)
		}
		items = append(items, item)
	}

	paid := wc.DatePaid != ""
	order := canonical.Order{
		Source:        "woocommerce",
		SitePrefix:    s.config.Prefix,
		ID:            fmt.Sprint(wc.ID),
		OrderNumber:   wc.Number,
		Date:          date,
		Currency:      wc.Currency,
		Total:         total,
		Subtotal:      total.Sub(totalTax),
		Tax:           totalTax,
		Customer:      normalizeCustomer(wc.Billing),
		Items:         items,
		Paid:          &paid,
		PaymentMethod: wc.PaymentMethodTitle,
	}
	if err := order.Validate(); err != nil {
		return canonical.Order{}, err
	}
	return order, nil
}

func (s *Source) normalizeLine(line wcLineItem) (canonical.LineItem, error) {
	subtotal, err := parseAmount(line.Subtotal)
	if err != nil {
		return canonical.LineItem{}, fmt.Errorf("bad subtotal %q: %w", line.Subtotal, err)
	}
	lineTotal, err := parseAmount(line.Total)
	if err != nil {
		return canonical.LineItem{}, fmt.Errorf("bad total %q: %w", line.Total, err)
	}
	lineTax, err := parseAmount(line.TotalTax)
	if err != nil {
		return canonical.LineItem{}, fmt.Errorf("bad tax %q: %w", line.TotalTax, err)
	}

	quantity := decimal.NewFromInt(int64(line.Quantity))
	item := canonical.LineItem{
		SKU:          s.prefixSKU(line.SKU),
		Name:         line.Name,
		Quantity:     quantity,
		Total:        lineTotal,
		TotalWithTax: lineTotal.Add(lineTax),
		Tax:          lineTax,
		// TaxRate stays nil: the destination's own tax code decides.
		Discount: subtotal.Sub(lineTotal),
	}
	if !quantity.IsZero() {
		item.Price = lineTotal.Div(quantity).Round(4)
	}
	return item, nil
}

// prefixSKU tags a store SKU with the site prefix unless the store already did
func (s *Source) prefixSKU(sku string) string {
	if sku == "" {
		return ""
	}
	prefix := s.config.Prefix + "-"
	if len(sku) > len(prefix) && sku[:len(prefix)] == prefix {
		return sku
	}
	return prefix + sku
}

func normalizeCustomer(billing wcBilling) *canonical.Customer {
	name := billing.FirstName
	if billing.LastName != "" {
		if name != "" {
			name += " "
		}
		name += billing.LastName
	}
	if name == "" && billing.Email == "" && billing.Company == "" {
		return nil
	}
	return &canonical.Customer{
		Name:       name,
		Email:      billing.Email,
		Phone:      billing.Phone,
		Company:    billing.Company,
		Address:    billing.Address1,
		City:       billing.City,
		PostalCode: billing.Postcode,
		Province:   billing.State,
		Country:    billing.Country,
	}
}

func refNames(refs []wcRef) []string {
	if len(refs) == 0 {
		return nil
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return names
}

// parseAmount parses a WooCommerce decimal string; empty means zero
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// fetchPaged requests fixed-size pages until a short page. A failed page is an
// error; it must never pass for the end of the list.
func fetchPaged[T any](ctx context.Context, s *Source, path string, query url.Values) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		items, err := fetchPage[T](ctx, s, path, query, page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < s.config.PageSize {
			return all, nil
		}
	}
}

func fetchPage[T any](ctx context.Context, s *Source, path string, query url.Values, page int) ([]T, error) {
	params := url.Values{}
	for key, values := range query {
		params[key] = values
	}
	params.Set("consumer_key", s.config.ConsumerKey)
	params.Set("consumer_secret", s.config.ConsumerSecret)
	params.Set("per_page", fmt.Sprint(s.config.PageSize))
	params.Set("page", fmt.Sprint(page))

	endpoint := s.config.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return items, nil
}
