// Package cardpay fetches settled card charges from the in-store payment
// processor and normalizes them into canonical orders. Charges have no catalog
// behind them, so every transaction becomes a single synthetic line under a
// configured fallback SKU and the source never contributes products.
package cardpay

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

// Client errors
var (
	ErrUnavailable     = errors.New("cardpay: api unavailable")
	ErrRequestFailed   = errors.New("cardpay: request failed")
	ErrInvalidResponse = errors.New("cardpay: invalid response")
	ErrMissingBaseURL  = errors.New("cardpay: base url is required")
	ErrMissingSKU      = errors.New("cardpay: default sku is required")
)

// Config describes the processor feed
type Config struct {
	BaseURL string
	APIKey  string
	// SitePrefix tags charges for per-site VAT lookup
	SitePrefix string
	// DefaultSKU is the catalog reference assigned to every charge
	DefaultSKU string
	// Timeout for HTTP requests; defaults to 30s
	Timeout time.Duration
}

// transaction is the processor's settled-charge shape. Amount is a decimal
// string in the charge currency; SettledAt is RFC 3339.
type transaction struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	SettledAt  string `json:"settled_at"`
	CardHolder string `json:"card_holder"`
	Email      string `json:"email"`
	Concept    string `json:"concept"`
}

// Source is the processor's read-only feed of canonical orders
type Source struct {
	config     Config
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a processor source
func New(config Config, log *zap.Logger) (*Source, error) {
	if config.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if config.DefaultSKU == "" {
		return nil, ErrMissingSKU
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Source{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log.With(zap.String("source", "cardpay")),
	}, nil
}

// Name identifies this source in logs and aggregation diagnostics
func (s *Source) Name() string {
	return "cardpay"
}

// FetchProducts returns nothing: charges carry no catalog
func (s *Source) FetchProducts(context.Context) ([]canonical.Product, error) {
	return nil, nil
}

// FetchOrders returns the charges settled inside the inclusive
// [dateFrom, dateTo] calendar-day range, dates as YYYY-MM-DD. Settled charges
// are paid by definition.
func (s *Source) FetchOrders(ctx context.Context, dateFrom, dateTo string) ([]canonical.Order, error) {
	query := url.Values{
		"from":   {dateFrom},
		"to":     {dateTo},
		"status": {"settled"},
	}

	endpoint := s.config.BaseURL + "/v1/transactions?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cardpay: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cardpay: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	var transactions []transaction
	if err := json.Unmarshal(body, &transactions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	orders := make([]canonical.Order, 0, len(transactions))
	for _, tx := range transactions {
		order, err := s.normalize(tx)
		if err != nil {
			s.log.Warn("skipping transaction",
				zap.String("transaction_id", tx.ID),
				zap.Error(err),
			)
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *Source) normalize(tx transaction) (canonical.Order, error) {
	settledAt, err := time.Parse(time.RFC3339, tx.SettledAt)
	if err != nil {
		return canonical.Order{}, fmt.Errorf("bad settlement time %q: %w", tx.SettledAt, err)
	}
	amount, err := decimal.NewFromString(tx.Amount)
	if err != nil {
		return canonical.Order{}, fmt.Errorf("bad amount %q: %w", tx.Amount, err)
	}

	concept := tx.Concept
	if concept == "" {
		concept = "Card payment " + tx.Code
	}

	var customer *canonical.Customer
	if tx.CardHolder != "" || tx.Email != "" {
		customer = &canonical.Customer{
			Name:  tx.CardHolder,
			Email: tx.Email,
		}
	}

	paid := true
	order := canonical.Order{
		Source:      "cardpay",
		SitePrefix:  s.config.SitePrefix,
		ID:          tx.ID,
		OrderNumber: tx.Code,
		Date:        settledAt,
		Currency:    tx.Currency,
		Total:       amount,
		Customer:    customer,
		Items: []canonical.LineItem{{
			SKU:          s.config.DefaultSKU,
			Name:         concept,
			Quantity:     decimal.NewFromInt(1),
			TotalWithTax: amount,
			// TaxRate stays nil: the site default backs the rate out.
		}},
		Paid:          &paid,
		PaymentMethod: "card",
	}
	if err := order.Validate(); err != nil {
		return canonical.Order{}, err
	}
	return order, nil
}
