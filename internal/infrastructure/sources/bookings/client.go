// Package bookings fetches confirmed visits from the winery booking subsystem
// and normalizes them into canonical orders. Bookings carry their own
// reference code as the order number and a configured sales-channel hint so
// the ledger can tell visits apart from store sales.
package bookings

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
	ErrUnavailable     = errors.New("bookings: api unavailable")
	ErrRequestFailed   = errors.New("bookings: request failed")
	ErrInvalidResponse = errors.New("bookings: invalid response")
	ErrMissingBaseURL  = errors.New("bookings: base url is required")
)

// Config describes the booking subsystem feed
type Config struct {
	BaseURL string
	APIKey  string
	// SitePrefix tags bookings for per-site VAT lookup
	SitePrefix string
	// SalesChannel is the destination channel hint attached to every booking
	SalesChannel string
	// Timeout for HTTP requests; defaults to 30s
	Timeout time.Duration
}

type bookingItem struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Guests    int    `json:"guests"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// booking is the subsystem's confirmed-visit shape. Date is the visit day;
// PaidAt is empty when the visit will be paid on site.
type booking struct {
	ID        string        `json:"id"`
	Reference string        `json:"reference"`
	Date      string        `json:"date"`
	PaidAt    string        `json:"paid_at"`
	Currency  string        `json:"currency"`
	Total     string        `json:"total"`
	Guest     bookingGuest  `json:"guest"`
	Items     []bookingItem `json:"items"`
}

type bookingGuest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Source is the booking subsystem's read-only feed of canonical orders
type Source struct {
	config     Config
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a booking source
func New(config Config, log *zap.Logger) (*Source, error) {
	if config.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Source{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log.With(zap.String("source", "bookings")),
	}, nil
}

// Name identifies this source in logs and aggregation diagnostics
func (s *Source) Name() string {
	return "bookings"
}

// FetchProducts returns nothing: visit concepts are maintained directly on the
// ledger, not synced from the booking subsystem
func (s *Source) FetchProducts(context.Context) ([]canonical.Product, error) {
	return nil, nil
}

// FetchOrders returns the confirmed bookings with a visit day inside the
// inclusive [dateFrom, dateTo] calendar-day range, dates as YYYY-MM-DD
func (s *Source) FetchOrders(ctx context.Context, dateFrom, dateTo string) ([]canonical.Order, error) {
	query := url.Values{
		"from":   {dateFrom},
		"to":     {dateTo},
		"status": {"confirmed"},
	}

	endpoint := s.config.BaseURL + "/api/bookings?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bookings: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("bookings: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	var bookings []booking
	if err := json.Unmarshal(body, &bookings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	orders := make([]canonical.Order, 0, len(bookings))
	for _, b := range bookings {
		order, err := s.normalize(b)
		if err != nil {
			s.log.Warn("skipping booking",
				zap.String("booking_id", b.ID),
				zap.String("reference", b.Reference),
				zap.Error(err),
			)
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *Source) normalize(b booking) (canonical.Order, error) {
	date, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		return canonical.Order{}, fmt.Errorf("bad visit date %q: %w", b.Date, err)
	}
	total, err := decimal.NewFromString(b.Total)
	if err != nil {
		return canonical.Order{}, fmt.Errorf("bad total %q: %w", b.Total, err)
	}

	items := make([]canonical.LineItem, 0, len(b.Items))
	for i, raw := range b.Items {
		lineTotal, err := decimal.NewFromString(raw.Total)
		if err != nil {
			return canonical.Order{}, fmt.Errorf("item %d: bad total %q: %w", i, raw.Total, err)
		}
		unitPrice := decimal.Zero
		if raw.UnitPrice != "" {
			unitPrice, err = decimal.NewFromString(raw.UnitPrice)
			if err != nil {
				return canonical.Order{}, fmt.Errorf("item %d: bad unit price %q: %w", i, raw.UnitPrice, err)
			}
		}
		items = append(items, canonical.LineItem{
			SKU:          raw.SKU,
			Name:         raw.Name,
			Quantity:     decimal.NewFromInt(int64(raw.Guests)),
			Price:        unitPrice,
			TotalWithTax: lineTotal,
		})
	}

	var customer *canonical.Customer
	if b.Guest.Name != "" || b.Guest.Email != "" {
		customer = &canonical.Customer{
			Name:  b.Guest.Name,
			Email: b.Guest.Email,
			Phone: b.Guest.Phone,
		}
	}

	paid := b.PaidAt != ""
	order := canonical.Order{
		Source:       "bookings",
		SitePrefix:   s.config.SitePrefix,
		ID:           b.ID,
		OrderNumber:  b.Reference,
		Date:         date,
		Currency:     b.Currency,
		Total:        total,
		Customer:     customer,
		Items:        items,
		Paid:         &paid,
		SalesChannel: s.config.SalesChannel,
	}
	if err := order.Validate(); err != nil {
		return canonical.Order{}, err
	}
	return order, nil
}
