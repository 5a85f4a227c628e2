package canonical

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one order line. Price and Total are tax-exclusive as declared by
// the source; TotalWithTax carries the tax-inclusive line total the engine
// re-derives subtotals from. A nil TaxRate means "let the destination decide".
type LineItem struct {
	SKU          string
	Name         string `validate:"required"`
	Description  string
	Quantity     decimal.Decimal
	Price        decimal.Decimal // unit, tax-exclusive
	Total        decimal.Decimal // line, tax-exclusive
	TotalWithTax decimal.Decimal
	Tax          decimal.Decimal // currency amount
	TaxRate      *decimal.Decimal
	Discount     decimal.Decimal
}

// Order is the canonical sales record produced by every source adapter.
// Paid is tri-state: only an explicit false suppresses payment marking on the
// destination. SalesChannel and Warehouse are optional destination hints.
type Order struct {
	Source        string `validate:"required"`
	SitePrefix    string
	ID            string `validate:"required"`
	OrderNumber   string // order number or transaction code
	Date          time.Time
	Currency      string
	Total         decimal.Decimal
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Customer      *Customer
	Items         []LineItem
	Paid          *bool
	PaymentMethod string
	SalesChannel  string
	Warehouse     string
}

// Validate checks the order against the canonical shape. Orders must carry at
// least one line item; line quantities must be positive.
func (o *Order) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: order %s has no items", ErrInvalidOrder, o.ID)
	}
	for i := range o.Items {
		if err := o.Items[i].Validate(); err != nil {
			return fmt.Errorf("%w: order %s item %d: %v", ErrInvalidOrder, o.ID, i, err)
		}
	}
	return nil
}

// Validate checks a single line item
func (li *LineItem) Validate() error {
	if err := validate.Struct(li); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLineItem, err)
	}
	if !li.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidLineItem, li.Quantity)
	}
	return nil
}

// WithoutItems returns a copy of the order keeping only the items for which
// keep returns true. Orders are immutable within a run, so filtering never
// mutates the receiver.
func (o Order) WithoutItems(drop func(LineItem) bool) Order {
	kept := make([]LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		if !drop(item) {
			kept = append(kept, item)
		}
	}
	o.Items = kept
	return o
}

// IsPaid reports whether payment marking should be attempted. Unknown payment
// status counts as paid; only an explicit false opts out.
func (o *Order) IsPaid() bool {
	return o.Paid == nil || *o.Paid
}
