// Package canonical defines the common record shapes every commerce source
// adapter must produce and every ledger destination consumes. The types are
// closed structs tagged by Source; adapters validate records at the boundary
// before handing them to the sync engine.
package canonical

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidProduct  = errors.New("canonical: invalid product")
	ErrInvalidOrder    = errors.New("canonical: invalid order")
	ErrInvalidLineItem = errors.New("canonical: invalid line item")
)

// validate is the shared validator instance for canonical records
var validate = validator.New(validator.WithRequiredStructEnabled())

// Product is the canonical product record. SKU must be globally unique after
// site prefixing; SitePrefix carries the origin tag used for per-site VAT
// lookup. A Product is constructed once per fetch cycle and is immutable
// within a sync run.
type Product struct {
	SKU              string `validate:"required"`
	Name             string `validate:"required"`
	Description      string
	Price            decimal.Decimal
	PurchasePrice    decimal.Decimal
	PricesIncludeTax bool
	DefaultVATRate   decimal.Decimal
	Categories       []string
	Tags             []string
	Stock            int
	Weight           decimal.Decimal
	SitePrefix       string
	Source           string `validate:"required"`
}

// Validate checks the product against the canonical shape. Negative or zero
// prices pass through unclamped; only structural fields are enforced.
func (p *Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	return nil
}
