// Package tax derives the tax-exclusive amounts and tax percentages the ledger
// expects, reconciling the ledger's own tax configuration, the rate declared
// by the source and the configured fallbacks. The ledger is the system of
// record for tax classification, so exclusive amounts are always re-derived
// from the inclusive total and the resolved rate rather than trusted from the
// source.
package tax

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultRate is the hard fallback when no other tier resolves a rate
var DefaultRate = decimal.NewFromInt(21)

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// embeddedRatePattern matches the integer percentage embedded in a ledger tax
// code identifier, e.g. "s_iva_21" carries 21.
// TODO: Holded may introduce tax codes with fractional rates; the parse would
// then fall through to the configured defaults.
var embeddedRatePattern = regexp.MustCompile(`(\d+)`)

// ParseEmbeddedRate extracts the percentage embedded in a ledger tax code.
// A code that carries no parseable percentage reports ok=false, which callers
// treat as "no override" rather than an error.
func ParseEmbeddedRate(code string) (decimal.Decimal, bool) {
	match := embeddedRatePattern.FindString(code)
	if match == "" {
		return decimal.Zero, false
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(n), true
}

// ResolveRate resolves the effective tax percentage for an invoice line or a
// product price. Precedence: the ledger's existing tax code, then the rate the
// source declared, then the per-site default, then DefaultRate. Resolution is
// deterministic for a fixed input triple.
func ResolveRate(ledgerCode string, sourceRate, siteDefault *decimal.Decimal) decimal.Decimal {
	if rate, ok := ParseEmbeddedRate(ledgerCode); ok {
		return rate
	}
	if sourceRate != nil {
		return *sourceRate
	}
	if siteDefault != nil {
		return *siteDefault
	}
	return DefaultRate
}

// NetFromGross returns the tax-exclusive amount for a tax-inclusive amount at
// the given percentage, rounded to 2 decimals. A zero rate short-circuits to a
// passthrough; negative amounts pass through the same division unclamped.
func NetFromGross(gross, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return gross
	}
	divisor := one.Add(rate.Div(hundred))
	return gross.DivRound(divisor, 2)
}

// ProductNet returns the price to transmit for a product. The division is
// applied only when the source flagged the price as tax-inclusive; otherwise
// the price passes through unchanged.
func ProductNet(price decimal.Decimal, includesTax bool, rate decimal.Decimal) decimal.Decimal {
	if !includesTax {
		return price
	}
	return NetFromGross(price, rate)
}
