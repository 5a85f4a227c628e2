package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseEmbeddedRate(t *testing.T) {
	tests := []struct {
		code string
		rate string
		ok   bool
	}{
		{code: "s_iva_21", rate: "21", ok: true},
		{code: "s_iva_10", rate: "10", ok: true},
		{code: "s_iva_4", rate: "4", ok: true},
		{code: "s_iva_0", rate: "0", ok: true},
		{code: "iva21red", rate: "21", ok: true},
		{code: "exempt", ok: false},
		{code: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rate, ok := ParseEmbeddedRate(tt.code)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, rate.Equal(dec(tt.rate)), "got %s", rate)
			}
		})
	}
}

func TestResolveRate(t *testing.T) {
	lineRate := dec("10")
	siteRate := dec("7")

	tests := []struct {
		name       string
		ledgerCode string
		sourceRate *decimal.Decimal
		siteRate   *decimal.Decimal
		want       string
	}{
		{
			name:       "ledger code beats everything",
			ledgerCode: "s_iva_21",
			sourceRate: &lineRate,
			siteRate:   &siteRate,
			want:       "21",
		},
		{
			name:       "source rate beats site default",
			ledgerCode: "exempt",
			sourceRate: &lineRate,
			siteRate:   &siteRate,
			want:       "10",
		},
		{
			name:     "site default when nothing else",
			siteRate: &siteRate,
			want:     "7",
		},
		{
			name: "hard default",
			want: "21",
		},
		{
			name:       "unparseable code falls through",
			ledgerCode: "no-rate-here",
			siteRate:   &siteRate,
			want:       "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRate(tt.ledgerCode, tt.sourceRate, tt.siteRate)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestResolveRate_Idempotent(t *testing.T) {
	lineRate := dec("10")
	first := ResolveRate("s_iva_21", &lineRate, nil)
	for i := 0; i < 5; i++ {
		assert.True(t, first.Equal(ResolveRate("s_iva_21", &lineRate, nil)))
	}
}

func TestNetFromGross(t *testing.T) {
	tests := []struct {
		name  string
		gross string
		rate  string
		want  string
	}{
		{name: "21 percent", gross: "121", rate: "21", want: "100"},
		{name: "10 percent", gross: "110", rate: "10", want: "100"},
		{name: "rounding", gross: "99.99", rate: "21", want: "82.64"},
		{name: "zero rate passthrough", gross: "50", rate: "0", want: "50"},
		{name: "negative amount unclamped", gross: "-121", rate: "21", want: "-100"},
		{name: "zero amount", gross: "0", rate: "21", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NetFromGross(dec(tt.gross), dec(tt.rate))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

// Re-applying the resolved rate to the computed subtotal must reproduce the
// inclusive total within 2-decimal rounding tolerance.
func TestNetFromGross_RoundTrip(t *testing.T) {
	rates := []string{"4", "10", "21"}
	grosses := []string{"121", "99.99", "0.01", "1234.56", "10"}
	tolerance := dec("0.02")

	for _, r := range rates {
		for _, g := range grosses {
			rate, gross := dec(r), dec(g)
			net := NetFromGross(gross, rate)
			back := net.Mul(decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100))))
			diff := back.Sub(gross).Abs()
			require.True(t, diff.LessThanOrEqual(tolerance),
				"gross=%s rate=%s net=%s back=%s", gross, rate, net, back)
		}
	}
}

func TestProductNet(t *testing.T) {
	t.Run("inclusive price is divided", func(t *testing.T) {
		got := ProductNet(dec("121"), true, dec("21"))
		assert.True(t, got.Equal(dec("100")), "got %s", got)
	})

	t.Run("exclusive price passes through", func(t *testing.T) {
		got := ProductNet(dec("121"), false, dec("21"))
		assert.True(t, got.Equal(dec("121")))
	})
}
