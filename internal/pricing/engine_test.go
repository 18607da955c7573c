package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/craftroots/storefront-backend/pkg/config"
)

func defaultEngine() *Engine {
	return NewEngine(config.PricingConfig{
		TaxRate:             0.18,
		FreeShippingMinimum: 10000,
		FlatShippingFee:     200,
	})
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertBreakdown(t *testing.T, got Breakdown, subtotal, tax, shipping, total string) {
	t.Helper()
	if !got.Subtotal.Equal(dec(subtotal)) {
		t.Fatalf("subtotal: got %s want %s", got.Subtotal, subtotal)
	}
	if !got.Tax.Equal(dec(tax)) {
		t.Fatalf("tax: got %s want %s", got.Tax, tax)
	}
	if !got.Shipping.Equal(dec(shipping)) {
		t.Fatalf("shipping: got %s want %s", got.Shipping, shipping)
	}
	if !got.Total.Equal(dec(total)) {
		t.Fatalf("total: got %s want %s", got.Total, total)
	}
}

func TestQuoteSingleItem(t *testing.T) {
	got := defaultEngine().Quote([]Line{{UnitPrice: dec("250"), Quantity: 1}})
	assertBreakdown(t, got, "250", "45", "200", "495")
}

func TestQuoteTaxRoundsHalfUp(t *testing.T) {
	// 125 * 0.18 = 22.5, rounds up to 23
	got := defaultEngine().Quote([]Line{{UnitPrice: dec("125"), Quantity: 1}})
	assertBreakdown(t, got, "125", "23", "200", "348")

	// 135 * 0.18 = 24.3, rounds down to 24
	got = defaultEngine().Quote([]Line{{UnitPrice: dec("135"), Quantity: 1}})
	assertBreakdown(t, got, "135", "24", "200", "359")
}

func TestQuoteFreeShippingBoundary(t *testing.T) {
	at := defaultEngine().Quote([]Line{{UnitPrice: dec("10000"), Quantity: 1}})
	assertBreakdown(t, at, "10000", "1800", "0", "11800")

	below := defaultEngine().Quote([]Line{{UnitPrice: dec("9999"), Quantity: 1}})
	assertBreakdown(t, below, "9999", "1800", "200", "11999")
}

func TestQuoteSumsLines(t *testing.T) {
	got := defaultEngine().Quote([]Line{
		{UnitPrice: dec("450"), Quantity: 2},
		{UnitPrice: dec("1200.50"), Quantity: 1},
	})
	// subtotal 2100.50, tax 378.09 -> 378
	assertBreakdown(t, got, "2100.50", "378", "200", "2678.50")
}

func TestQuoteEmptyCart(t *testing.T) {
	got := defaultEngine().Quote(nil)
	assertBreakdown(t, got, "0", "0", "200", "200")
}

func TestQuoteIgnoresNonPositiveQuantities(t *testing.T) {
	got := defaultEngine().Quote([]Line{
		{UnitPrice: dec("500"), Quantity: 0},
		{UnitPrice: dec("250"), Quantity: 1},
	})
	assertBreakdown(t, got, "250", "45", "200", "495")
}
