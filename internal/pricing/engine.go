package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/craftroots/storefront-backend/pkg/config"
)

// Line is a single cart line fed into a quote.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Breakdown is the checkout pricing result. It is computed exactly once per
// order and persisted verbatim on the order row.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Engine computes order pricing. It is pure: no clocks, no I/O, no state
// beyond the configured rates.
type Engine struct {
	taxRate             decimal.Decimal
	freeShippingMinimum decimal.Decimal
	flatShippingFee     decimal.Decimal
}

// NewEngine builds an engine from the pricing configuration.
func NewEngine(cfg config.PricingConfig) *Engine {
	return &Engine{
		taxRate:             decimal.NewFromFloat(cfg.TaxRate),
		freeShippingMinimum: decimal.NewFromInt(cfg.FreeShippingMinimum),
		flatShippingFee:     decimal.NewFromInt(cfg.FlatShippingFee),
	}
}

// Quote prices the given lines. Tax is rounded half-up to whole rupees.
// Shipping is waived once the subtotal reaches the free-shipping minimum.
func (e *Engine) Quote(lines []Line) Breakdown {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tax := subtotal.Mul(e.taxRate).Round(0)

	shipping := e.flatShippingFee
	if subtotal.GreaterThanOrEqual(e.freeShippingMinimum) {
		shipping = decimal.Zero
	}

	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}
