package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemView is a cart line priced against the live catalog.
type ItemView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	AddedAt     time.Time       `json:"added_at"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

// View is the cart with totals recomputed from current catalog prices on
// every read. Nothing here is a snapshot.
type View struct {
	CartID     uuid.UUID       `json:"cart_id"`
	UserID     uuid.UUID       `json:"user_id"`
	Items      []ItemView      `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}
