package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftroots/storefront-backend/pkg/db/models"
	"github.com/craftroots/storefront-backend/pkg/enums"
	"github.com/craftroots/storefront-backend/pkg/types"
)

// DefaultCancelReason is stored when a cancellation carries no reason.
const DefaultCancelReason = "No reason provided"

// CreateInput starts a checkout for the user's current cart. CustomerEmail
// comes from the caller's identity token and is where the confirmation goes.
type CreateInput struct {
	UserID          uuid.UUID
	CustomerEmail   string
	ShippingAddress types.ShippingAddress
	PaymentMethod   enums.PaymentMethod
	TransactionID   *string
}

// CancelInput cancels an order. AdminOverride widens the set of states the
// cancel may leave from and skips the ownership check.
type CancelInput struct {
	OrderID       uuid.UUID
	ActorUserID   uuid.UUID
	Reason        string
	AdminOverride bool
}

// UpdateStatusInput moves an order along the fulfilment lifecycle.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
}

// ListInput filters an order listing. A nil UserID lists across all users.
type ListInput struct {
	UserID *uuid.UUID
	Status *enums.OrderStatus
}

// ItemView is an immutable order line snapshot.
type ItemView struct {
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SellerName     string          `json:"seller_name"`
	SellerLocation string          `json:"seller_location"`
}

// View is the API-facing order shape.
type View struct {
	ID              uuid.UUID             `json:"id"`
	OrderNumber     string                `json:"order_number"`
	UserID          uuid.UUID             `json:"user_id"`
	CustomerEmail   string                `json:"customer_email,omitempty"`
	Status          enums.OrderStatus     `json:"status"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus   `json:"payment_status"`
	TransactionID   *string               `json:"transaction_id,omitempty"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	Tax             decimal.Decimal       `json:"tax"`
	Shipping        decimal.Decimal       `json:"shipping"`
	Total           decimal.Decimal       `json:"total"`
	CancelReason    *string               `json:"cancel_reason,omitempty"`
	Items           []ItemView            `json:"items"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func toView(order models.Order) View {
	items := make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemView{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			SellerName:     item.SellerName,
			SellerLocation: item.SellerLocation,
		})
	}
	return View{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		UserID:          order.UserID,
		CustomerEmail:   order.CustomerEmail,
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		TransactionID:   order.TransactionID,
		Subtotal:        order.Subtotal,
		Tax:             order.Tax,
		Shipping:        order.Shipping,
		Total:           order.Total,
		CancelReason:    order.CancelReason,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func toViews(orders []models.Order) []View {
	views := make([]View, 0, len(orders))
	for _, order := range orders {
		views = append(views, toView(order))
	}
	return views
}

// orderNumber derives the human-facing identifier from the order's UUID.
func orderNumber(id uuid.UUID) string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// initialPaymentStatus mirrors the payment flow: cash on delivery settles
// later, everything else arrives already captured.
func initialPaymentStatus(method enums.PaymentMethod) enums.PaymentStatus {
	if method == enums.PaymentMethodCOD {
		return enums.PaymentStatusPending
	}
	return enums.PaymentStatusCompleted
}

// normalizeCancelReason trims the reason and falls back to the default.
func normalizeCancelReason(reason string) string {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return DefaultCancelReason
	}
	return trimmed
}
