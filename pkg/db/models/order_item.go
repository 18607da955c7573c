package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots a product line at checkout. Name, price and seller
// attribution are copied from the catalog so later edits cannot change what
// the buyer agreed to.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string          `gorm:"column:product_name;not null"`
	Quantity       int             `gorm:"column:quantity;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	SellerName     string          `gorm:"column:seller_name;not null;default:''"`
	SellerLocation string          `gorm:"column:seller_location;not null;default:''"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
