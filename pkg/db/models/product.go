package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/craftroots/storefront-backend/pkg/enums"
)

// Product is a catalog listing. Listings are never hard-deleted; retiring a
// product flips IsActive off so order snapshots keep a valid reference.
type Product struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name           string                `gorm:"column:name;not null"`
	Description    string                `gorm:"column:description;not null;default:''"`
	Category       enums.ProductCategory `gorm:"column:category;type:text;not null"`
	Price          decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Stock          int                   `gorm:"column:stock;not null;default:0"`
	IsActive       bool                  `gorm:"column:is_active;not null;default:true"`
	SellerName     string                `gorm:"column:seller_name;not null;default:''"`
	SellerLocation string                `gorm:"column:seller_location;not null;default:''"`
	Tags           pq.StringArray        `gorm:"column:tags;type:text[]"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
