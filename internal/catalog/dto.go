package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/craftroots/storefront-backend/pkg/db/models"
	"github.com/craftroots/storefront-backend/pkg/enums"
)

// CreateProductInput carries a new catalog listing.
type CreateProductInput struct {
	Name           string
	Description    string
	Category       enums.ProductCategory
	Price          decimal.Decimal
	Stock          int
	SellerName     string
	SellerLocation string
	Tags           []string
}

// UpdateProductInput carries a partial listing edit. Nil fields are left
// untouched. Stock is deliberately absent: replenishment goes through
// SetStock so every stock write uses the same primitive.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Category       *enums.ProductCategory
	Price          *decimal.Decimal
	SellerName     *string
	SellerLocation *string
	Tags           []string
}

// ListInput filters a catalog listing page.
type ListInput struct {
	Category        *enums.ProductCategory
	Search          string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	IncludeInactive bool
}

// ProductView is the API-facing product shape.
type ProductView struct {
	ID             uuid.UUID             `json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	Category       enums.ProductCategory `json:"category"`
	Price          decimal.Decimal       `json:"price"`
	Stock          int                   `json:"stock"`
	IsActive       bool                  `json:"is_active"`
	SellerName     string                `json:"seller_name"`
	SellerLocation string                `json:"seller_location"`
	Tags           []string              `json:"tags"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func newProduct(input CreateProductInput) *models.Product {
	return &models.Product{
		ID:             uuid.New(),
		Name:           input.Name,
		Description:    input.Description,
		Category:       input.Category,
		Price:          input.Price,
		Stock:          input.Stock,
		IsActive:       true,
		SellerName:     input.SellerName,
		SellerLocation: input.SellerLocation,
		Tags:           toStringArray(input.Tags),
	}
}

func toStringArray(tags []string) pq.StringArray {
	if tags == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(tags)
}

func toProductView(p models.Product) ProductView {
	return ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		Price:          p.Price,
		Stock:          p.Stock,
		IsActive:       p.IsActive,
		SellerName:     p.SellerName,
		SellerLocation: p.SellerLocation,
		Tags:           p.Tags,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProductViews(products []models.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views
}
