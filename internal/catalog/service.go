package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftroots/storefront-backend/pkg/config"
	pkgerrors "github.com/craftroots/storefront-backend/pkg/errors"
	"github.com/craftroots/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockWriter interface {
	SetStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Service exposes catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductView, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductView, error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductView, error)
	List(ctx context.Context, input ListInput, params pagination.Params) ([]ProductView, pagination.Envelope, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, qty int) (*ProductView, error)
	ListLowStock(ctx context.Context, threshold int, params pagination.Params) ([]ProductView, pagination.Envelope, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	stock     stockWriter
	inventory config.InventoryConfig
}

// NewService builds the catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, stock stockWriter, inventoryCfg config.InventoryConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock writer required")
	}
	return &service{repo: repo, tx: tx, stock: stock, inventory: inventoryCfg}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductView, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product category %q", input.Category))
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	product := newProduct(input)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	view := toProductView(*product)
	return &view, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product category %q", *input.Category))
		}
		updates["category"] = *input.Category
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.SellerName != nil {
		updates["seller_name"] = *input.SellerName
	}
	if input.SellerLocation != nil {
		updates["seller_location"] = *input.SellerLocation
	}
	if input.Tags != nil {
		updates["tags"] = toStringArray(input.Tags)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	rows, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.Get(ctx, id, true)
}

func (s *service) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive && !includeInactive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	view := toProductView(*product)
	return &view, nil
}

func (s *service) List(ctx context.Context, input ListInput, params pagination.Params) ([]ProductView, pagination.Envelope, error) {
	if input.MinPrice != nil && input.MaxPrice != nil && input.MinPrice.GreaterThan(*input.MaxPrice) {
		return nil, pagination.Envelope{}, pkgerrors.New(pkgerrors.CodeValidation, "min price exceeds max price")
	}
	products, total, err := s.repo.List(ctx, input, params)
	if err != nil {
		return nil, pagination.Envelope{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return toProductViews(products), pagination.NewEnvelope(params, total), nil
}

// Deactivate retires a listing. The row stays so order snapshots keep a
// valid product reference.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	rows, err := s.repo.Update(ctx, id, map[string]any{"is_active": false})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) SetStock(ctx context.Context, id uuid.UUID, qty int) (*ProductView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.stock.SetStock(ctx, tx, id, qty)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id, true)
}

func (s *service) ListLowStock(ctx context.Context, threshold int, params pagination.Params) ([]ProductView, pagination.Envelope, error) {
	if threshold <= 0 {
		threshold = s.inventory.LowStockThreshold
	}
	products, total, err := s.repo.ListLowStock(ctx, threshold, params)
	if err != nil {
		return nil, pagination.Envelope{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock products")
	}
	return toProductViews(products), pagination.NewEnvelope(params, total), nil
}
