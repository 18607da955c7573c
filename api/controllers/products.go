package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/craftroots/storefront-backend/api/responses"
	"github.com/craftroots/storefront-backend/api/validators"
	"github.com/craftroots/storefront-backend/internal/catalog"
	"github.com/craftroots/storefront-backend/pkg/enums"
	pkgerrors "github.com/craftroots/storefront-backend/pkg/errors"
	"github.com/craftroots/storefront-backend/pkg/logger"
	"github.com/craftroots/storefront-backend/pkg/pagination"
)

type listResponse struct {
	Items      any                 `json:"items"`
	Pagination pagination.Envelope `json:"pagination"`
}

// ListProducts serves the public catalog listing. Inactive products never
// appear here.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := parseProductFilter(r, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, envelope, err := svc.List(r.Context(), input, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listResponse{Items: items, Pagination: envelope})
	}
}

// GetProduct serves one active product.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id, false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description"`
	Category       string   `json:"category" validate:"required"`
	Price          string   `json:"price" validate:"required"`
	Stock          int      `json:"stock" validate:"gte=0"`
	SellerName     string   `json:"seller_name" validate:"required"`
	SellerLocation string   `json:"seller_location"`
	Tags           []string `json:"tags,omitempty"`
}

func (r createProductRequest) toInput() (catalog.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil || price.IsNegative() {
		return catalog.CreateProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid price")
	}
	return catalog.CreateProductInput{
		Name:           strings.TrimSpace(r.Name),
		Description:    r.Description,
		Category:       category,
		Price:          price,
		Stock:          r.Stock,
		SellerName:     strings.TrimSpace(r.SellerName),
		SellerLocation: strings.TrimSpace(r.SellerLocation),
		Tags:           r.Tags,
	}, nil
}

// AdminCreateProduct adds a catalog listing.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Price          *string  `json:"price,omitempty"`
	SellerName     *string  `json:"seller_name,omitempty"`
	SellerLocation *string  `json:"seller_location,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

func (r updateProductRequest) toInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		Name:           r.Name,
		Description:    r.Description,
		SellerName:     r.SellerName,
		SellerLocation: r.SellerLocation,
		Tags:           r.Tags,
	}
	if r.Category != nil {
		category, err := enums.ParseProductCategory(strings.TrimSpace(*r.Category))
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	if r.Price != nil {
		price, err := decimal.NewFromString(*r.Price)
		if err != nil || price.IsNegative() {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid price")
		}
		input.Price = &price
	}
	return input, nil
}

// AdminUpdateProduct edits a listing. Stock is not editable here; it goes
// through the stock endpoint.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeactivateProduct retires a listing without deleting its history.
func AdminDeactivateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

type setStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

// AdminSetProductStock overwrites a product's stock level.
func AdminSetProductStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.SetStock(r.Context(), id, payload.Stock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminListLowStock lists active products at or below the threshold.
func AdminListLowStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		threshold := 0
		if raw := r.URL.Query().Get("threshold"); raw != "" {
			threshold, err = strconv.Atoi(raw)
			if err != nil || threshold < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid threshold"))
				return
			}
		}
		items, envelope, err := svc.ListLowStock(r.Context(), threshold, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listResponse{Items: items, Pagination: envelope})
	}
}

// AdminListProducts lists the catalog including retired products.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := parseProductFilter(r, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, envelope, err := svc.List(r.Context(), input, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listResponse{Items: items, Pagination: envelope})
	}
}

func parseProductFilter(r *http.Request, includeInactive bool) (catalog.ListInput, error) {
	input := catalog.ListInput{
		Search:          strings.TrimSpace(r.URL.Query().Get("search")),
		IncludeInactive: includeInactive,
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	if raw := r.URL.Query().Get("min_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid min_price")
		}
		input.MinPrice = &price
	}
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid max_price")
		}
		input.MaxPrice = &price
	}
	return input, nil
}
