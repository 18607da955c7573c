package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/craftroots/storefront-backend/internal/cart"
	"github.com/craftroots/storefront-backend/internal/catalog"
	"github.com/craftroots/storefront-backend/internal/inventory"
	"github.com/craftroots/storefront-backend/internal/orders"
	"github.com/craftroots/storefront-backend/internal/pricing"
	pkgauth "github.com/craftroots/storefront-backend/pkg/auth"
	"github.com/craftroots/storefront-backend/pkg/config"
	"github.com/craftroots/storefront-backend/pkg/db"
	"github.com/craftroots/storefront-backend/pkg/db/models"
	"github.com/craftroots/storefront-backend/pkg/logger"
)

type noopNotifier struct{}

func (noopNotifier) OrderCreated(context.Context, orders.View) {}

type fixture struct {
	handler http.Handler
	cfg     *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Product{}, &models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Env = "development"
	cfg.JWT = config.JWTConfig{Secret: "router-test-secret", Issuer: "craftroots-identity"}
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"*"}, MaxAgeSeconds: 300}
	cfg.Pricing = config.PricingConfig{TaxRate: 0.18, FreeShippingMinimum: 10000, FlatShippingFee: 200}
	cfg.Inventory = config.InventoryConfig{LowStockThreshold: 5}

	log := logger.New(logger.Options{ServiceName: "test"})
	client := db.NewWithConn(conn)

	reconciler, err := inventory.NewReconciler(cfg.Inventory, log)
	if err != nil {
		t.Fatalf("reconciler: %v", err)
	}
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn), client, reconciler, cfg.Inventory)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cartSvc, err := cart.NewService(cart.NewRepository(conn), catalog.NewRepository(conn), log)
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	ordersSvc, err := orders.NewService(
		orders.NewRepository(conn),
		cart.NewRepository(conn),
		catalog.NewRepository(conn),
		pricing.NewEngine(cfg.Pricing),
		reconciler,
		client,
		noopNotifier{},
		log,
	)
	if err != nil {
		t.Fatalf("orders: %v", err)
	}

	handler := NewRouter(cfg, log, client, nil, catalogSvc, cartSvc, ordersSvc)
	return &fixture{handler: handler, cfg: cfg}
}

func (f *fixture) token(t *testing.T, userID uuid.UUID, role pkgauth.Role) string {
	t.Helper()
	token, err := pkgauth.SignAccessToken(f.cfg.JWT, pkgauth.Claims{
		UserID: userID,
		Email:  "asha@example.in",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return payload.Data
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health/live", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}

	// Redis is not wired in this fixture, so readiness degrades.
	rec = f.do(t, http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready without redis: expected 503, got %d", rec.Code)
	}
	checks := dataField(t, rec)["checks"].(map[string]any)
	if checks["database"] != "ok" {
		t.Fatalf("database should be ok: %v", checks)
	}
}

func TestAuthBoundaries(t *testing.T) {
	f := newFixture(t)
	customer := f.token(t, uuid.New(), pkgauth.RoleCustomer)

	if rec := f.do(t, http.MethodGet, "/api/v1/cart", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous cart: expected 401, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/v1/products", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("public catalog: expected 200, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/v1/admin/orders", customer, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("customer on admin route: expected 403, got %d", rec.Code)
	}
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	admin := f.token(t, uuid.New(), pkgauth.RoleAdmin)
	customerID := uuid.New()
	customer := f.token(t, customerID, pkgauth.RoleCustomer)

	// Admin lists a product.
	rec := f.do(t, http.MethodPost, "/api/v1/admin/products", admin, `{
		"name": "Carved Elephant",
		"category": "woodwork",
		"price": "250",
		"stock": 10,
		"seller_name": "Ravi Sharma",
		"seller_location": "Saharanpur"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	productID := dataField(t, rec)["id"].(string)

	// Customer fills the cart.
	rec = f.do(t, http.MethodPost, "/api/v1/cart/items", customer,
		fmt.Sprintf(`{"product_id":%q,"quantity":2}`, productID))
	if rec.Code != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Checkout.
	rec = f.do(t, http.MethodPost, "/api/v1/orders", customer, `{
		"shipping_address": {"name": "Asha Verma", "street": "12 MG Road", "city": "Jaipur", "pincode": "302001"},
		"payment_method": "cod"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	order := dataField(t, rec)
	orderID := order["id"].(string)
	if order["status"] != "pending" || order["total"] != "495" {
		t.Fatalf("unexpected order payload: %v", order)
	}

	// Cart is now empty.
	rec = f.do(t, http.MethodGet, "/api/v1/cart", customer, "")
	if items := dataField(t, rec)["items"].([]any); len(items) != 0 {
		t.Fatalf("cart should be empty after checkout, got %d items", len(items))
	}

	// Stock came down.
	rec = f.do(t, http.MethodGet, "/api/v1/products/"+productID, "", "")
	if stock := dataField(t, rec)["stock"].(float64); stock != 8 {
		t.Fatalf("stock should be 8, got %v", stock)
	}

	// Admin progresses the order, customer sees it.
	rec = f.do(t, http.MethodPut, "/api/v1/admin/orders/"+orderID+"/status", admin, `{"status":"confirmed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodGet, "/api/v1/orders/"+orderID, customer, "")
	if dataField(t, rec)["status"] != "confirmed" {
		t.Fatalf("customer should see confirmed order: %s", rec.Body.String())
	}

	// Another customer cannot.
	stranger := f.token(t, uuid.New(), pkgauth.RoleCustomer)
	if rec := f.do(t, http.MethodGet, "/api/v1/orders/"+orderID, stranger, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("stranger should get 404, got %d", rec.Code)
	}

	// Customer cancels; stock returns.
	rec = f.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", customer, `{"reason":"changed my mind"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodGet, "/api/v1/products/"+productID, "", "")
	if stock := dataField(t, rec)["stock"].(float64); stock != 10 {
		t.Fatalf("stock should be restored to 10, got %v", stock)
	}
}

func TestCheckoutShortfallOverHTTP(t *testing.T) {
	f := newFixture(t)
	admin := f.token(t, uuid.New(), pkgauth.RoleAdmin)
	customer := f.token(t, uuid.New(), pkgauth.RoleCustomer)

	rec := f.do(t, http.MethodPost, "/api/v1/admin/products", admin, `{
		"name": "Rosewood Box",
		"category": "woodwork",
		"price": "900",
		"stock": 1,
		"seller_name": "Ravi Sharma"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: %d: %s", rec.Code, rec.Body.String())
	}
	productID := dataField(t, rec)["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/v1/cart/items", customer,
		fmt.Sprintf(`{"product_id":%q,"quantity":3}`, productID))
	if rec.Code != http.StatusOK {
		t.Fatalf("add to cart: %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/api/v1/orders", customer, `{
		"shipping_address": {"name": "Asha Verma", "street": "12 MG Road"},
		"payment_method": "cod"
	}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("shortfall checkout: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("wrong error code: %s", payload.Error.Code)
	}
	if payload.Error.Details["available"] != float64(1) {
		t.Fatalf("details should carry availability: %v", payload.Error.Details)
	}

	// Cart untouched.
	rec = f.do(t, http.MethodGet, "/api/v1/cart", customer, "")
	if items := dataField(t, rec)["items"].([]any); len(items) != 1 {
		t.Fatalf("cart should survive, got %d items", len(items))
	}
}
