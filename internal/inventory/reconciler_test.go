package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/craftroots/storefront-backend/pkg/config"
	"github.com/craftroots/storefront-backend/pkg/db/models"
	"github.com/craftroots/storefront-backend/pkg/enums"
	pkgerrors "github.com/craftroots/storefront-backend/pkg/errors"
	"github.com/craftroots/storefront-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newReconciler(t *testing.T) *Reconciler {
	t.Helper()
	r, err := NewReconciler(
		config.InventoryConfig{OperationTimeout: 2 * time.Second, LowStockThreshold: 5},
		logger.New(logger.Options{ServiceName: "test"}),
	)
	if err != nil {
		t.Fatalf("new reconciler: %v", err)
	}
	return r
}

func seedProduct(t *testing.T, conn *gorm.DB, stock int, active bool) models.Product {
	t.Helper()
	p := models.Product{
		ID:       uuid.New(),
		Name:     "Terracotta Vase",
		Category: enums.ProductCategoryPottery,
		Price:    decimal.NewFromInt(450),
		Stock:    stock,
		IsActive: active,
	}
	if err := conn.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func stockOf(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	if err := conn.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return p.Stock
}

func TestDecrementHappyPath(t *testing.T) {
	conn := newTestDB(t)
	r := newReconciler(t)
	p := seedProduct(t, conn, 10, true)

	if err := r.Decrement(context.Background(), conn, Line{ProductID: p.ID, ProductName: p.Name, Quantity: 4}); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if got := stockOf(t, conn, p.ID); got != 6 {
		t.Fatalf("expected stock 6, got %d", got)
	}
}

func TestDecrementShortfall(t *testing.T) {
	conn := newTestDB(t)
	r := newReconciler(t)
	p := seedProduct(t, conn, 3, true)

	err := r.Decrement(context.Background(), conn, Line{ProductID: p.ID, ProductName: p.Name, Quantity: 4})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["available"] != 3 {
		t.Fatalf("details should name the available quantity, got %v", details["available"])
	}
	if got := stockOf(t, conn, p.ID); got != 3 {
		t.Fatalf("shortfall must not write, stock now %d", got)
	}
}

func TestDecrementExactlyDrainsStock(t *testing.T) {
	conn := newTestDB(t)
	r := newReconciler(t)
	p := seedProduct(t, conn, 1, true)
	line := Line{ProductID: p.ID, ProductName: p.Name, Quantity: 1}

	if err := r.Decrement(context.Background(), conn, line); err != nil {
		t.Fatalf("first decrement of last unit should win: %v", err)
	}
	err := r.Decrement(context.Background(), conn, line)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("second decrement of last unit should lose, got %v", err)
	}
	if got := stockOf(t, conn, p.ID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func TestDecrementMissingAndInactiveProducts(t *testing.T) {
	conn := newTestDB(t)
	r := newReconciler(t)

	err := r.Decrement(context.Background(), conn, Line{ProductID: uuid.New(), Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("missing product should be NOT_FOUND, got %v", err)
	}

	retired := seedProduct(t, conn, 10, false)
	err = r.Decrement(context.Background(), conn, Line{ProductID: retired.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("inactive product should be NOT_FOUND, got %v", err)
	}
	if got := stockOf(t, conn, retired.ID); got != 10 {
		t.Fatalf("inactive product stock must not move, got %d", got)
	}
}

func TestDecrementAllStopsAtFirstShortfall(t *testing.T) {
	conn := newTestDB(t)
	r := newReconciler(t)
	a := seedProduct(t, conn, 5, true)
	b := seedProduct(t, conn, 1, true)

	err := conn.Transaction(func(tx *gorm.DB) error {
		return r.DecrementAll(context.Background(), tx, []Line{
			{ProductID: a.ID, ProductName: a.Name, Quantity: 2},
			{ProductID: b.ID, ProductName: b.Name, Quantity: 3},
		})
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	if got := stockOf(t, conn, a.ID); got != 5 {
		t.Fatalf("rollback should compensate the first decrement, stock %d", got)
	}
	if got := stockOf(t, conn, b.ID); got != 1 {
		t.Fatalf("second product untouched, stock %d", got)
	}
}

func TestRestoreIncrementsWithoutBound(t *testing.T) {
	conn := newTestDB(t)
	r := newReconciler(t)
	p := seedProduct(t, conn, 2, true)

	if err := r.Restore(context.Background(), conn, []Line{{ProductID: p.ID, Quantity: 50}}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := stockOf(t, conn, p.ID); got != 52 {
		t.Fatalf("expected stock 52, got %d", got)
	}
}

func TestRestoreSurfacesPartialFailures(t *testing.T) {
	conn := newTestDB(t)
	r := newReconciler(t)
	p := seedProduct(t, conn, 2, true)

	err := r.Restore(context.Background(), conn, []Line{
		{ProductID: uuid.New(), Quantity: 1},
		{ProductID: p.ID, Quantity: 3},
	})
	if err == nil {
		t.Fatal("missing product during restore should be surfaced")
	}
	if got := stockOf(t, conn, p.ID); got != 5 {
		t.Fatalf("remaining lines should still restore, stock %d", got)
	}
}

func TestSetStock(t *testing.T) {
	conn := newTestDB(t)
	r := newReconciler(t)
	p := seedProduct(t, conn, 2, true)

	if err := r.SetStock(context.Background(), conn, p.ID, 40); err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if got := stockOf(t, conn, p.ID); got != 40 {
		t.Fatalf("expected stock 40, got %d", got)
	}

	err := r.SetStock(context.Background(), conn, p.ID, -1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("negative stock should be rejected, got %v", err)
	}

	err = r.SetStock(context.Background(), conn, uuid.New(), 5)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown product should be NOT_FOUND, got %v", err)
	}
}
