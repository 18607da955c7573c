package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/craftroots/storefront-backend/pkg/config"
	pkgerrors "github.com/craftroots/storefront-backend/pkg/errors"
	"github.com/craftroots/storefront-backend/pkg/logger"
)

// Line pairs a product with a quantity for a stock movement.
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
}

// Reconciler applies stock movements as single conditional updates so the
// check and the write happen atomically at the database.
type Reconciler struct {
	timeout time.Duration
	log     *logger.Logger
}

// NewReconciler builds a reconciler with the configured operation timeout.
func NewReconciler(cfg config.InventoryConfig, log *logger.Logger) (*Reconciler, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := cfg.OperationTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Reconciler{timeout: timeout, log: log}, nil
}

// Decrement subtracts qty from a product's stock only when enough remains.
// A shortfall, a missing product, or an inactive product each fail the call;
// nothing is written in those cases.
func (r *Reconciler) Decrement(ctx context.Context, tx *gorm.DB, line Line) error {
	if line.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock decrement")
	}

	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := tx.WithContext(opCtx).Exec(`
		UPDATE products
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_active AND stock >= ?
	`, line.Quantity, line.ProductID, line.Quantity)
	if res.Error != nil {
		return r.classify(res.Error, "decrement stock")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero rows means the guard failed. Reload to tell a shortfall apart
	// from a missing or retired product.
	var probe struct {
		Stock    int
		IsActive bool
	}
	err := tx.WithContext(opCtx).
		Table("products").
		Select("stock", "is_active").
		Where("id = ?", line.ProductID).
		Take(&probe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", line.ProductID))
	}
	if err != nil {
		return r.classify(err, "probe stock")
	}
	if !probe.IsActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is no longer available", line.ProductID))
	}

	name := line.ProductName
	if name == "" {
		name = line.ProductID.String()
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", name)).
		WithDetails(map[string]any{
			"product_id": line.ProductID.String(),
			"requested":  line.Quantity,
			"available":  probe.Stock,
		})
}

// DecrementAll applies decrements in order and fails on the first shortfall.
// Callers run this inside a transaction so earlier decrements are undone by
// the rollback.
func (r *Reconciler) DecrementAll(ctx context.Context, tx *gorm.DB, lines []Line) error {
	for _, line := range lines {
		if err := r.Decrement(ctx, tx, line); err != nil {
			return err
		}
	}
	return nil
}

// Restore adds quantities back unconditionally, with no upper bound. Failures
// are collected per line rather than aborting the remainder.
func (r *Reconciler) Restore(ctx context.Context, tx *gorm.DB, lines []Line) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock restore")
	}

	var combined error
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		res := tx.WithContext(opCtx).Exec(`
			UPDATE products
			SET stock = stock + ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, line.Quantity, line.ProductID)
		cancel()

		if res.Error != nil {
			err := r.classify(res.Error, fmt.Sprintf("restore stock for product %s", line.ProductID))
			r.log.Error(ctx, "stock restore failed for product", err)
			combined = multierr.Append(combined, err)
			continue
		}
		if res.RowsAffected == 0 {
			err := pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found during restore", line.ProductID))
			r.log.Error(ctx, "stock restore skipped missing product", err)
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

// SetStock overwrites a product's stock level, the admin replenishment path.
func (r *Reconciler) SetStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock set")
	}

	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := tx.WithContext(opCtx).Exec(`
		UPDATE products
		SET stock = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID)
	if res.Error != nil {
		return r.classify(res.Error, "set stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
	}
	return nil
}

// classify keeps timeouts out of the stock error space: a slow store is
// retryable, never a shortfall.
func (r *Reconciler) classify(err error, action string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action+" timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
