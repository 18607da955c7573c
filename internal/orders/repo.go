package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftroots/storefront-backend/pkg/db/models"
	"github.com/craftroots/storefront-backend/pkg/enums"
	"github.com/craftroots/storefront-backend/pkg/pagination"
)

// Repository is the order ledger persistence surface. Orders are append and
// update only; there is no delete.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error)
	List(ctx context.Context, filter ListInput, params pagination.Params) ([]models.Order, int64, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus, allowedCurrent []enums.OrderStatus) (int64, error)
	MarkCancelled(ctx context.Context, id uuid.UUID, reason string, allowedCurrent []enums.OrderStatus) (int64, error)
	SetPaymentStatusByTransactionID(ctx context.Context, transactionID string, status enums.PaymentStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("transaction_id = ?", transactionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter ListInput, params pagination.Params) ([]models.Order, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TransitionStatus flips the status only when the current status is in the
// allow-list. The row count tells the caller whether the guard held.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus, allowedCurrent []enums.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, allowedCurrent).
		Update("status", target)
	return res.RowsAffected, res.Error
}

// MarkCancelled is the cancel transition plus the stored reason in a single
// guarded update, so a second cancel can never match the row again.
func (r *repository) MarkCancelled(ctx context.Context, id uuid.UUID, reason string, allowedCurrent []enums.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, allowedCurrent).
		Updates(map[string]any{
			"status":        enums.OrderStatusCancelled,
			"cancel_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) SetPaymentStatusByTransactionID(ctx context.Context, transactionID string, status enums.PaymentStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("transaction_id = ?", transactionID).
		Update("payment_status", status)
	return res.RowsAffected, res.Error
}
