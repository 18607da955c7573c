package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftroots/storefront-backend/internal/cart"
	"github.com/craftroots/storefront-backend/internal/catalog"
	"github.com/craftroots/storefront-backend/internal/inventory"
	"github.com/craftroots/storefront-backend/internal/pricing"
	"github.com/craftroots/storefront-backend/pkg/db/models"
	"github.com/craftroots/storefront-backend/pkg/enums"
	pkgerrors "github.com/craftroots/storefront-backend/pkg/errors"
	"github.com/craftroots/storefront-backend/pkg/logger"
	"github.com/craftroots/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type quoter interface {
	Quote(lines []pricing.Line) pricing.Breakdown
}

type stockMover interface {
	DecrementAll(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error
	Restore(ctx context.Context, tx *gorm.DB, lines []inventory.Line) error
}

// ConfirmationNotifier delivers the order confirmation out of band. It must
// never block or fail the checkout.
type ConfirmationNotifier interface {
	OrderCreated(ctx context.Context, order View)
}

// userCancellableStatuses are the states a buyer may cancel from.
var userCancellableStatuses = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusConfirmed,
}

// adminCancellableStatuses are the states an admin may cancel from:
// everything except already-cancelled and delivered.
var adminCancellableStatuses = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusConfirmed,
	enums.OrderStatusProcessing,
	enums.OrderStatusShipped,
	enums.OrderStatusReturned,
}

// Service exposes order ledger operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	Get(ctx context.Context, orderID, actorUserID uuid.UUID, admin bool) (*View, error)
	List(ctx context.Context, filter ListInput, params pagination.Params) ([]View, pagination.Envelope, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*View, error)
	Cancel(ctx context.Context, input CancelInput) (*View, error)
	UpdatePaymentStatus(ctx context.Context, transactionID string, status enums.PaymentStatus) (*View, error)
}

type service struct {
	repo     Repository
	carts    cart.Repository
	products catalog.Repository
	pricer   quoter
	stock    stockMover
	tx       txRunner
	notifier ConfirmationNotifier
	log      *logger.Logger
}

// NewService builds the orders service with the required dependencies.
func NewService(
	repo Repository,
	carts cart.Repository,
	products catalog.Repository,
	pricer quoter,
	stock stockMover,
	tx txRunner,
	notifier ConfirmationNotifier,
	log *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock reconciler required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("confirmation notifier required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		carts:    carts,
		products: products,
		pricer:   pricer,
		stock:    stock,
		tx:       tx,
		notifier: notifier,
		log:      log,
	}, nil
}

// Create turns the user's cart into an order. The whole checkout runs in one
// transaction: snapshot, pricing, stock decrements and cart clear either all
// land or none do.
func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if _, err := input.ShippingAddress.Value(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		record, err := cartRepo.FindByUser(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		ids := make([]uuid.UUID, 0, len(record.Items))
		for _, item := range record.Items {
			ids = append(ids, item.ProductID)
		}
		products, err := productRepo.FindByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
		}
		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		orderID := uuid.New()
		priceLines := make([]pricing.Line, 0, len(record.Items))
		stockLines := make([]inventory.Line, 0, len(record.Items))
		items := make([]models.OrderItem, 0, len(record.Items))
		for _, item := range record.Items {
			product, ok := byID[item.ProductID]
			if !ok || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s is no longer available", item.ProductID))
			}
			priceLines = append(priceLines, pricing.Line{UnitPrice: product.Price, Quantity: item.Quantity})
			stockLines = append(stockLines, inventory.Line{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
			})
			items = append(items, models.OrderItem{
				ID:             uuid.New(),
				OrderID:        orderID,
				ProductID:      product.ID,
				ProductName:    product.Name,
				Quantity:       item.Quantity,
				UnitPrice:      product.Price,
				SellerName:     product.SellerName,
				SellerLocation: product.SellerLocation,
			})
		}

		// Priced exactly once; the breakdown below is persisted verbatim
		// and never recomputed.
		breakdown := s.pricer.Quote(priceLines)

		order := &models.Order{
			ID:              orderID,
			OrderNumber:     orderNumber(orderID),
			UserID:          input.UserID,
			CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
			Status:          enums.OrderStatusPending,
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   initialPaymentStatus(input.PaymentMethod),
			TransactionID:   input.TransactionID,
			Subtotal:        breakdown.Subtotal,
			Tax:             breakdown.Tax,
			Shipping:        breakdown.Shipping,
			Total:           breakdown.Total,
			Items:           items,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		// Any shortfall aborts the transaction, which also undoes the
		// decrements already applied for earlier lines.
		if err := s.stock.DecrementAll(ctx, tx, stockLines); err != nil {
			return err
		}

		if err := cartRepo.ClearItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := toView(*created)
	s.notifier.OrderCreated(ctx, view)
	return &view, nil
}

func (s *service) Get(ctx context.Context, orderID, actorUserID uuid.UUID, admin bool) (*View, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if !admin && order.UserID != actorUserID {
		// Non-owners learn nothing, not even that the order exists.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	view := toView(*order)
	return &view, nil
}

func (s *service) List(ctx context.Context, filter ListInput, params pagination.Params) ([]View, pagination.Envelope, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pagination.Envelope{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", *filter.Status))
	}
	orders, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pagination.Envelope{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toViews(orders), pagination.NewEnvelope(params, total), nil
}

// UpdateStatus moves an order along the lifecycle. Cancellation is not a
// valid target here; it goes through Cancel so the stock restore stays
// paired with the transition.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*View, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Status))
	}
	if input.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation must go through the cancel operation")
	}

	order, err := s.loadOrder(ctx, s.repo, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == input.Status {
		view := toView(*order)
		return &view, nil
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s and cannot change status", order.Status))
	}

	allowed := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
	}
	rows, err := s.repo.TransitionStatus(ctx, input.OrderID, input.Status, allowed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	order, err = s.loadOrder(ctx, s.repo, input.OrderID)
	if err != nil {
		return nil, err
	}
	view := toView(*order)
	return &view, nil
}

// Cancel transitions the order to cancelled and restores stock exactly once.
// The guarded update makes a duplicate cancel miss the row, so a second call
// reports the conflict without touching stock again.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*View, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.AdminOverride && input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	reason := normalizeCancelReason(input.Reason)
	allowed := userCancellableStatuses
	if input.AdminOverride {
		allowed = adminCancellableStatuses
	}

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if !input.AdminOverride && order.UserID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		rows, err := repo.MarkCancelled(ctx, input.OrderID, reason, allowed)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled at this stage").
				WithDetails(map[string]any{"status": order.Status.String()})
		}

		lines := make([]inventory.Line, 0, len(order.Items))
		for _, item := range order.Items {
			lines = append(lines, inventory.Line{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
			})
		}
		if err := s.stock.Restore(ctx, tx, lines); err != nil {
			return err
		}

		cancelled, err = s.loadOrder(ctx, repo, input.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	view := toView(*cancelled)
	return &view, nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, transactionID string, status enums.PaymentStatus) (*View, error) {
	if transactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", status))
	}

	rows, err := s.repo.SetPaymentStatusByTransactionID(ctx, transactionID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for transaction")
	}

	order, err := s.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	view := toView(*order)
	return &view, nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
