package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

type ShipInput struct {
	TrackingNumber  string `json:"trackingNumber" validate:"required,max=100"`
	ShippingCompany string `json:"shippingCompany" validate:"required,max=100"`
	SellerNotes     string `json:"sellerNotes" validate:"max=1000"`
}

type NotificationOutcome string

const (
	NotificationSent    NotificationOutcome = "sent"
	NotificationFailed  NotificationOutcome = "failed"
	NotificationSkipped NotificationOutcome = "skipped"
)

// ShipResult - заказ после отправки и судьба письма покупателю
type ShipResult struct {
	Order             *models.Order       `json:"order"`
	Notification      NotificationOutcome `json:"notification"`
	NotificationError string              `json:"notificationError,omitempty"`
}

type OrderAdminService interface {
	ListOrders(ctx context.Context, filter storage.OrderFilter) ([]*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Ship(ctx context.Context, id uuid.UUID, in ShipInput) (*ShipResult, error)
	// UpdateStatus - ручные переходы delivered и cancelled
	UpdateStatus(ctx context.Context, id uuid.UUID, to models.OrderStatus) (*models.Order, error)
	MarkPaymentFailed(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type orderAdminService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	productRepo storage.ProductStorage
	notifier    Notifier
	notifyWait  time.Duration
	now         func() time.Time
}

const defaultNotifyWait = 10 * time.Second

func NewOrderAdminService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, productRepo storage.ProductStorage, notifier Notifier, notifyWait time.Duration) OrderAdminService {
	if notifyWait <= 0 {
		notifyWait = defaultNotifyWait
	}
	return &orderAdminService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		notifier:    notifier,
		notifyWait:  notifyWait,
		now:         time.Now,
	}
}

func (s *orderAdminService) ListOrders(ctx context.Context, filter storage.OrderFilter) ([]*models.Order, error) {
	const op = "service.OrderAdminService.ListOrders"

	orders, err := s.orderRepo.ListOrders(ctx, filter)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

func (s *orderAdminService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	const op = "service.OrderAdminService.GetOrder"
	logger := s.log.With(slog.String("op", op), slog.String("order_id", id.String()))

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.orderRepo.GetOrderItems(ctx, id)
	if err != nil {
		logger.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order.Items = items
	return order, nil
}

// Ship переводит оплаченный заказ в shipped и ждёт письмо покупателю.
// Ошибка письма попадает в результат, статус при этом остаётся shipped.
func (s *orderAdminService) Ship(ctx context.Context, id uuid.UUID, in ShipInput) (*ShipResult, error) {
	const op = "service.OrderAdminService.Ship"

	trim(&in.TrackingNumber, &in.ShippingCompany, &in.SellerNotes)
	if err := Validate(in); err != nil {
		return nil, err
	}

	logger := s.log.With(slog.String("op", op), slog.String("order_id", id.String()))

	order, err := s.orderRepo.MarkShipped(ctx, id, in.ShippingCompany, in.TrackingNumber, in.SellerNotes, s.now().UTC())
	if err != nil {
		return nil, s.conflictError(ctx, logger, op, id, err)
	}
	logger.Info("order shipped", slog.String("tracking_number", order.TrackingNumber))

	if items, err := s.orderRepo.GetOrderItems(ctx, id); err == nil {
		order.Items = items
	} else {
		logger.Warn("failed to load order items", slog.Any("error", err))
	}

	result := &ShipResult{Order: order, Notification: NotificationSent}
	task := s.notifier.ShipmentNotified(order)

	// ответ должен уйти до WriteTimeout сервера, даже если почта зависла
	waitCtx, cancel := context.WithTimeout(ctx, s.notifyWait)
	defer cancel()
	if err := task.Wait(waitCtx); err != nil {
		logger.Warn("shipping notification not confirmed", slog.Any("error", err))
		result.Notification = NotificationFailed
		result.NotificationError = err.Error()
	} else if task.Skipped() {
		result.Notification = NotificationSkipped
	}
	return result, nil
}

func (s *orderAdminService) UpdateStatus(ctx context.Context, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	const op = "service.OrderAdminService.UpdateStatus"

	if to != models.OrderStatusDelivered && to != models.OrderStatusCancelled {
		return nil, &ValidationError{Field: "status", Code: "invalid"}
	}

	logger := s.log.With(slog.String("op", op), slog.String("order_id", id.String()), slog.String("to", string(to)))

	current, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !current.Status.CanTransition(to) {
		logger.Warn("illegal transition", slog.String("from", string(current.Status)))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}

	var items []models.OrderItem
	if to == models.OrderStatusCancelled {
		if items, err = s.orderRepo.GetOrderItems(ctx, id); err != nil {
			logger.Error("failed to get order items", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// условие по старому статусу защищает от параллельного изменения
	order, err := s.orderRepo.UpdateStatus(ctx, tx, id, current.Status, to)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrOrderStateConflict) {
			logger.Warn("order changed concurrently")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidTransition)
		}
		logger.Error("failed to update status", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// отменённый заказ возвращает зарезервированный остаток
	for _, item := range items {
		if err := s.productRepo.ReleaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			rollback(logger, tx)
			logger.Error("failed to release stock", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to release stock: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	order.Items = items
	logger.Info("order status updated", slog.String("from", string(current.Status)))
	return order, nil
}

func (s *orderAdminService) MarkPaymentFailed(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	const op = "service.OrderAdminService.MarkPaymentFailed"
	logger := s.log.With(slog.String("op", op), slog.String("order_id", id.String()))

	order, err := s.orderRepo.MarkPaymentFailed(ctx, id)
	if err != nil {
		return nil, s.conflictError(ctx, logger, op, id, err)
	}
	logger.Info("payment marked as failed")
	return order, nil
}

// conflictError разбирает неудачный условный UPDATE: заказа нет или он в другом состоянии
func (s *orderAdminService) conflictError(ctx context.Context, logger *slog.Logger, op string, id uuid.UUID, err error) error {
	if !errors.Is(err, storage.ErrOrderStateConflict) {
		logger.Error("failed to update order", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Warn("order not found")
			return fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Warn("order is in a wrong state",
		slog.String("status", string(current.Status)),
		slog.String("payment_status", string(current.PaymentStatus)),
	)
	return fmt.Errorf("%s: %w", op, ErrInvalidTransition)
}
