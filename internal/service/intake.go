package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

// OrderInput - данные формы оформления заказа
type OrderInput struct {
	CustomerName   string `json:"customerName" validate:"required,max=200"`
	CustomerPhone  string `json:"customerPhone" validate:"required,max=50"`
	CustomerEmail  string `json:"customerEmail" validate:"omitempty,email,max=200"`
	Country        string `json:"country" validate:"required,max=100"`
	City           string `json:"city" validate:"required,max=100"`
	Address        string `json:"address" validate:"required,max=500"`
	Quantity       int    `json:"quantity" validate:"gt=0,max=1000"`
	IdempotencyKey string `json:"idempotencyKey" validate:"max=100"`
}

type IntakeService interface {
	// PlaceOrder создаёт заказ. created=false, если ключ идемпотентности уже привязан к заказу.
	PlaceOrder(ctx context.Context, in OrderInput) (order *models.Order, created bool, err error)
}

type intakeService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	notifier    Notifier
	currency    string
}

func NewIntakeService(log *slog.Logger, db *sql.DB, productRepo storage.ProductStorage, orderRepo storage.OrderStorage, notifier Notifier, currency string) IntakeService {
	return &intakeService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		notifier:    notifier,
		currency:    currency,
	}
}

// PlaceOrder проверяет форму, резервирует остаток и пишет заказ с позицией в одной транзакции.
// Письмо магазину уходит после коммита и на ответ не влияет.
func (s *intakeService) PlaceOrder(ctx context.Context, in OrderInput) (*models.Order, bool, error) {
	const op = "service.IntakeService.PlaceOrder"

	trim(&in.CustomerName, &in.CustomerPhone, &in.CustomerEmail, &in.Country, &in.City, &in.Address, &in.IdempotencyKey)
	if err := Validate(in); err != nil {
		return nil, false, err
	}

	logger := s.log.With(slog.String("op", op), slog.Int("quantity", in.Quantity))
	logger.Info("placing order")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if in.IdempotencyKey != "" {
		existing, err := s.orderRepo.GetOrderByIdempotencyKey(ctx, tx, in.IdempotencyKey)
		switch {
		case err == nil:
			rollback(logger, tx)
			return s.replay(ctx, logger, op, existing, in)
		case !errors.Is(err, storage.ErrOrderNotFound):
			rollback(logger, tx)
			logger.Error("failed to look up idempotency key", slog.Any("error", err))
			return nil, false, fmt.Errorf("%s: failed to look up idempotency key: %w", op, err)
		}
	}

	product, err := s.productRepo.GetActiveProduct(ctx, tx)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Warn("no active product")
			return nil, false, fmt.Errorf("%s: %w", op, ErrNoActiveProduct)
		}
		logger.Error("failed to get active product", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: failed to get active product: %w", op, err)
	}

	if err := s.productRepo.ReserveStock(ctx, tx, product.ID, in.Quantity); err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrInsufficientStock) {
			logger.Warn("insufficient stock", slog.Int("stock", product.StockQuantity))
			return nil, false, fmt.Errorf("%s: %w", op, ErrOutOfStock)
		}
		logger.Error("failed to reserve stock", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: failed to reserve stock: %w", op, err)
	}

	// цена фиксируется на момент заказа
	order := &models.Order{
		ID:             uuid.New(),
		IdempotencyKey: in.IdempotencyKey,
		CustomerName:   in.CustomerName,
		CustomerPhone:  in.CustomerPhone,
		CustomerEmail:  in.CustomerEmail,
		Country:        in.Country,
		City:           in.City,
		Address:        in.Address,
		TotalAmount:    product.Price * int64(in.Quantity),
		Currency:       s.currency,
		Status:         models.OrderStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
	}
	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrDuplicateIdempotencyKey) {
			logger.Warn("concurrent order with the same idempotency key")
			return nil, false, fmt.Errorf("%s: %w", op, ErrDuplicateRequest)
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	item := models.NewOrderItem(order.ID, product.ID, in.Quantity, product.Price)
	if err := s.orderRepo.CreateOrderItem(ctx, tx, &item); err != nil {
		rollback(logger, tx)
		logger.Error("failed to create order item", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: failed to create order item: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	order.Items = []models.OrderItem{item}

	logger.Info("order placed",
		slog.String("order_id", order.ID.String()),
		slog.Int64("total_amount", order.TotalAmount),
	)
	s.notifier.OrderCreated(order)
	return order, true, nil
}

// replay отдаёт уже созданный заказ, если повтор пришёл с теми же данными формы
func (s *intakeService) replay(ctx context.Context, logger *slog.Logger, op string, existing *models.Order, in OrderInput) (*models.Order, bool, error) {
	logger = logger.With(slog.String("order_id", existing.ID.String()))

	items, err := s.orderRepo.GetOrderItems(ctx, existing.ID)
	if err != nil {
		logger.Error("failed to load order items", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: failed to load order items: %w", op, err)
	}
	existing.Items = items

	if !sameOrder(existing, in) {
		logger.Warn("idempotency key reused with a different order")
		return nil, false, fmt.Errorf("%s: %w", op, ErrIdempotencyReused)
	}
	logger.Info("order already placed for idempotency key")
	return existing, false, nil
}

func sameOrder(o *models.Order, in OrderInput) bool {
	quantity := 0
	for _, item := range o.Items {
		quantity += item.Quantity
	}
	return o.CustomerName == in.CustomerName &&
		o.CustomerPhone == in.CustomerPhone &&
		o.CustomerEmail == in.CustomerEmail &&
		o.Country == in.Country &&
		o.City == in.City &&
		o.Address == in.Address &&
		quantity == in.Quantity
}
