package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/payment"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

type SessionInput struct {
	OrderID  uuid.UUID
	Amount   int64
	Currency string
}

type PaymentService interface {
	// CreateSession возвращает ссылку на страницу оплаты. Заказ не меняется.
	CreateSession(ctx context.Context, in SessionInput) (string, error)
	// ConfirmPayment переводит заказ в paid/confirmed. Повторный вызов для оплаченного заказа
	// возвращает текущее состояние без второго письма.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type paymentService struct {
	log           *slog.Logger
	orderRepo     storage.OrderStorage
	gateway       payment.Gateway
	notifier      Notifier
	storefrontURL string
	storeName     string
}

func NewPaymentService(log *slog.Logger, orderRepo storage.OrderStorage, gateway payment.Gateway, notifier Notifier, storefrontURL, storeName string) PaymentService {
	return &paymentService{
		log:           log,
		orderRepo:     orderRepo,
		gateway:       gateway,
		notifier:      notifier,
		storefrontURL: strings.TrimRight(storefrontURL, "/"),
		storeName:     storeName,
	}
}

func (s *paymentService) CreateSession(ctx context.Context, in SessionInput) (string, error) {
	const op = "service.PaymentService.CreateSession"
	logger := s.log.With(slog.String("op", op), slog.String("order_id", in.OrderID.String()))

	order, err := s.orderRepo.GetOrderByID(ctx, in.OrderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Warn("order not found")
			return "", fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	if order.Status != models.OrderStatusPending || order.PaymentStatus != models.PaymentStatusPending {
		logger.Warn("order is not awaiting payment",
			slog.String("status", string(order.Status)),
			slog.String("payment_status", string(order.PaymentStatus)),
		)
		return "", fmt.Errorf("%s: %w", op, ErrInvalidTransition)
	}
	// сумма и валюта с клиента должны совпасть с сохранённым заказом
	if in.Amount != order.TotalAmount {
		return "", &ValidationError{Field: "amount", Code: "mismatch"}
	}
	if !strings.EqualFold(strings.TrimSpace(in.Currency), order.Currency) {
		return "", &ValidationError{Field: "currency", Code: "mismatch"}
	}

	sess, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		OrderID:     order.ID,
		Amount:      order.TotalAmount,
		Currency:    order.Currency,
		Description: fmt.Sprintf("%s #%s", s.storeName, order.ID.String()[:8]),
		SuccessURL:  s.storefrontURL + "/payment-success?order_id=" + order.ID.String(),
		CancelURL:   s.storefrontURL + "/order",
		FailureURL:  s.storefrontURL + "/order",
	})
	if err != nil {
		logger.Error("failed to create payment session", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w: %v", op, ErrPaymentFailed, err)
	}

	logger.Info("payment session created", slog.String("session_id", sess.ID))
	return sess.URL, nil
}

func (s *paymentService) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	const op = "service.PaymentService.ConfirmPayment"
	logger := s.log.With(slog.String("op", op), slog.String("order_id", orderID.String()))

	order, err := s.orderRepo.ConfirmPayment(ctx, orderID)
	if err == nil {
		logger.Info("payment confirmed")
		s.attachItems(ctx, logger, order)
		s.notifier.PaymentConfirmed(order)
		return order, nil
	}
	if !errors.Is(err, storage.ErrOrderStateConflict) {
		logger.Error("failed to confirm payment", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to confirm payment: %w", op, err)
	}

	// строка не обновилась: либо заказа нет, либо он уже не pending
	current, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Warn("order not found")
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}
	if current.PaymentStatus == models.PaymentStatusPaid {
		logger.Info("payment already confirmed")
		return current, nil
	}

	logger.Warn("order cannot be confirmed",
		slog.String("status", string(current.Status)),
		slog.String("payment_status", string(current.PaymentStatus)),
	)
	return nil, fmt.Errorf("%s: %w", op, ErrInvalidTransition)
}

// attachItems нужен только для письма, ошибка не мешает подтверждению
func (s *paymentService) attachItems(ctx context.Context, logger *slog.Logger, order *models.Order) {
	items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
	if err != nil {
		logger.Warn("failed to load order items", slog.Any("error", err))
		return
	}
	order.Items = items
}
