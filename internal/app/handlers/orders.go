package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/service"
)

// CreateOrderRequest - форма витрины. Quantity читается как число JSON, чтобы отличить 2.5 от 2.
type CreateOrderRequest struct {
	CustomerName   string      `json:"customerName"`
	CustomerPhone  string      `json:"customerPhone"`
	CustomerEmail  string      `json:"customerEmail"`
	Country        string      `json:"country"`
	City           string      `json:"city"`
	Address        string      `json:"address"`
	Quantity       json.Number `json:"quantity"`
	IdempotencyKey string      `json:"idempotencyKey"`
}

type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

// CreateOrderHandler обрабатывает POST /api/orders
func CreateOrderHandler(log *slog.Logger, intake service.IntakeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		var req CreateOrderRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, r, logger, http.StatusBadRequest, "invalid_request")
			return
		}

		// дробное или нечисловое количество превращается в 0 и не проходит проверку
		qty, _ := wholeNumber(req.Quantity)
		in := service.OrderInput{
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			CustomerEmail:  req.CustomerEmail,
			Country:        req.Country,
			City:           req.City,
			Address:        req.Address,
			Quantity:       int(qty),
			IdempotencyKey: req.IdempotencyKey,
		}

		order, created, err := intake.PlaceOrder(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		status := http.StatusCreated
		if !created {
			status = http.StatusOK
		}
		writeJSON(w, logger, status, CreateOrderResponse{OrderID: order.ID.String()})
	}
}

// GetOrderHandler обрабатывает GET /api/orders/{id}, страница успешной оплаты
func GetOrderHandler(log *slog.Logger, orders service.OrderAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		id, ok := uuidParam(r, "id")
		if !ok {
			writeError(w, r, logger, http.StatusNotFound, "order_not_found")
			return
		}

		order, err := orders.GetOrder(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}
