package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/service"
)

type PaymentSessionRequest struct {
	OrderID  string      `json:"orderId"`
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

type PaymentSessionResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

type ConfirmPaymentRequest struct {
	OrderID string `json:"orderId"`
}

// CreatePaymentSessionHandler обрабатывает POST /api/payments/session
func CreatePaymentSessionHandler(log *slog.Logger, payments service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreatePaymentSessionHandler"
		logger := log.With(slog.String("op", op))

		var req PaymentSessionRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, r, logger, http.StatusBadRequest, "invalid_request")
			return
		}

		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			writeValidationError(w, r, logger, &service.ValidationError{Field: "orderId", Code: "invalid"})
			return
		}
		amount, ok := wholeNumber(req.Amount)
		if !ok {
			writeValidationError(w, r, logger, &service.ValidationError{Field: "amount", Code: "invalid"})
			return
		}

		url, err := payments.CreateSession(r.Context(), service.SessionInput{
			OrderID:  orderID,
			Amount:   amount,
			Currency: req.Currency,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, PaymentSessionResponse{PaymentURL: url})
	}
}

// ConfirmPaymentHandler обрабатывает POST /api/payments/confirm {orderId}
// и GET /api/payments/confirm?order_id= после возврата со страницы оплаты.
func ConfirmPaymentHandler(log *slog.Logger, payments service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ConfirmPaymentHandler"
		logger := log.With(slog.String("op", op))

		rawID := r.URL.Query().Get("order_id")
		if r.Method == http.MethodPost {
			var req ConfirmPaymentRequest
			if err := decodeJSON(w, r, &req, false); err != nil {
				logger.Error("invalid request: decoding error", slog.Any("error", err))
				writeError(w, r, logger, http.StatusBadRequest, "invalid_request")
				return
			}
			rawID = req.OrderID
		}

		orderID, err := uuid.Parse(rawID)
		if err != nil {
			writeValidationError(w, r, logger, &service.ValidationError{Field: "orderId", Code: "invalid"})
			return
		}

		order, err := payments.ConfirmPayment(r.Context(), orderID)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}
