package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/service"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListOrdersHandler обрабатывает GET /api/admin/orders?status=&payment_status=&limit=&offset=
func ListOrdersHandler(log *slog.Logger, orders service.OrderAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		var filter storage.OrderFilter
		if v := q.Get("status"); v != "" {
			st, err := models.ParseOrderStatus(v)
			if err != nil {
				writeValidationError(w, r, logger, &service.ValidationError{Field: "status", Code: "invalid"})
				return
			}
			filter.Status = &st
		}
		if v := q.Get("payment_status"); v != "" {
			ps, err := models.ParsePaymentStatus(v)
			if err != nil {
				writeValidationError(w, r, logger, &service.ValidationError{Field: "payment_status", Code: "invalid"})
				return
			}
			filter.PaymentStatus = &ps
		}
		var ok bool
		if filter.Limit, ok = intQuery(q.Get("limit")); !ok {
			writeValidationError(w, r, logger, &service.ValidationError{Field: "limit", Code: "invalid"})
			return
		}
		if filter.Offset, ok = intQuery(q.Get("offset")); !ok {
			writeValidationError(w, r, logger, &service.ValidationError{Field: "offset", Code: "invalid"})
			return
		}

		list, err := orders.ListOrders(r.Context(), filter)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, list)
	}
}

// ShipOrderHandler обрабатывает POST /api/admin/orders/{id}/ship
func ShipOrderHandler(log *slog.Logger, orders service.OrderAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ShipOrderHandler"
		logger := log.With(slog.String("op", op))

		id, ok := uuidParam(r, "id")
		if !ok {
			writeError(w, r, logger, http.StatusNotFound, "order_not_found")
			return
		}

		var req service.ShipInput
		if err := decodeJSON(w, r, &req, false); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, r, logger, http.StatusBadRequest, "invalid_request")
			return
		}

		res, err := orders.Ship(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		if res.Notification == service.NotificationFailed {
			logger.Warn("order shipped but customer was not notified", slog.String("error", res.NotificationError))
		}
		writeJSON(w, logger, http.StatusOK, res)
	}
}

// UpdateOrderStatusHandler обрабатывает POST /api/admin/orders/{id}/status
func UpdateOrderStatusHandler(log *slog.Logger, orders service.OrderAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderStatusHandler"
		logger := log.With(slog.String("op", op))

		id, ok := uuidParam(r, "id")
		if !ok {
			writeError(w, r, logger, http.StatusNotFound, "order_not_found")
			return
		}

		var req UpdateStatusRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, r, logger, http.StatusBadRequest, "invalid_request")
			return
		}
		to, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			writeValidationError(w, r, logger, &service.ValidationError{Field: "status", Code: "invalid"})
			return
		}

		order, err := orders.UpdateStatus(r.Context(), id, to)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}

// MarkPaymentFailedHandler обрабатывает POST /api/admin/orders/{id}/payment-failed
func MarkPaymentFailedHandler(log *slog.Logger, orders service.OrderAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MarkPaymentFailedHandler"
		logger := log.With(slog.String("op", op))

		id, ok := uuidParam(r, "id")
		if !ok {
			writeError(w, r, logger, http.StatusNotFound, "order_not_found")
			return
		}

		order, err := orders.MarkPaymentFailed(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}

// пустое значение - 0, отрицательные не принимаются
func intQuery(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
