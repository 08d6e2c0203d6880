package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/lib/i18n"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/service"
)

const maxBodyBytes = 1 << 20

// ErrorResponse - тело любого ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, code string) {
	writeJSON(w, logger, status, ErrorResponse{
		Error:   code,
		Message: i18n.Message(i18n.FromContext(r.Context()), code),
	})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, verr *service.ValidationError) {
	writeJSON(w, logger, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Field:   verr.Field,
		Message: i18n.FieldMessage(i18n.FromContext(r.Context()), verr.Field, verr.Code),
	})
}

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{service.ErrNoActiveProduct, http.StatusNotFound, "product_not_found"},
	{service.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{service.ErrProductInUse, http.StatusConflict, "product_in_use"},
	{service.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{service.ErrOutOfStock, http.StatusConflict, "out_of_stock"},
	{service.ErrDuplicateRequest, http.StatusConflict, "duplicate_request"},
	{service.ErrIdempotencyReused, http.StatusConflict, "idempotency_conflict"},
	{service.ErrPaymentFailed, http.StatusBadGateway, "payment_failed"},
	{service.ErrAdminRequestExists, http.StatusConflict, "admin_request_exists"},
	{service.ErrAlreadyAdmin, http.StatusConflict, "already_admin"},
	{service.ErrAdminRequestNotFound, http.StatusNotFound, "request_not_found"},
	{service.ErrAdminRequestReviewed, http.StatusConflict, "request_reviewed"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		logger.Info("validation failed", slog.String("field", verr.Field), slog.String("rule", verr.Code))
		writeValidationError(w, r, logger, verr)
		return
	}

	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			logger.Info("request rejected", slog.String("code", e.code), slog.Any("error", err))
			writeError(w, r, logger, e.status, e.code)
			return
		}
	}

	logger.Error("request failed", slog.Any("error", err))
	writeError(w, r, logger, http.StatusInternalServerError, "internal")
}

// decodeJSON читает тело не больше maxBodyBytes. allowEmpty разрешает пустое тело.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// wholeNumber принимает только целые числа из JSON ("2", 2), но не 2.5
func wholeNumber(n json.Number) (int64, bool) {
	v, err := strconv.ParseInt(string(n), 10, 64)
	return v, err == nil
}
