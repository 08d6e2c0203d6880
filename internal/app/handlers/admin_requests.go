package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/jwt-new/jwtmiddleware"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/service"
)

type ReviewRequest struct {
	Notes string `json:"notes"`
}

// CreateAdminRequestHandler обрабатывает POST /api/admin-requests
func CreateAdminRequestHandler(log *slog.Logger, requests service.AdminRequestService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateAdminRequestHandler"
		logger := log.With(slog.String("op", op))

		// Извлекаем userID из контекста (установленный JWT middleware)
		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, r, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		req, err := requests.Request(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, req)
	}
}

// ListAdminRequestsHandler обрабатывает GET /api/admin/admin-requests?status=
func ListAdminRequestsHandler(log *slog.Logger, requests service.AdminRequestService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListAdminRequestsHandler"
		logger := log.With(slog.String("op", op))

		var status *models.AdminRequestStatus
		if v := r.URL.Query().Get("status"); v != "" {
			st, err := models.ParseAdminRequestStatus(v)
			if err != nil {
				writeValidationError(w, r, logger, &service.ValidationError{Field: "status", Code: "invalid"})
				return
			}
			status = &st
		}

		list, err := requests.List(r.Context(), status)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, list)
	}
}

// ReviewAdminRequestHandler обрабатывает approve и reject: decision задаётся при регистрации маршрута
func ReviewAdminRequestHandler(log *slog.Logger, requests service.AdminRequestService, decision models.AdminRequestStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ReviewAdminRequestHandler"
		logger := log.With(slog.String("op", op), slog.String("decision", string(decision)))

		reviewerID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, r, logger, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, ok := uuidParam(r, "id")
		if !ok {
			writeError(w, r, logger, http.StatusNotFound, "request_not_found")
			return
		}

		// тело необязательно
		var body ReviewRequest
		if err := decodeJSON(w, r, &body, true); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, r, logger, http.StatusBadRequest, "invalid_request")
			return
		}

		review := requests.Reject
		if decision == models.AdminRequestApproved {
			review = requests.Approve
		}
		req, err := review(r.Context(), id, reviewerID, body.Notes)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, req)
	}
}
