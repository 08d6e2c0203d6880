package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/service"
)

// AuthRequest представляет структуру запроса для аутентификации с тегами валидации
type AuthRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthResponse представляет структуру ответа с JWT-токеном
type AuthResponse struct {
	Token string `json:"token"`
}

// AuthHandler – HTTP-обработчик для аутентификации, принимает логгер и экземпляр AuthService
func AuthHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, r, logger, http.StatusBadRequest, "invalid_request")
			return
		}

		if err := service.Validate(req); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		token, err := authService.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, AuthResponse{Token: token})
	}
}
