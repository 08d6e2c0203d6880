package jwtmiddleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	security "github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/jwt-new"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/lib/i18n"
)

type contextKey string

const UserIDKey contextKey = "userID"

// NewJWTMiddleware создаёт middleware для проверки JWT, секрет берётся из переменной окружения.
func NewJWTMiddleware() func(http.Handler) http.Handler {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization (формат: "Bearer <token>")
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				deny(w, r, http.StatusUnauthorized, "unauthorized", "missing token")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				deny(w, r, http.StatusUnauthorized, "unauthorized", "invalid token format")
				return
			}

			userID, err := security.ParseUserID(parts[1], secret)
			if err != nil {
				deny(w, r, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleChecker - источник ролей, обычно storage.UserStorage
type RoleChecker interface {
	HasRole(ctx context.Context, userID int64, role string) (bool, error)
}

// RequireRole пропускает только пользователей с ролью. Ставится после NewJWTMiddleware.
// Роль читается из базы на каждый запрос, без кэша.
func RequireRole(log *slog.Logger, checker RoleChecker, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "jwtmiddleware.RequireRole"

			userID, ok := FromContext(r.Context())
			if !ok {
				deny(w, r, http.StatusUnauthorized, "unauthorized", "missing user")
				return
			}

			has, err := checker.HasRole(r.Context(), userID, role)
			if err != nil {
				log.Error("failed to check role", slog.String("op", op), slog.Int64("userID", userID), slog.Any("error", err))
				deny(w, r, http.StatusInternalServerError, "internal", "")
				return
			}
			if !has {
				log.Warn("access denied", slog.String("op", op), slog.Int64("userID", userID), slog.String("role", role))
				deny(w, r, http.StatusForbidden, "forbidden", "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// FromContext извлекает userID из контекста.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

func deny(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	body := map[string]string{
		"error":   code,
		"message": i18n.Message(i18n.FromContext(r.Context()), code),
	}
	if detail != "" {
		body["detail"] = detail
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
