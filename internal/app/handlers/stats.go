package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/service"
)

// StatsHandler обрабатывает GET /api/admin/stats
func StatsHandler(log *slog.Logger, stats service.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.StatsHandler"))

		res, err := stats.GetStats(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, res)
	}
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler обрабатывает GET /healthz
func HealthHandler(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.HealthHandler"))

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Error("database ping failed", slog.Any("error", err))
			writeJSON(w, logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	}
}
