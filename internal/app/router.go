package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/app/handlers"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/config"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/jwt-new/jwtmiddleware"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/lib/i18n"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/lib/logger/handlers/urllog"
)

// NewRouter собирает маршруты. Требует JWT_SECRET в окружении.
func NewRouter(log *slog.Logger, svc Services, roles jwtmiddleware.RoleChecker, db handlers.Pinger, corsCfg config.CORSConfig) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins: corsCfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept-Language"},
		ExposedHeaders: []string{"Content-Language"},
		MaxAge:         300,
	}).Handler)
	router.Use(i18n.Middleware)

	router.Get("/healthz", handlers.HealthHandler(log, db))

	// витрина, без авторизации
	router.Post("/api/auth", handlers.AuthHandler(log, svc.Auth))
	router.Get("/api/product", handlers.StorefrontProductHandler(log, svc.Products))
	router.Post("/api/orders", handlers.CreateOrderHandler(log, svc.Intake))
	router.Get("/api/orders/{id}", handlers.GetOrderHandler(log, svc.Orders))
	router.Post("/api/payments/session", handlers.CreatePaymentSessionHandler(log, svc.Payments))
	router.Get("/api/payments/confirm", handlers.ConfirmPaymentHandler(log, svc.Payments))
	router.Post("/api/payments/confirm", handlers.ConfirmPaymentHandler(log, svc.Payments))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware())

		// заявка на права администратора от любого вошедшего пользователя
		r.Post("/api/admin-requests", handlers.CreateAdminRequestHandler(log, svc.AdminRequests))

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(jwtmiddleware.RequireRole(log, roles, models.RoleAdmin))

			r.Get("/orders", handlers.ListOrdersHandler(log, svc.Orders))
			r.Get("/orders/{id}", handlers.GetOrderHandler(log, svc.Orders))
			r.Post("/orders/{id}/ship", handlers.ShipOrderHandler(log, svc.Orders))
			r.Post("/orders/{id}/status", handlers.UpdateOrderStatusHandler(log, svc.Orders))
			r.Post("/orders/{id}/payment-failed", handlers.MarkPaymentFailedHandler(log, svc.Orders))

			r.Get("/products", handlers.ListProductsHandler(log, svc.Products))
			r.Post("/products", handlers.CreateProductHandler(log, svc.Products))
			r.Get("/products/{id}", handlers.GetProductHandler(log, svc.Products))
			r.Put("/products/{id}", handlers.UpdateProductHandler(log, svc.Products))
			r.Delete("/products/{id}", handlers.DeleteProductHandler(log, svc.Products))

			r.Get("/admin-requests", handlers.ListAdminRequestsHandler(log, svc.AdminRequests))
			r.Post("/admin-requests/{id}/approve", handlers.ReviewAdminRequestHandler(log, svc.AdminRequests, models.AdminRequestApproved))
			r.Post("/admin-requests/{id}/reject", handlers.ReviewAdminRequestHandler(log, svc.AdminRequests, models.AdminRequestRejected))

			r.Get("/stats", handlers.StatsHandler(log, svc.Stats))
		})
	})

	return router
}
