package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/service"
)

// StorefrontProductHandler обрабатывает GET /api/product
func StorefrontProductHandler(log *slog.Logger, products service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.StorefrontProductHandler"))

		product, err := products.GetStorefrontProduct(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}

func ListProductsHandler(log *slog.Logger, products service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.ListProductsHandler"))

		list, err := products.ListProducts(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, list)
	}
}

func GetProductHandler(log *slog.Logger, products service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.GetProductHandler"))

		id, ok := uuidParam(r, "id")
		if !ok {
			writeError(w, r, logger, http.StatusNotFound, "product_not_found")
			return
		}
		product, err := products.GetProduct(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}

func CreateProductHandler(log *slog.Logger, products service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.CreateProductHandler"))

		var req service.ProductInput
		if err := decodeJSON(w, r, &req, false); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, r, logger, http.StatusBadRequest, "invalid_request")
			return
		}
		product, err := products.CreateProduct(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, product)
	}
}

func UpdateProductHandler(log *slog.Logger, products service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.UpdateProductHandler"))

		id, ok := uuidParam(r, "id")
		if !ok {
			writeError(w, r, logger, http.StatusNotFound, "product_not_found")
			return
		}
		var req service.ProductInput
		if err := decodeJSON(w, r, &req, false); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, r, logger, http.StatusBadRequest, "invalid_request")
			return
		}
		product, err := products.UpdateProduct(r.Context(), id, req)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, product)
	}
}

func DeleteProductHandler(log *slog.Logger, products service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.DeleteProductHandler"))

		id, ok := uuidParam(r, "id")
		if !ok {
			writeError(w, r, logger, http.StatusNotFound, "product_not_found")
			return
		}
		if err := products.DeleteProduct(r.Context(), id); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
