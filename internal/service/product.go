package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

type ProductInput struct {
	Name          string `json:"name" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=5000"`
	Price         int64  `json:"price" validate:"gt=0"`
	StockQuantity int    `json:"stockQuantity" validate:"gte=0"`
	IsActive      bool   `json:"isActive"`
	ImageURL      string `json:"imageUrl" validate:"omitempty,url"`
}

type ProductService interface {
	// GetStorefrontProduct - единственный активный товар витрины
	GetStorefrontProduct(ctx context.Context) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage) ProductService {
	return &productService{log: log, productRepo: productRepo}
}

func (s *productService) GetStorefrontProduct(ctx context.Context) (*models.Product, error) {
	const op = "service.ProductService.GetStorefrontProduct"

	product, err := s.productRepo.GetStorefrontProduct(ctx)
	if err != nil {
		return nil, s.mapError(op, err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "service.ProductService.ListProducts"

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return nil, s.mapError(op, err)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	const op = "service.ProductService.GetProduct"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, s.mapError(op, err)
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	const op = "service.ProductService.CreateProduct"

	trim(&in.Name, &in.Description, &in.ImageURL)
	if err := Validate(in); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:            uuid.New(),
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		IsActive:      in.IsActive,
		ImageURL:      in.ImageURL,
	}
	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		return nil, s.mapError(op, err)
	}

	s.log.Info("product created", slog.String("op", op), slog.String("product_id", product.ID.String()))
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	const op = "service.ProductService.UpdateProduct"

	trim(&in.Name, &in.Description, &in.ImageURL)
	if err := Validate(in); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:            id,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		IsActive:      in.IsActive,
		ImageURL:      in.ImageURL,
	}
	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		return nil, s.mapError(op, err)
	}

	s.log.Info("product updated", slog.String("op", op), slog.String("product_id", id.String()))
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	const op = "service.ProductService.DeleteProduct"

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		return s.mapError(op, err)
	}

	s.log.Info("product deleted", slog.String("op", op), slog.String("product_id", id.String()))
	return nil
}

func (s *productService) mapError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrProductNotFound):
		return fmt.Errorf("%s: %w", op, ErrProductNotFound)
	case errors.Is(err, storage.ErrProductInUse):
		return fmt.Errorf("%s: %w", op, ErrProductInUse)
	}
	s.log.Error("product storage failed", slog.String("op", op), slog.Any("error", err))
	return fmt.Errorf("%s: %w", op, err)
}
