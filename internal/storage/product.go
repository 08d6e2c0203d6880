package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductInUse      = errors.New("product is referenced by orders")
)

const productColumns = "id, name, description, price, stock_quantity, is_active, image_url, created_at, updated_at"

// ProductStorage описывает методы для работы с каталогом.
type ProductStorage interface {
	// GetActiveProduct возвращает единственный активный товар витрины.
	GetActiveProduct(ctx context.Context, tx *sql.Tx) (*models.Product, error)
	GetStorefrontProduct(ctx context.Context) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// ReserveStock списывает остаток, только если его хватает.
	ReserveStock(ctx context.Context, tx *sql.Tx, id uuid.UUID, quantity int) error
	ReleaseStock(ctx context.Context, tx *sql.Tx, id uuid.UUID, quantity int) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий товаров.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.IsActive, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

const activeProductQuery = "SELECT " + productColumns + " FROM products WHERE is_active = TRUE ORDER BY created_at LIMIT 1"

func (r *productRepository) GetActiveProduct(ctx context.Context, tx *sql.Tx) (*models.Product, error) {
	return scanProduct(tx.QueryRowContext(ctx, activeProductQuery))
}

func (r *productRepository) GetStorefrontProduct(ctx context.Context) (*models.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, activeProductQuery))
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `INSERT INTO products (id, name, description, price, stock_quantity, is_active, image_url)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.IsActive, p.ImageURL).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `UPDATE products SET name = $2, description = $3, price = $4, stock_quantity = $5,
	          is_active = $6, image_url = $7, updated_at = NOW()
	          WHERE id = $1
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.IsActive, p.ImageURL).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return ErrProductInUse
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) ReserveStock(ctx context.Context, tx *sql.Tx, id uuid.UUID, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW() WHERE id = $1 AND stock_quantity >= $2",
		id, quantity)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *productRepository) ReleaseStock(ctx context.Context, tx *sql.Tx, id uuid.UUID, quantity int) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = NOW() WHERE id = $1",
		id, quantity)
	if err != nil {
		return fmt.Errorf("failed to release stock: %w", err)
	}
	return nil
}
