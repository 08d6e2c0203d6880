package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

	// ErrOrderStateConflict - условное обновление не нашло строку в ожидаемом состоянии
	ErrOrderStateConflict = errors.New("order is not in the expected state")
)

const orderColumns = `id, COALESCE(idempotency_key, ''), customer_name, customer_phone, customer_email,
	country, city, address, total_amount, currency, status, payment_status,
	shipping_company, tracking_number, seller_notes, created_at, updated_at, shipped_at`

// OrderFilter - фильтр списка заказов в админке
type OrderFilter struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	Limit         int
	Offset        int
}

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет заказ в таблицу orders в рамках транзакции.
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// CreateOrderItem вставляет позицию заказа в той же транзакции.
	CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	GetOrderByIdempotencyKey(ctx context.Context, tx *sql.Tx, key string) (*models.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, error)
	// ConfirmPayment переводит pending/pending в confirmed/paid одним условным UPDATE.
	ConfirmPayment(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// MarkShipped допускается только для confirmed/paid.
	MarkShipped(ctx context.Context, id uuid.UUID, company, tracking, notes string, shippedAt time.Time) (*models.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, from, to models.OrderStatus) (*models.Order, error)
	MarkPaymentFailed(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// orderRepository - конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanOrder читает строку и проверяет статусы на границе с БД
func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var status, paymentStatus string
	if err := row.Scan(
		&order.ID, &order.IdempotencyKey, &order.CustomerName, &order.CustomerPhone, &order.CustomerEmail,
		&order.Country, &order.City, &order.Address, &order.TotalAmount, &order.Currency, &status, &paymentStatus,
		&order.ShippingCompany, &order.TrackingNumber, &order.SellerNotes, &order.CreatedAt, &order.UpdatedAt, &order.ShippedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if order.Status, err = models.ParseOrderStatus(status); err != nil {
		return nil, err
	}
	if order.PaymentStatus, err = models.ParsePaymentStatus(paymentStatus); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	var key any
	if order.IdempotencyKey != "" {
		key = order.IdempotencyKey
	}

	query := `INSERT INTO orders (id, idempotency_key, customer_name, customer_phone, customer_email,
	          country, city, address, total_amount, currency, status, payment_status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING created_at, updated_at`
	err := tx.QueryRowContext(ctx, query,
		order.ID, key, order.CustomerName, order.CustomerPhone, order.CustomerEmail,
		order.Country, order.City, order.Address, order.TotalAmount, order.Currency,
		string(order.Status), string(order.PaymentStatus),
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := tx.ExecContext(ctx, query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrderByIdempotencyKey(ctx context.Context, tx *sql.Tx, key string) (*models.Order, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE idempotency_key = $1", key)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `SELECT id, order_id, product_id, quantity, unit_price, total_price
	          FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListOrders возвращает заказы по фильтру, новые первыми
func (r *orderRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PaymentStatus != nil {
		args = append(args, string(*filter.PaymentStatus))
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}

	query := "SELECT " + orderColumns + " FROM orders"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ConfirmPayment(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `UPDATE orders SET payment_status = 'paid', status = 'confirmed', updated_at = NOW()
	          WHERE id = $1 AND payment_status = 'pending' AND status = 'pending'
	          RETURNING ` + orderColumns
	return r.conditionalUpdate(r.db.QueryRowContext(ctx, query, id))
}

func (r *orderRepository) MarkShipped(ctx context.Context, id uuid.UUID, company, tracking, notes string, shippedAt time.Time) (*models.Order, error) {
	query := `UPDATE orders SET status = 'shipped', shipping_company = $2, tracking_number = $3,
	          seller_notes = $4, shipped_at = $5, updated_at = NOW()
	          WHERE id = $1 AND payment_status = 'paid' AND status = 'confirmed'
	          RETURNING ` + orderColumns
	return r.conditionalUpdate(r.db.QueryRowContext(ctx, query, id, company, tracking, notes, shippedAt))
}

func (r *orderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, from, to models.OrderStatus) (*models.Order, error) {
	query := `UPDATE orders SET status = $3, updated_at = NOW()
	          WHERE id = $1 AND status = $2
	          RETURNING ` + orderColumns
	return r.conditionalUpdate(tx.QueryRowContext(ctx, query, id, string(from), string(to)))
}

func (r *orderRepository) MarkPaymentFailed(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `UPDATE orders SET payment_status = 'failed', updated_at = NOW()
	          WHERE id = $1 AND payment_status = 'pending'
	          RETURNING ` + orderColumns
	return r.conditionalUpdate(r.db.QueryRowContext(ctx, query, id))
}

// пустой RETURNING значит, что строка не подошла под условие
func (r *orderRepository) conditionalUpdate(row *sql.Row) (*models.Order, error) {
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderStateConflict
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}
