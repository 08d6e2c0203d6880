package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

var orderCols = []string{
	"id", "idempotency_key", "customer_name", "customer_phone", "customer_email",
	"country", "city", "address", "total_amount", "currency", "status", "payment_status",
	"shipping_company", "tracking_number", "seller_notes", "created_at", "updated_at", "shipped_at",
}

var productCols = []string{"id", "name", "description", "price", "stock_quantity", "is_active", "image_url", "created_at", "updated_at"}

var adminRequestCols = []string{"id", "user_id", "email", "status", "requested_at", "reviewed_by", "reviewed_at", "notes"}

// orderRow возвращает строку заказа Сары из примера: 2 x 71
func orderRow(id uuid.UUID, status, paymentStatus string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(orderCols).AddRow(
		id.String(), "", "Sara", "0501234567", "", "AE", "Dubai", "123 Main St",
		int64(142), "AED", status, paymentStatus, "", "", "", now, now, nil,
	)
}

func TestGetUserByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	userID := int64(1)

	rows := sqlmock.NewRows([]string{"id", "username", "pass_hash", "created_at"}).
		AddRow(userID, "test@example.com", []byte("hashed-password"), time.Now())
	mock.ExpectQuery("SELECT id, username, pass_hash, created_at FROM users WHERE id = \\$1").
		WithArgs(userID).WillReturnRows(rows)

	user, err := repo.GetUserByID(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, []byte("hashed-password"), user.PassHash)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	email := "nonexistent@example.com"

	rows := sqlmock.NewRows([]string{"id", "username", "pass_hash", "created_at"})
	query := regexp.QuoteMeta("SELECT id, username, pass_hash, created_at FROM users WHERE username = $1")
	mock.ExpectQuery(query).WithArgs(email).WillReturnRows(rows)

	user, err := repo.GetUserByEmail(context.Background(), email)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)")).
		WithArgs(int64(7), models.RoleAdmin).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasRole(context.Background(), 7, models.RoleAdmin)
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantRole_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT")).
		WithArgs(int64(3), models.RoleAdmin).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.GrantRole(context.Background(), tx, 3, models.RoleAdmin))

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	order := &models.Order{
		ID:            uuid.New(),
		CustomerName:  "Sara",
		CustomerPhone: "0501234567",
		Country:       "AE",
		City:          "Dubai",
		Address:       "123 Main St",
		TotalAmount:   142,
		Currency:      "AED",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	now := time.Now()

	// пустой ключ идемпотентности пишется как NULL
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(order.ID, nil, "Sara", "0501234567", "", "AE", "Dubai", "123 Main St", int64(142), "AED", "pending", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	err = repo.CreateOrder(ctx, tx, order)
	assert.NoError(t, err)
	assert.Equal(t, now, order.CreatedAt)

	item := models.NewOrderItem(order.ID, uuid.New(), 2, 71)
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(item.ID, order.ID, item.ProductID, 2, int64(71), int64(142)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.CreateOrderItem(ctx, tx, &item))

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_DuplicateIdempotencyKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pq.Error{Code: "23505"})

	err = repo.CreateOrder(context.Background(), tx, &models.Order{ID: uuid.New(), IdempotencyKey: "draft-1"})
	assert.ErrorIs(t, err, storage.ErrDuplicateIdempotencyKey)

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = \\$1").
		WithArgs(id).WillReturnRows(orderRow(id, "pending", "pending"))

	order, err := repo.GetOrderByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, id, order.ID)
	assert.Equal(t, int64(142), order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Nil(t, order.ShippedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = \\$1").
		WithArgs(id).WillReturnRows(sqlmock.NewRows(orderCols))

	order, err := repo.GetOrderByID(context.Background(), id)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_UnknownStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	id := uuid.New()

	// неизвестный статус из БД не должен пройти дальше слоя хранения
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id = \\$1").
		WithArgs(id).WillReturnRows(orderRow(id, "lost", "pending"))

	order, err := repo.GetOrderByID(context.Background(), id)
	assert.Error(t, err)
	assert.Nil(t, order)
}

func TestConfirmPayment_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders SET payment_status = 'paid', status = 'confirmed'") +
		"(.+)" + regexp.QuoteMeta("WHERE id = $1 AND payment_status = 'pending' AND status = 'pending'")).
		WithArgs(id).WillReturnRows(orderRow(id, "confirmed", "paid"))

	order, err := repo.ConfirmPayment(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPayment_AlreadyPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	id := uuid.New()

	mock.ExpectQuery("UPDATE orders SET payment_status = 'paid'").
		WithArgs(id).WillReturnRows(sqlmock.NewRows(orderCols))

	order, err := repo.ConfirmPayment(context.Background(), id)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, storage.ErrOrderStateConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkShipped_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	id := uuid.New()
	shippedAt := time.Now()

	now := time.Now()
	rows := sqlmock.NewRows(orderCols).AddRow(
		id.String(), "", "Sara", "0501234567", "", "AE", "Dubai", "123 Main St",
		int64(142), "AED", "shipped", "paid", "Aramex", "TRK-1", "fragile", now, now, shippedAt,
	)
	mock.ExpectQuery("UPDATE orders SET status = 'shipped'(.+)WHERE id = \\$1 AND payment_status = 'paid' AND status = 'confirmed'").
		WithArgs(id, "Aramex", "TRK-1", "fragile", sqlmock.AnyArg()).
		WillReturnRows(rows)

	order, err := repo.MarkShipped(context.Background(), id, "Aramex", "TRK-1", "fragile", shippedAt)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, order.Status)
	assert.Equal(t, "Aramex", order.ShippingCompany)
	assert.Equal(t, "TRK-1", order.TrackingNumber)
	if assert.NotNil(t, order.ShippedAt) {
		assert.True(t, shippedAt.Equal(*order.ShippedAt))
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrders_WithFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	id := uuid.New()
	status := models.OrderStatusConfirmed
	paid := models.PaymentStatusPaid

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND payment_status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs("confirmed", "paid", 50, 0).
		WillReturnRows(orderRow(id, "confirmed", "paid"))

	orders, err := repo.ListOrders(context.Background(), storage.OrderFilter{Status: &status, PaymentStatus: &paid})
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, id, orders[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveProduct_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE is_active = TRUE").
		WillReturnRows(sqlmock.NewRows(productCols).AddRow(id.String(), "Seven Green", "soap", int64(71), 10, true, "", now, now))

	product, err := repo.GetActiveProduct(context.Background(), tx)
	assert.NoError(t, err)
	assert.Equal(t, id, product.ID)
	assert.Equal(t, int64(71), product.Price)
	assert.Equal(t, 10, product.StockQuantity)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStorefrontProduct_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE is_active = TRUE").
		WillReturnRows(sqlmock.NewRows(productCols))

	product, err := repo.GetStorefrontProduct(context.Background())
	assert.Nil(t, product)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
}

func TestReserveStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	id := uuid.New()
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	query := regexp.QuoteMeta("UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW() WHERE id = $1 AND stock_quantity >= $2")
	mock.ExpectExec(query).WithArgs(id, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.ReserveStock(ctx, tx, id, 2))

	// остатка не хватило - условие не сработало
	mock.ExpectExec(query).WithArgs(id, 500).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.ReserveStock(ctx, tx, id, 500), storage.ErrInsufficientStock)

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct_InUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(id).WillReturnError(&pq.Error{Code: "23503"})

	assert.ErrorIs(t, repo.DeleteProduct(context.Background(), id), storage.ErrProductInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteProduct(context.Background(), id), storage.ErrProductNotFound)
}

func TestCreateAdminRequest_PendingExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewAdminRequestRepository(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	// частичный уникальный индекс по pending-заявкам
	mock.ExpectQuery("INSERT INTO admin_requests").WillReturnError(&pq.Error{Code: "23505"})

	err = repo.CreateRequest(context.Background(), tx, &models.AdminRequest{
		ID: uuid.New(), UserID: 1, Email: "a@example.com", Status: models.AdminRequestPending,
	})
	assert.ErrorIs(t, err, storage.ErrAdminRequestExists)

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewAdminRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewAdminRequestRepository(db)
	id := uuid.New()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	mock.ExpectQuery("UPDATE admin_requests SET status = \\$2(.+)WHERE id = \\$1 AND status = 'pending'").
		WithArgs(id, "approved", int64(9), sqlmock.AnyArg(), "ok").
		WillReturnRows(sqlmock.NewRows(adminRequestCols).AddRow(id.String(), int64(1), "a@example.com", "approved", now, int64(9), now, "ok"))

	req, err := repo.Review(ctx, tx, id, models.AdminRequestApproved, 9, "ok", now)
	assert.NoError(t, err)
	assert.Equal(t, models.AdminRequestApproved, req.Status)
	if assert.NotNil(t, req.ReviewedBy) {
		assert.Equal(t, int64(9), *req.ReviewedBy)
	}

	// повторное рассмотрение уже не находит pending-строку
	mock.ExpectQuery("UPDATE admin_requests").WillReturnRows(sqlmock.NewRows(adminRequestCols))
	_, err = repo.Review(ctx, tx, id, models.AdminRequestRejected, 9, "", now)
	assert.ErrorIs(t, err, storage.ErrAdminRequestReviewed)

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewStatsRepository(db)

	mock.ExpectQuery("SELECT status, payment_status, COUNT\\(\\*\\) FROM orders GROUP BY status, payment_status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "payment_status", "count"}).
			AddRow("pending", "pending", 3).
			AddRow("confirmed", "paid", 2).
			AddRow("shipped", "paid", 1).
			AddRow("cancelled", "paid", 1))
	// отменённый после оплаты заказ не входит в выручку
	mock.ExpectQuery("SUM\\(o.total_amount\\) FILTER \\(WHERE o.status <> 'cancelled'\\).*" +
		"SUM\\(i.units\\) FILTER \\(WHERE o.status <> 'cancelled'\\).*" +
		"SUM\\(o.total_amount\\) FILTER \\(WHERE o.status = 'cancelled'\\).*WHERE o.payment_status = 'paid'").
		WillReturnRows(sqlmock.NewRows([]string{"revenue", "units", "cancelled"}).AddRow(int64(426), 6, int64(142)))

	stats, err := repo.GetOrderStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 7, stats.TotalOrders)
	assert.Equal(t, 4, stats.ByPaymentStatus[models.PaymentStatusPaid])
	assert.Equal(t, 1, stats.ByStatus[models.OrderStatusCancelled])
	assert.Equal(t, 3, stats.ByStatus[models.OrderStatusPending])
	assert.Equal(t, int64(426), stats.PaidRevenue)
	assert.Equal(t, 6, stats.UnitsSold)
	assert.Equal(t, int64(142), stats.CancelledPaid)

	assert.NoError(t, mock.ExpectationsWereMet())
}
