package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
)

// StatsStorage - агрегаты по заказам для админки
type StatsStorage interface {
	GetOrderStats(ctx context.Context) (*models.OrderStats, error)
}

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) StatsStorage {
	return &statsRepository{db: db}
}

func (r *statsRepository) GetOrderStats(ctx context.Context) (*models.OrderStats, error) {
	stats := &models.OrderStats{
		ByStatus:        make(map[models.OrderStatus]int),
		ByPaymentStatus: make(map[models.PaymentStatus]int),
	}

	rows, err := r.db.QueryContext(ctx, "SELECT status, payment_status, COUNT(*) FROM orders GROUP BY status, payment_status")
	if err != nil {
		return nil, fmt.Errorf("failed to query order counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, paymentStatus string
		var count int
		if err := rows.Scan(&status, &paymentStatus, &count); err != nil {
			return nil, fmt.Errorf("failed to scan order counts: %w", err)
		}
		st, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		ps, err := models.ParsePaymentStatus(paymentStatus)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[st] += count
		stats.ByPaymentStatus[ps] += count
		stats.TotalOrders += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// выручка и штуки по оплаченным и не отменённым заказам, отменённые оплаты отдельно
	query := `SELECT COALESCE(SUM(o.total_amount) FILTER (WHERE o.status <> 'cancelled'), 0),
	                 COALESCE(SUM(i.units) FILTER (WHERE o.status <> 'cancelled'), 0),
	                 COALESCE(SUM(o.total_amount) FILTER (WHERE o.status = 'cancelled'), 0)
	          FROM orders o
	          JOIN (SELECT order_id, SUM(quantity) AS units FROM order_items GROUP BY order_id) i ON i.order_id = o.id
	          WHERE o.payment_status = 'paid'`
	if err := r.db.QueryRowContext(ctx, query).Scan(&stats.PaidRevenue, &stats.UnitsSold, &stats.CancelledPaid); err != nil {
		return nil, fmt.Errorf("failed to query revenue: %w", err)
	}
	return stats, nil
}
