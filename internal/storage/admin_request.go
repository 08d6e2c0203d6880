package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
)

var (
	ErrAdminRequestNotFound = errors.New("admin request not found")
	ErrAdminRequestExists   = errors.New("pending admin request already exists")
	ErrAdminRequestReviewed = errors.New("admin request already reviewed")
)

const adminRequestColumns = "id, user_id, email, status, requested_at, reviewed_by, reviewed_at, notes"

// AdminRequestStorage описывает методы для заявок на права администратора.
type AdminRequestStorage interface {
	CreateRequest(ctx context.Context, tx *sql.Tx, req *models.AdminRequest) error
	// GetPendingByUser ищет активную заявку пользователя внутри транзакции.
	GetPendingByUser(ctx context.Context, tx *sql.Tx, userID int64) (*models.AdminRequest, error)
	GetRequestByID(ctx context.Context, id uuid.UUID) (*models.AdminRequest, error)
	ListRequests(ctx context.Context, status *models.AdminRequestStatus) ([]*models.AdminRequest, error)
	// Review меняет статус только у заявки в pending.
	Review(ctx context.Context, tx *sql.Tx, id uuid.UUID, status models.AdminRequestStatus, reviewerID int64, notes string, at time.Time) (*models.AdminRequest, error)
}

type adminRequestRepository struct {
	db *sql.DB
}

func NewAdminRequestRepository(db *sql.DB) AdminRequestStorage {
	return &adminRequestRepository{db: db}
}

func scanAdminRequest(row rowScanner) (*models.AdminRequest, error) {
	req := &models.AdminRequest{}
	var status string
	if err := row.Scan(&req.ID, &req.UserID, &req.Email, &status, &req.RequestedAt, &req.ReviewedBy, &req.ReviewedAt, &req.Notes); err != nil {
		return nil, err
	}
	st, err := models.ParseAdminRequestStatus(status)
	if err != nil {
		return nil, err
	}
	req.Status = st
	return req, nil
}

func (r *adminRequestRepository) CreateRequest(ctx context.Context, tx *sql.Tx, req *models.AdminRequest) error {
	query := `INSERT INTO admin_requests (id, user_id, email, status)
	          VALUES ($1, $2, $3, $4)
	          RETURNING requested_at`
	err := tx.QueryRowContext(ctx, query, req.ID, req.UserID, req.Email, string(req.Status)).Scan(&req.RequestedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAdminRequestExists
		}
		return fmt.Errorf("failed to create admin request: %w", err)
	}
	return nil
}

func (r *adminRequestRepository) GetPendingByUser(ctx context.Context, tx *sql.Tx, userID int64) (*models.AdminRequest, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+adminRequestColumns+" FROM admin_requests WHERE user_id = $1 AND status = 'pending'",
		userID)
	req, err := scanAdminRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *adminRequestRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*models.AdminRequest, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+adminRequestColumns+" FROM admin_requests WHERE id = $1", id)
	req, err := scanAdminRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *adminRequestRepository) ListRequests(ctx context.Context, status *models.AdminRequestStatus) ([]*models.AdminRequest, error) {
	query := "SELECT " + adminRequestColumns + " FROM admin_requests"
	var args []any
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, string(*status))
	}
	query += " ORDER BY requested_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.AdminRequest
	for rows.Next() {
		req, err := scanAdminRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *adminRequestRepository) Review(ctx context.Context, tx *sql.Tx, id uuid.UUID, status models.AdminRequestStatus, reviewerID int64, notes string, at time.Time) (*models.AdminRequest, error) {
	query := `UPDATE admin_requests SET status = $2, reviewed_by = $3, reviewed_at = $4, notes = $5
	          WHERE id = $1 AND status = 'pending'
	          RETURNING ` + adminRequestColumns
	req, err := scanAdminRequest(tx.QueryRowContext(ctx, query, id, string(status), reviewerID, at, notes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminRequestReviewed
		}
		return nil, fmt.Errorf("failed to review admin request: %w", err)
	}
	return req, nil
}
