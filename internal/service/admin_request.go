package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/storage"
)

type AdminRequestService interface {
	// Request подаёт заявку от имени пользователя; одна активная заявка на пользователя
	Request(ctx context.Context, userID int64) (*models.AdminRequest, error)
	List(ctx context.Context, status *models.AdminRequestStatus) ([]*models.AdminRequest, error)
	Approve(ctx context.Context, id uuid.UUID, reviewerID int64, notes string) (*models.AdminRequest, error)
	Reject(ctx context.Context, id uuid.UUID, reviewerID int64, notes string) (*models.AdminRequest, error)
}

type adminRequestService struct {
	log         *slog.Logger
	db          *sql.DB
	userRepo    storage.UserStorage
	requestRepo storage.AdminRequestStorage
	now         func() time.Time
}

func NewAdminRequestService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, requestRepo storage.AdminRequestStorage) AdminRequestService {
	return &adminRequestService{
		log:         log,
		db:          db,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		now:         time.Now,
	}
}

func (s *adminRequestService) Request(ctx context.Context, userID int64) (*models.AdminRequest, error) {
	const op = "service.AdminRequestService.Request"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	isAdmin, err := s.userRepo.HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		logger.Error("failed to check role", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to check role: %w", op, err)
	}
	if isAdmin {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyAdmin)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	_, err = s.requestRepo.GetPendingByUser(ctx, tx, userID)
	switch {
	case err == nil:
		rollback(logger, tx)
		logger.Warn("pending request already exists")
		return nil, fmt.Errorf("%s: %w", op, ErrAdminRequestExists)
	case !errors.Is(err, storage.ErrAdminRequestNotFound):
		rollback(logger, tx)
		logger.Error("failed to check pending request", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to check pending request: %w", op, err)
	}

	req := &models.AdminRequest{
		ID:          uuid.New(),
		UserID:      userID,
		Email:       user.Email,
		Status:      models.AdminRequestPending,
		RequestedAt: s.now().UTC(),
	}
	if err := s.requestRepo.CreateRequest(ctx, tx, req); err != nil {
		rollback(logger, tx)
		// уникальный индекс ловит параллельную заявку
		if errors.Is(err, storage.ErrAdminRequestExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrAdminRequestExists)
		}
		logger.Error("failed to create request", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("admin request created", slog.String("request_id", req.ID.String()))
	return req, nil
}

func (s *adminRequestService) List(ctx context.Context, status *models.AdminRequestStatus) ([]*models.AdminRequest, error) {
	const op = "service.AdminRequestService.List"

	reqs, err := s.requestRepo.ListRequests(ctx, status)
	if err != nil {
		s.log.Error("failed to list requests", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if reqs == nil {
		reqs = []*models.AdminRequest{}
	}
	return reqs, nil
}

func (s *adminRequestService) Approve(ctx context.Context, id uuid.UUID, reviewerID int64, notes string) (*models.AdminRequest, error) {
	return s.review(ctx, id, models.AdminRequestApproved, reviewerID, notes)
}

func (s *adminRequestService) Reject(ctx context.Context, id uuid.UUID, reviewerID int64, notes string) (*models.AdminRequest, error) {
	return s.review(ctx, id, models.AdminRequestRejected, reviewerID, notes)
}

// review закрывает заявку и при одобрении выдаёт роль в той же транзакции
func (s *adminRequestService) review(ctx context.Context, id uuid.UUID, decision models.AdminRequestStatus, reviewerID int64, notes string) (*models.AdminRequest, error) {
	const op = "service.AdminRequestService.review"
	logger := s.log.With(
		slog.String("op", op),
		slog.String("request_id", id.String()),
		slog.String("decision", string(decision)),
		slog.Int64("reviewerID", reviewerID),
	)

	trim(&notes)
	if len(notes) > 1000 {
		return nil, &ValidationError{Field: "notes", Code: "max"}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	req, err := s.requestRepo.Review(ctx, tx, id, decision, reviewerID, notes, s.now().UTC())
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrAdminRequestReviewed) {
			return nil, s.reviewConflict(ctx, logger, op, id)
		}
		logger.Error("failed to review request", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to review request: %w", op, err)
	}

	if decision == models.AdminRequestApproved {
		if err := s.userRepo.GrantRole(ctx, tx, req.UserID, models.RoleAdmin); err != nil {
			rollback(logger, tx)
			logger.Error("failed to grant role", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to grant role: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("admin request reviewed", slog.Int64("userID", req.UserID))
	return req, nil
}

func (s *adminRequestService) reviewConflict(ctx context.Context, logger *slog.Logger, op string, id uuid.UUID) error {
	_, err := s.requestRepo.GetRequestByID(ctx, id)
	switch {
	case errors.Is(err, storage.ErrAdminRequestNotFound):
		return fmt.Errorf("%s: %w", op, ErrAdminRequestNotFound)
	case err != nil:
		logger.Error("failed to get request", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Warn("request already reviewed")
	return fmt.Errorf("%s: %w", op, ErrAdminRequestReviewed)
}
