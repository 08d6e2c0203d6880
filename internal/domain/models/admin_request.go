package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AdminRequestStatus string

const (
	AdminRequestPending  AdminRequestStatus = "pending"
	AdminRequestApproved AdminRequestStatus = "approved"
	AdminRequestRejected AdminRequestStatus = "rejected"
)

func ParseAdminRequestStatus(s string) (AdminRequestStatus, error) {
	switch st := AdminRequestStatus(s); st {
	case AdminRequestPending, AdminRequestApproved, AdminRequestRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown admin request status %q", s)
}

// AdminRequest - заявка пользователя на права администратора
type AdminRequest struct {
	ID          uuid.UUID          `json:"id"`
	UserID      int64              `json:"user_id"`
	Email       string             `json:"email"`
	Status      AdminRequestStatus `json:"status"`
	RequestedAt time.Time          `json:"requested_at"`
	ReviewedBy  *int64             `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time         `json:"reviewed_at,omitempty"`
	Notes       string             `json:"notes,omitempty"`
}
