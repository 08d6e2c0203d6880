package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order state transition")
	ErrDuplicateRequest  = errors.New("order with this idempotency key is being created")
	ErrIdempotencyReused = errors.New("idempotency key already used for a different order")
	ErrOutOfStock        = errors.New("out of stock")
	ErrNoActiveProduct   = errors.New("no active product")
	ErrPaymentFailed     = errors.New("payment session could not be created")

	ErrProductNotFound = errors.New("product not found")
	ErrProductInUse    = errors.New("product is referenced by orders")

	ErrAdminRequestExists   = errors.New("pending admin request already exists")
	ErrAlreadyAdmin         = errors.New("user is already an admin")
	ErrAdminRequestNotFound = errors.New("admin request not found")
	ErrAdminRequestReviewed = errors.New("admin request already reviewed")
)

// ValidationError - первое поле запроса, не прошедшее проверку.
// Field - имя поля в JSON, Code - правило (required, positive, email, ...).
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Code)
}
