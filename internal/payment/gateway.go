// Package payment описывает создание сессии оплаты во внешнем шлюзе.
package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrGateway - шлюз недоступен или ответил ошибкой
var ErrGateway = errors.New("payment gateway error")

// SessionRequest - всё, что нужно шлюзу для hosted checkout.
// Amount в целых единицах валюты, шлюз сам переводит в минимальные.
type SessionRequest struct {
	OrderID     uuid.UUID
	Amount      int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	FailureURL  string
}

// Session - ответ шлюза
type Session struct {
	ID  string
	URL string
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// MinorUnits переводит сумму в минимальные единицы (филсы, центы)
func MinorUnits(amount int64) int64 {
	return amount * 100
}
