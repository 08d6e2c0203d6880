package service

import (
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/notify"
)

// Notifier запускает отправку письма и сразу возвращает задачу
type Notifier interface {
	OrderCreated(order *models.Order) *notify.Task
	PaymentConfirmed(order *models.Order) *notify.Task
	ShipmentNotified(order *models.Order) *notify.Task
}
