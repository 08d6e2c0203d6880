package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
)

var ErrClosed = errors.New("notification dispatcher closed")

const defaultSendTimeout = 15 * time.Second

type Options struct {
	// Inbox - адрес магазина для писем о новых заказах
	Inbox     string
	StoreName string
	Timeout   time.Duration
}

type Dispatcher struct {
	log    *slog.Logger
	mailer Mailer
	opts   Options

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, mailer Mailer, opts Options) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultSendTimeout
	}
	return &Dispatcher{log: log, mailer: mailer, opts: opts}
}

// OrderCreated - письмо владельцу магазина
func (d *Dispatcher) OrderCreated(order *models.Order) *Task {
	return d.dispatch(kindOrderCreated, d.opts.Inbox, order)
}

// PaymentConfirmed - письмо покупателю после оплаты
func (d *Dispatcher) PaymentConfirmed(order *models.Order) *Task {
	return d.dispatch(kindPaymentConfirmed, order.CustomerEmail, order)
}

// ShipmentNotified - письмо покупателю с номером отслеживания
func (d *Dispatcher) ShipmentNotified(order *models.Order) *Task {
	return d.dispatch(kindShipment, order.CustomerEmail, order)
}

func (d *Dispatcher) dispatch(k kind, to string, order *models.Order) *Task {
	const op = "notify.Dispatcher.dispatch"

	log := d.log.With(
		slog.String("op", op),
		slog.String("kind", string(k)),
		slog.String("order_id", order.ID.String()),
	)

	if to == "" {
		log.Info("no recipient, notification skipped")
		return SkippedTask()
	}

	// письмо собирается сразу, пока снимок заказа не изменился
	subject, html, err := render(k, d.opts.StoreName, order)
	if err != nil {
		log.Error("failed to render notification", slog.Any("error", err))
		return CompletedTask(fmt.Errorf("%s: %w", op, err))
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.Error("dispatcher closed, notification dropped")
		return CompletedTask(ErrClosed)
	}
	d.wg.Add(1)
	d.mu.Unlock()

	t := newTask()
	go func() {
		defer d.wg.Done()

		// не зависит от контекста запроса
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
		defer cancel()

		err := d.mailer.Send(ctx, Message{To: []string{to}, Subject: subject, HTML: html})
		if err != nil {
			log.Error("failed to send notification", slog.Any("error", err))
			t.finish(fmt.Errorf("%s: %w", op, err))
			return
		}

		log.Info("notification sent")
		t.finish(nil)
	}()

	return t
}

// Close перестаёт принимать письма и ждёт уже запущенные отправки
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
