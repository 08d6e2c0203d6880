// Package stripepay создаёт Stripe Checkout Session как альтернативный шлюз.
package stripepay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/payment"
)

// подменяется в тестах
var newSession = session.New

type Gateway struct {
	log *slog.Logger
}

// New выставляет глобальный ключ stripe-go
func New(log *slog.Logger, apiKey string) *Gateway {
	stripe.Key = apiKey
	return &Gateway{log: log}
}

func (g *Gateway) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	const op = "payment.stripepay.CreateSession"
	logger := g.log.With(slog.String("op", op), slog.String("order_id", req.OrderID.String()))

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(payment.MinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID.String()),
	}
	params.Context = ctx
	params.AddMetadata("order_id", req.OrderID.String())

	s, err := newSession(params)
	if err != nil {
		logger.Error("stripe checkout session failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %v", op, payment.ErrGateway, err)
	}
	if s.URL == "" {
		return nil, fmt.Errorf("%s: %w: empty session url", op, payment.ErrGateway)
	}

	logger.Info("checkout session created", slog.String("session_id", s.ID))
	return &payment.Session{ID: s.ID, URL: s.URL}, nil
}
