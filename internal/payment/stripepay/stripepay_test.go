package stripepay

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v83"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/payment"
)

func TestCreateSession_BuildsParams(t *testing.T) {
	orderID := uuid.New()
	var got *stripe.CheckoutSessionParams
	orig := newSession
	defer func() { newSession = orig }()
	newSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		got = params
		return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/cs_test_1"}, nil
	}

	g := New(slog.New(slog.NewTextHandler(os.Stdout, nil)), "sk_test")
	s, err := g.CreateSession(context.Background(), payment.SessionRequest{
		OrderID:     orderID,
		Amount:      142,
		Currency:    "AED",
		Description: "Seven Green x2",
		SuccessURL:  "https://shop.example/payment-success?order_id=" + orderID.String(),
		CancelURL:   "https://shop.example/order",
	})

	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_test_1", s.URL)
	assert.Equal(t, "aed", *got.LineItems[0].PriceData.Currency)
	assert.Equal(t, int64(14200), *got.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, orderID.String(), *got.ClientReferenceID)
	assert.Equal(t, orderID.String(), got.Metadata["order_id"])
	assert.Equal(t, "https://shop.example/order", *got.CancelURL)
}

func TestCreateSession_StripeError(t *testing.T) {
	orig := newSession
	defer func() { newSession = orig }()
	newSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("card_declined")
	}

	g := New(slog.New(slog.NewTextHandler(os.Stdout, nil)), "sk_test")
	s, err := g.CreateSession(context.Background(), payment.SessionRequest{OrderID: uuid.New(), Amount: 71, Currency: "AED"})

	assert.Nil(t, s)
	assert.ErrorIs(t, err, payment.ErrGateway)
}
