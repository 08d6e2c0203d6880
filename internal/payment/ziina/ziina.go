// Package ziina - клиент payment_intent API Ziina.
package ziina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/payment"
)

const DefaultBaseURL = "https://api-v2.ziina.com/api"

type Client struct {
	log      *slog.Logger
	http     *http.Client
	baseURL  string
	apiKey   string
	testMode bool
}

func New(log *slog.Logger, baseURL, apiKey string, testMode bool, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		log:      log,
		http:     &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		testMode: testMode,
	}
}

type intentRequest struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currency_code"`
	Message      string `json:"message"`
	SuccessURL   string `json:"success_url"`
	CancelURL    string `json:"cancel_url"`
	FailureURL   string `json:"failure_url"`
	Test         bool   `json:"test"`
}

type intentResponse struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
	Status      string `json:"status"`
}

// CreateSession создаёт payment intent, один запрос без повторов
func (c *Client) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	const op = "payment.ziina.CreateSession"
	logger := c.log.With(slog.String("op", op), slog.String("order_id", req.OrderID.String()))

	body, err := json.Marshal(intentRequest{
		Amount:       payment.MinorUnits(req.Amount),
		CurrencyCode: strings.ToUpper(req.Currency),
		Message:      req.Description,
		SuccessURL:   req.SuccessURL,
		CancelURL:    req.CancelURL,
		FailureURL:   req.FailureURL,
		Test:         c.testMode,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment_intent", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Error("failed to reach gateway", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %v", op, payment.ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: failed to read response: %v", op, payment.ErrGateway, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("gateway returned error", slog.Int("status", resp.StatusCode), slog.String("body", string(raw)))
		return nil, fmt.Errorf("%s: %w: status %d", op, payment.ErrGateway, resp.StatusCode)
	}

	var intent intentResponse
	if err := json.Unmarshal(raw, &intent); err != nil {
		return nil, fmt.Errorf("%s: %w: failed to decode response: %v", op, payment.ErrGateway, err)
	}
	if intent.RedirectURL == "" {
		return nil, fmt.Errorf("%s: %w: empty redirect url", op, payment.ErrGateway)
	}

	logger.Info("payment intent created", slog.String("intent_id", intent.ID))
	return &payment.Session{ID: intent.ID, URL: intent.RedirectURL}, nil
}
