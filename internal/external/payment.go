package external

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookmyseat/internal/models"
)

// PaymentClient talks to the payment gateway. Orders are created server-side
// for the exact booking amount; the client-side checkout then reports back a
// payment id and a signature which VerifySignature checks locally against
// the key secret.
type PaymentClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

type PaymentConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type orderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func NewPaymentClient(cfg PaymentConfig) *PaymentClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &PaymentClient{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// CreateOrder registers an order with the gateway for amount minor units,
// tagged with the booking's receipt identifier.
func (pc *PaymentClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.PaymentOrder, error) {
	reqBody := orderRequest{
		Amount:         amount,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.baseURL+"/v1/orders", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(pc.keyID, pc.keySecret)

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.ID == "" {
		return nil, fmt.Errorf("order creation returned no id")
	}

	return &models.PaymentOrder{
		ID:       result.ID,
		Amount:   result.Amount,
		Currency: result.Currency,
		Receipt:  result.Receipt,
	}, nil
}

// VerifySignature checks the proof delivered after checkout: the gateway
// signs "orderID|paymentID" with HMAC-SHA256 under the key secret.
func (pc *PaymentClient) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(pc.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
