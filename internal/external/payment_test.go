package external

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)

		var req orderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(75000), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "booking_17", req.Receipt)
		assert.Equal(t, 1, req.PaymentCapture)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(orderResponse{
			ID:       "order_abc123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewPaymentClient(PaymentConfig{
		BaseURL:   server.URL,
		KeyID:     "key_test",
		KeySecret: "secret_test",
	})

	order, err := client.CreateOrder(context.Background(), 75000, "INR", "booking_17")
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", order.ID)
	assert.Equal(t, int64(75000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "booking_17", order.Receipt)
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewPaymentClient(PaymentConfig{BaseURL: server.URL})

	_, err := client.CreateOrder(context.Background(), 100, "INR", "booking_1")
	assert.Error(t, err)
}

func TestCreateOrderMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(orderResponse{Status: "created"})
	}))
	defer server.Close()

	client := NewPaymentClient(PaymentConfig{BaseURL: server.URL})

	_, err := client.CreateOrder(context.Background(), 100, "INR", "booking_1")
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	client := NewPaymentClient(PaymentConfig{KeySecret: "secret_test"})

	valid := sign("secret_test", "order_abc", "pay_xyz")
	assert.True(t, client.VerifySignature("order_abc", "pay_xyz", valid))

	// Wrong payment id, wrong secret, or garbage all fail
	assert.False(t, client.VerifySignature("order_abc", "pay_other", valid))
	assert.False(t, client.VerifySignature("order_abc", "pay_xyz", sign("wrong", "order_abc", "pay_xyz")))
	assert.False(t, client.VerifySignature("order_abc", "pay_xyz", "not-a-signature"))
}
