package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/cartly/backend/internal/infrastructure/config"

	"github.com/cartly/backend/internal/domain/shared/valueobject"
)

type paypalServer struct {
	*httptest.Server

	tokenRequests int
	orderStatus   string
	orderAmount   paypalAmount
	orderErr      *paypalErrorResponse
}

func newPayPalServer(t *testing.T) *paypalServer {
	t.Helper()

	s := &paypalServer{
		orderStatus: paypalOrderStatusCompleted,
		orderAmount: paypalAmount{CurrencyCode: "USD", Value: "59.98"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		s.tokenRequests++
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(paypalTokenResponse{
			AccessToken: "test-token",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	})
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if s.orderErr != nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(s.orderErr)
			return
		}
		resp := paypalOrderResponse{
			ID:     "5O190127TN364715T",
			Status: s.orderStatus,
			PurchaseUnits: []paypalPurchaseUnit{
				{Amount: s.orderAmount},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newTestAdapter(t *testing.T, server *paypalServer) *PayPalAdapter {
	t.Helper()

	adapter, err := NewPayPalAdapter(&PayPalConfig{
		BaseURL:      server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Timeout:      5 * time.Second,
	})
	require.NoError(t, err)
	return adapter
}

func mustMoney(t *testing.T, amount string) valueobject.Money {
	t.Helper()

	m, err := valueobject.NewMoneyUSDFromString(amount)
	require.NoError(t, err)
	return m
}

func TestNewPayPalAdapter(t *testing.T) {
	t.Run("requires client ID", func(t *testing.T) {
		_, err := NewPayPalAdapter(&PayPalConfig{
			BaseURL:      paypalSandboxBaseURL,
			ClientSecret: "secret",
		})
		assert.ErrorContains(t, err, "client ID")
	})

	t.Run("requires client secret", func(t *testing.T) {
		_, err := NewPayPalAdapter(&PayPalConfig{
			BaseURL:  paypalSandboxBaseURL,
			ClientID: "id",
		})
		assert.ErrorContains(t, err, "client secret")
	})

	t.Run("accepts valid config", func(t *testing.T) {
		adapter, err := NewPayPalAdapter(&PayPalConfig{
			BaseURL:      paypalSandboxBaseURL,
			ClientID:     "id",
			ClientSecret: "secret",
			Timeout:      10 * time.Second,
		})
		require.NoError(t, err)
		assert.NotNil(t, adapter)
	})
}

func TestNewPayPalConfig(t *testing.T) {
	t.Run("defaults to live base URL", func(t *testing.T) {
		cfg := NewPayPalConfig(infraconfig.PaymentConfig{
			ClientID:     "id",
			ClientSecret: "secret",
		})
		assert.Equal(t, paypalLiveBaseURL, cfg.BaseURL)
	})

	t.Run("uses sandbox base URL when sandbox is enabled", func(t *testing.T) {
		cfg := NewPayPalConfig(infraconfig.PaymentConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			Sandbox:      true,
		})
		assert.Equal(t, paypalSandboxBaseURL, cfg.BaseURL)
	})

	t.Run("keeps explicit base URL and trims trailing slash", func(t *testing.T) {
		cfg := NewPayPalConfig(infraconfig.PaymentConfig{
			BaseURL:      "https://paypal.example.com/",
			ClientID:     "id",
			ClientSecret: "secret",
		})
		assert.Equal(t, "https://paypal.example.com", cfg.BaseURL)
	})

	t.Run("applies default timeout", func(t *testing.T) {
		cfg := NewPayPalConfig(infraconfig.PaymentConfig{
			ClientID:     "id",
			ClientSecret: "secret",
		})
		assert.Equal(t, 30*time.Second, cfg.Timeout)
	})
}

func TestPayPalAdapterVerifyPayment(t *testing.T) {
	checkoutID := uuid.New()

	t.Run("succeeds for a completed order with matching amount", func(t *testing.T) {
		server := newPayPalServer(t)
		adapter := newTestAdapter(t, server)

		verification, err := adapter.VerifyPayment(context.Background(), checkoutID, "5O190127TN364715T", mustMoney(t, "59.98"))
		require.NoError(t, err)
		assert.True(t, verification.Succeeded)
		assert.Equal(t, "5O190127TN364715T", verification.TransactionID)
		assert.Contains(t, verification.RawDetails, "COMPLETED")
	})

	t.Run("fails when the captured amount differs", func(t *testing.T) {
		server := newPayPalServer(t)
		server.orderAmount = paypalAmount{CurrencyCode: "USD", Value: "10.00"}
		adapter := newTestAdapter(t, server)

		verification, err := adapter.VerifyPayment(context.Background(), checkoutID, "5O190127TN364715T", mustMoney(t, "59.98"))
		require.NoError(t, err)
		assert.False(t, verification.Succeeded)
	})

	t.Run("fails when the currency differs", func(t *testing.T) {
		server := newPayPalServer(t)
		server.orderAmount = paypalAmount{CurrencyCode: "EUR", Value: "59.98"}
		adapter := newTestAdapter(t, server)

		verification, err := adapter.VerifyPayment(context.Background(), checkoutID, "5O190127TN364715T", mustMoney(t, "59.98"))
		require.NoError(t, err)
		assert.False(t, verification.Succeeded)
	})

	t.Run("fails when the order is not completed", func(t *testing.T) {
		server := newPayPalServer(t)
		server.orderStatus = paypalOrderStatusApproved
		adapter := newTestAdapter(t, server)

		verification, err := adapter.VerifyPayment(context.Background(), checkoutID, "5O190127TN364715T", mustMoney(t, "59.98"))
		require.NoError(t, err)
		assert.False(t, verification.Succeeded)
	})

	t.Run("returns API errors with the PayPal error name", func(t *testing.T) {
		server := newPayPalServer(t)
		server.orderErr = &paypalErrorResponse{
			Name:    "RESOURCE_NOT_FOUND",
			Message: "The specified resource does not exist.",
		}
		adapter := newTestAdapter(t, server)

		_, err := adapter.VerifyPayment(context.Background(), checkoutID, "unknown-order", mustMoney(t, "59.98"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "RESOURCE_NOT_FOUND")
	})

	t.Run("requires a transaction ID", func(t *testing.T) {
		server := newPayPalServer(t)
		adapter := newTestAdapter(t, server)

		_, err := adapter.VerifyPayment(context.Background(), checkoutID, "", mustMoney(t, "59.98"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "transaction ID")
	})

	t.Run("caches the access token across calls", func(t *testing.T) {
		server := newPayPalServer(t)
		adapter := newTestAdapter(t, server)

		for i := 0; i < 3; i++ {
			_, err := adapter.VerifyPayment(context.Background(), checkoutID, "5O190127TN364715T", mustMoney(t, "59.98"))
			require.NoError(t, err)
		}
		assert.Equal(t, 1, server.tokenRequests)
	})

	t.Run("surfaces token endpoint failures", func(t *testing.T) {
		server := newPayPalServer(t)
		adapter, err := NewPayPalAdapter(&PayPalConfig{
			BaseURL:      server.URL,
			ClientID:     "client-id",
			ClientSecret: "wrong-secret",
			Timeout:      5 * time.Second,
		})
		require.NoError(t, err)

		_, err = adapter.VerifyPayment(context.Background(), checkoutID, "5O190127TN364715T", mustMoney(t, "59.98"))
		require.Error(t, err)
		assert.ErrorContains(t, err, "token request")
	})
}

func TestNoopGateway(t *testing.T) {
	gateway := NewNoopGateway()

	t.Run("accepts any transaction", func(t *testing.T) {
		verification, err := gateway.VerifyPayment(context.Background(), uuid.New(), "simulated-txn", mustMoney(t, "25.00"))
		require.NoError(t, err)
		assert.True(t, verification.Succeeded)
		assert.Equal(t, "simulated-txn", verification.TransactionID)
	})

	t.Run("rejects an empty transaction ID", func(t *testing.T) {
		_, err := gateway.VerifyPayment(context.Background(), uuid.New(), "", mustMoney(t, "25.00"))
		assert.Error(t, err)
	})
}
