package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartly/backend/internal/domain/order"
	"github.com/cartly/backend/internal/domain/shared/valueobject"
)

// PayPalAdapter implements order.PaymentGateway using the PayPal REST API.
// The storefront never captures funds itself: the frontend completes the
// payment with the PayPal JS SDK and the backend verifies the resulting
// transaction before finalizing the checkout.
type PayPalAdapter struct {
	config     *PayPalConfig
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalAdapter creates a new PayPal adapter
func NewPayPalAdapter(config *PayPalConfig) (*PayPalAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &PayPalAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// VerifyPayment fetches the PayPal order for the transaction and checks
// that it was completed for the expected amount and currency.
func (a *PayPalAdapter) VerifyPayment(ctx context.Context, checkoutID uuid.UUID, transactionID string, expected valueobject.Money) (*order.PaymentVerification, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("paypal: transaction ID is required")
	}

	token, err := a.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.config.BaseURL+"/v2/checkout/orders/"+transactionID, nil)
	if err != nil {
		return nil, fmt.Errorf("paypal: failed to build order request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal: order lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paypal: failed to read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr paypalErrorResponse
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Name != "" {
			return nil, fmt.Errorf("paypal: order lookup returned %s: %s", apiErr.Name, apiErr.Message)
		}
		return nil, fmt.Errorf("paypal: order lookup returned status %d", resp.StatusCode)
	}

	var paypalOrder paypalOrderResponse
	if err := json.Unmarshal(body, &paypalOrder); err != nil {
		return nil, fmt.Errorf("paypal: failed to decode order response: %w", err)
	}

	verification := &order.PaymentVerification{
		TransactionID: paypalOrder.ID,
		RawDetails:    string(body),
	}

	if paypalOrder.Status != paypalOrderStatusCompleted {
		return verification, nil
	}

	if !a.amountMatches(&paypalOrder, expected) {
		return verification, nil
	}

	verification.Succeeded = true
	return verification, nil
}

// amountMatches checks the captured amount against the checkout total
func (a *PayPalAdapter) amountMatches(paypalOrder *paypalOrderResponse, expected valueobject.Money) bool {
	for _, unit := range paypalOrder.PurchaseUnits {
		if unit.Amount.CurrencyCode != string(expected.Currency()) {
			continue
		}
		captured, err := valueobject.NewMoneyUSDFromString(unit.Amount.Value)
		if err != nil {
			continue
		}
		if captured.Amount().Equal(expected.Amount()) {
			return true
		}
	}
	return false
}

// getAccessToken returns a cached OAuth2 token, refreshing it when expired
func (a *PayPalAdapter) getAccessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.config.BaseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("paypal: failed to build token request: %w", err)
	}
	req.SetBasicAuth(a.config.ClientID, a.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal: token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal: token request returned status %d", resp.StatusCode)
	}

	var token paypalTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("paypal: failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("paypal: token response contained no access token")
	}

	a.accessToken = token.AccessToken
	// Refresh one minute early to avoid using a token at the edge of expiry
	a.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)

	return a.accessToken, nil
}

// Ensure PayPalAdapter implements PaymentGateway
var _ order.PaymentGateway = (*PayPalAdapter)(nil)
