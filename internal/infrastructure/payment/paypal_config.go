// Package payment provides payment gateway adapters for checkout verification.
package payment

import (
	"errors"
	"strings"
	"time"

	infraconfig "github.com/cartly/backend/internal/infrastructure/config"
)

const (
	paypalLiveBaseURL    = "https://api-m.paypal.com"
	paypalSandboxBaseURL = "https://api-m.sandbox.paypal.com"
)

// PayPalConfig holds the credentials and endpoint for the PayPal REST API
type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Sandbox      bool
	Timeout      time.Duration
}

// NewPayPalConfig builds a PayPalConfig from the application payment settings
func NewPayPalConfig(cfg infraconfig.PaymentConfig) *PayPalConfig {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.Sandbox {
			baseURL = paypalSandboxBaseURL
		} else {
			baseURL = paypalLiveBaseURL
		}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PayPalConfig{
		BaseURL:      baseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Sandbox:      cfg.Sandbox,
		Timeout:      timeout,
	}
}

// Validate checks that the configuration is usable
func (c *PayPalConfig) Validate() error {
	if c == nil {
		return errors.New("paypal: configuration is required")
	}
	if c.ClientID == "" {
		return errors.New("paypal: client ID is required")
	}
	if c.ClientSecret == "" {
		return errors.New("paypal: client secret is required")
	}
	if c.BaseURL == "" {
		return errors.New("paypal: base URL is required")
	}
	return nil
}
