package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cartly/backend/internal/domain/order"
	"github.com/cartly/backend/internal/domain/shared/valueobject"
)

// NoopGateway accepts every payment without contacting a provider.
// Use this for development and integration tests only.
type NoopGateway struct{}

// NewNoopGateway creates a new NoopGateway
func NewNoopGateway() *NoopGateway {
	return &NoopGateway{}
}

// VerifyPayment reports success for any non-empty transaction ID
func (g *NoopGateway) VerifyPayment(ctx context.Context, checkoutID uuid.UUID, transactionID string, expected valueobject.Money) (*order.PaymentVerification, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}
	return &order.PaymentVerification{
		Succeeded:     true,
		TransactionID: transactionID,
		RawDetails:    fmt.Sprintf(`{"checkout_id":%q,"amount":%q,"simulated":true}`, checkoutID, expected.String()),
	}, nil
}

// Ensure NoopGateway implements PaymentGateway
var _ order.PaymentGateway = (*NoopGateway)(nil)
