package order

import (
	"context"

	"github.com/cartly/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentVerification is the gateway's answer for a payment attempt.
// The gateway is treated as an opaque collaborator: the only facts the
// core relies on are whether the payment succeeded and the raw details
// kept for audit.
type PaymentVerification struct {
	Succeeded     bool
	TransactionID string
	RawDetails    string // gateway response JSON, stored verbatim
}

// PaymentGateway defines the port interface for the external payment
// provider. It is defined in the domain layer following the Ports &
// Adapters pattern; concrete implementations live in infrastructure.
type PaymentGateway interface {
	// VerifyPayment checks with the provider that the transaction
	// referenced by the checkout was captured for the expected amount
	VerifyPayment(ctx context.Context, checkoutID uuid.UUID, transactionID string, expected valueobject.Money) (*PaymentVerification, error)
}
