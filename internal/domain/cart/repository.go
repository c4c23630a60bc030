package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for cart persistence
type Repository interface {
	// FindByID finds a cart by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)

	// FindByOwnerID finds the cart owned by a registered user
	// Returns (nil, nil) if the user has no cart
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*Cart, error)

	// FindByGuestToken finds the cart keyed by a guest token
	// Returns (nil, nil) if no cart exists for the token
	FindByGuestToken(ctx context.Context, guestToken string) (*Cart, error)

	// Save creates or updates a cart together with its line items
	Save(ctx context.Context, c *Cart) error

	// Delete removes a cart and its line items
	Delete(ctx context.Context, id uuid.UUID) error
}
