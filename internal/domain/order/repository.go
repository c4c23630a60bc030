package order

import (
	"context"

	"github.com/cartly/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID including its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUser finds all orders of a user, newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// FindAll finds orders with filtering and pagination, for admin listings
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsDeliveredWithProduct checks whether the user has a delivered
	// order containing the product. Used to gate product reviews.
	ExistsDeliveredWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// Delete removes an order
	Delete(ctx context.Context, id uuid.UUID) error
}

// CheckoutRepository defines the interface for checkout persistence
type CheckoutRepository interface {
	// FindByID finds a checkout by ID including its items
	FindByID(ctx context.Context, id uuid.UUID) (*Checkout, error)

	// Save creates or updates a checkout
	Save(ctx context.Context, c *Checkout) error
}
