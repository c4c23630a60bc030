package cart

import "github.com/cartly/backend/internal/domain/shared"

// Domain errors for cart operations
var (
	// ErrProductNotFound is returned when the product being added does not exist
	ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")

	// ErrCartNotFound is returned when no cart exists for the given identity
	ErrCartNotFound = shared.NewDomainError("CART_NOT_FOUND", "Cart not found")

	// ErrItemNotFound is returned when no line item matches the given product/size/color
	ErrItemNotFound = shared.NewDomainError("ITEM_NOT_FOUND", "Item not found in cart")

	// ErrEmptyGuestCart is returned when a merge is attempted with a guest cart that has no items
	ErrEmptyGuestCart = shared.NewDomainError("EMPTY_GUEST_CART", "Guest cart is empty, nothing to merge")

	// ErrNoCartToMerge is returned when neither a guest cart nor a user cart exists
	ErrNoCartToMerge = shared.NewDomainError("NO_CART_TO_MERGE", "No cart available to merge")
)
