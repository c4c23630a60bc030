package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartly/backend/internal/domain/cart"
)

// AddItemRequest is the request to add a product variant to a cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"required"`
	Color     string    `json:"color" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest is the request to overwrite a line item quantity.
// A quantity of zero or less removes the row.
type UpdateItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"required"`
	Color     string    `json:"color" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// RemoveItemRequest is the request to delete a line item
type RemoveItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"required"`
	Color     string    `json:"color" binding:"required"`
}

// LineItemResponse is the API representation of a cart line item
type LineItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// CartResponse is the API representation of a cart
type CartResponse struct {
	ID            uuid.UUID          `json:"id"`
	OwnerID       *uuid.UUID         `json:"owner_id,omitempty"`
	GuestToken    *string            `json:"guest_token,omitempty"`
	Items         []LineItemResponse `json:"items"`
	TotalPrice    decimal.Decimal    `json:"total_price"`
	TotalQuantity int                `json:"total_quantity"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ToCartResponse converts a cart aggregate to its API representation
func ToCartResponse(c *cart.Cart) *CartResponse {
	items := make([]LineItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, LineItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
			ImageURL:  item.ImageURL,
		})
	}

	return &CartResponse{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		GuestToken:    c.GuestToken,
		Items:         items,
		TotalPrice:    c.TotalPrice,
		TotalQuantity: c.TotalQuantity(),
		UpdatedAt:     c.UpdatedAt,
	}
}
