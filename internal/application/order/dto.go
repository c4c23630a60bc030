package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartly/backend/internal/domain/order"
)

// ShippingAddressInput is the delivery destination in a checkout request
type ShippingAddressInput struct {
	FirstName  string `json:"firstName" binding:"required,max=100"`
	LastName   string `json:"lastName" binding:"required,max=100"`
	Address    string `json:"address" binding:"required,max=300"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postalCode" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"required,max=20"`
}

func (a ShippingAddressInput) toDomain() order.ShippingAddress {
	return order.ShippingAddress{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// CreateCheckoutRequest starts a checkout session from the user's cart
type CreateCheckoutRequest struct {
	ShippingAddress ShippingAddressInput `json:"shippingAddress" binding:"required"`
	PaymentMethod   string               `json:"paymentMethod" binding:"required,max=50"`
}

// PayCheckoutRequest reports the gateway transaction to verify
type PayCheckoutRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

// ShippingAddressResponse is the address in API responses
type ShippingAddressResponse struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

func toAddressResponse(a order.ShippingAddress) ShippingAddressResponse {
	return ShippingAddressResponse{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// ItemResponse is one snapshot line in a checkout or order response
type ItemResponse struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image,omitempty"`
}

// CheckoutResponse is the checkout session representation
type CheckoutResponse struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"userId"`
	Items           []ItemResponse          `json:"checkoutItems"`
	ShippingAddress ShippingAddressResponse `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	TotalPrice      decimal.Decimal         `json:"totalPrice"`
	PaymentStatus   string                  `json:"paymentStatus"`
	IsPaid          bool                    `json:"isPaid"`
	PaidAt          *time.Time              `json:"paidAt,omitempty"`
	IsFinalized     bool                    `json:"isFinalized"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// ToCheckoutResponse maps a checkout aggregate to its API representation
func ToCheckoutResponse(c *order.Checkout) CheckoutResponse {
	items := make([]ItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, ItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}

	return CheckoutResponse{
		ID:              c.ID,
		UserID:          c.UserID,
		Items:           items,
		ShippingAddress: toAddressResponse(c.ShippingAddress),
		PaymentMethod:   c.PaymentMethod,
		TotalPrice:      c.TotalPrice,
		PaymentStatus:   string(c.PaymentStatus),
		IsPaid:          c.IsPaid,
		PaidAt:          c.PaidAt,
		IsFinalized:     c.IsFinalized,
		CreatedAt:       c.CreatedAt,
	}
}

// UpdateOrderStatusRequest is the admin request to move an order along
// the fulfillment pipeline
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderResponse is the order representation
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"userId"`
	Items           []ItemResponse          `json:"orderItems"`
	ShippingAddress ShippingAddressResponse `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	TotalPrice      decimal.Decimal         `json:"totalPrice"`
	IsPaid          bool                    `json:"isPaid"`
	PaidAt          *time.Time              `json:"paidAt,omitempty"`
	IsDelivered     bool                    `json:"isDelivered"`
	DeliveredAt     *time.Time              `json:"deliveredAt,omitempty"`
	Status          string                  `json:"status"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// ToOrderResponse maps an order aggregate to its API representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}

	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: toAddressResponse(o.ShippingAddress),
		PaymentMethod:   o.PaymentMethod,
		TotalPrice:      o.TotalPrice,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		Status:          o.Status.String(),
		CreatedAt:       o.CreatedAt,
	}
}

// OrderListResult is one page of an admin order listing
type OrderListResult struct {
	Orders     []OrderResponse `json:"orders"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}
