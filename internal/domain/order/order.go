package order

import (
	"fmt"
	"time"

	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// ErrOrderNotFound is returned when an order lookup fails
var ErrOrderNotFound = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")

// ShippingAddress is the delivery destination captured at checkout
type ShippingAddress struct {
	FirstName  string `gorm:"type:varchar(100);not null"`
	LastName   string `gorm:"type:varchar(100);not null"`
	Address    string `gorm:"type:varchar(300);not null"`
	City       string `gorm:"type:varchar(100);not null"`
	PostalCode string `gorm:"type:varchar(20);not null"`
	Country    string `gorm:"type:varchar(100);not null"`
	Phone      string `gorm:"type:varchar(20);not null"`
}

// Validate checks that all required address fields are present
func (a ShippingAddress) Validate() error {
	if a.FirstName == "" || a.LastName == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Recipient name is required")
	}
	if a.Address == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Street address is required")
	}
	if a.City == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "City is required")
	}
	if a.PostalCode == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Postal code is required")
	}
	if a.Country == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Country is required")
	}
	if a.Phone == "" {
		return shared.NewDomainError("INVALID_ADDRESS", "Phone is required")
	}
	return nil
}

// OrderItem represents one purchased line in an order
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Size      string          `gorm:"type:varchar(20);not null"`
	Color     string          `gorm:"type:varchar(50);not null"`
	Quantity  int             `gorm:"not null"`
	ImageURL  string          `gorm:"type:varchar(500)"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal returns unit price multiplied by quantity
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a confirmed purchase
// It is created by finalizing a paid checkout and never mutated except
// for fulfillment status
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod   string          `gorm:"type:varchar(50);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IsPaid          bool            `gorm:"not null;default:false"`
	PaidAt          *time.Time
	IsDelivered     bool `gorm:"not null;default:false"`
	DeliveredAt     *time.Time
	Status          OrderStatus `gorm:"type:varchar(20);not null;default:'Processing'"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new paid order from checkout data
func NewOrder(userID uuid.UUID, items []OrderItem, address ShippingAddress, paymentMethod string, paidAt time.Time) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Cannot create an order without items")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}
	if paymentMethod == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method cannot be empty")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ShippingAddress:   address,
		PaymentMethod:     paymentMethod,
		IsPaid:            true,
		PaidAt:            &paidAt,
		Status:            OrderStatusProcessing,
	}

	o.Items = make([]OrderItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		item.ID = uuid.New()
		item.OrderID = o.ID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = o.CreatedAt
		}
		o.Items = append(o.Items, item)
		total = total.Add(item.Subtotal())
	}
	o.TotalPrice = total

	return o, nil
}

// UpdateStatus transitions the order to a new fulfillment status
func (o *Order) UpdateStatus(status OrderStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if status == o.Status {
		return nil
	}
	if !o.Status.CanTransitionTo(status) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot transition order from %s to %s", o.Status, status))
	}

	o.Status = status
	if status == OrderStatusDelivered {
		now := time.Now()
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// MarkDelivered transitions the order straight to Delivered
func (o *Order) MarkDelivered() error {
	if o.Status == OrderStatusProcessing {
		if err := o.UpdateStatus(OrderStatusShipped); err != nil {
			return err
		}
	}
	return o.UpdateStatus(OrderStatusDelivered)
}

// ContainsProduct returns true if any item references the product
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// GetTotalPriceMoney returns the order total as Money
func (o *Order) GetTotalPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.TotalPrice)
}

// IsTerminal returns true if the order is delivered or cancelled
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}
