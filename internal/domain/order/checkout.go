package order

import (
	"time"

	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment state of a checkout session
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// Checkout errors
var (
	// ErrCheckoutNotFound is returned when a checkout lookup fails
	ErrCheckoutNotFound = shared.NewDomainError("CHECKOUT_NOT_FOUND", "Checkout not found")

	// ErrCheckoutNotPaid is returned when finalizing an unpaid checkout
	ErrCheckoutNotPaid = shared.NewDomainError("CHECKOUT_NOT_PAID", "Checkout is not paid yet")

	// ErrCheckoutFinalized is returned when mutating an already finalized checkout
	ErrCheckoutFinalized = shared.NewDomainError("CHECKOUT_FINALIZED", "Checkout is already finalized")
)

// CheckoutItem represents one line in a checkout session, copied from
// the cart at checkout time
type CheckoutItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	CheckoutID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Name       string          `gorm:"type:varchar(200);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Size       string          `gorm:"type:varchar(20);not null"`
	Color      string          `gorm:"type:varchar(50);not null"`
	Quantity   int             `gorm:"not null"`
	ImageURL   string          `gorm:"type:varchar(500)"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (CheckoutItem) TableName() string {
	return "checkout_items"
}

// Subtotal returns unit price multiplied by quantity
func (i *CheckoutItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Checkout represents a checkout session: the bridge between a cart
// and a confirmed order. It is created when the buyer submits the
// checkout form, marked paid when the payment gateway confirms, and
// finalized into an Order exactly once.
type Checkout struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Items           []CheckoutItem  `gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod   string          `gorm:"type:varchar(50);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentDetails  string          `gorm:"type:jsonb"` // raw gateway response
	IsPaid          bool            `gorm:"not null;default:false"`
	PaidAt          *time.Time
	IsFinalized     bool `gorm:"not null;default:false"`
	FinalizedAt     *time.Time
}

// TableName returns the table name for GORM
func (Checkout) TableName() string {
	return "checkouts"
}

// NewCheckout creates a new pending checkout session. The total is
// computed from the items, not taken from the caller.
func NewCheckout(userID uuid.UUID, items []CheckoutItem, address ShippingAddress, paymentMethod string) (*Checkout, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Cannot check out an empty cart")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}
	if paymentMethod == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method cannot be empty")
	}

	c := &Checkout{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ShippingAddress:   address,
		PaymentMethod:     paymentMethod,
		PaymentStatus:     PaymentStatusPending,
		PaymentDetails:    "{}",
	}

	c.Items = make([]CheckoutItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be at least 1")
		}
		item.ID = uuid.New()
		item.CheckoutID = c.ID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = c.CreatedAt
		}
		c.Items = append(c.Items, item)
		total = total.Add(item.Subtotal())
	}
	c.TotalPrice = total

	return c, nil
}

// GetTotalPriceMoney returns the checkout total as Money
func (c *Checkout) GetTotalPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(c.TotalPrice)
}

// MarkPaid records a successful payment confirmation from the gateway
func (c *Checkout) MarkPaid(details string, paidAt time.Time) error {
	if c.IsFinalized {
		return ErrCheckoutFinalized
	}
	if c.IsPaid {
		return shared.NewDomainError("ALREADY_PAID", "Checkout is already paid")
	}

	c.PaymentStatus = PaymentStatusPaid
	if details != "" {
		c.PaymentDetails = details
	}
	c.IsPaid = true
	c.PaidAt = &paidAt
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// MarkPaymentFailed records a failed payment attempt
func (c *Checkout) MarkPaymentFailed(details string) error {
	if c.IsFinalized {
		return ErrCheckoutFinalized
	}
	if c.IsPaid {
		return shared.NewDomainError("ALREADY_PAID", "Checkout is already paid")
	}

	c.PaymentStatus = PaymentStatusFailed
	if details != "" {
		c.PaymentDetails = details
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Finalize converts the paid checkout into an Order. Calling it twice
// fails rather than producing a duplicate order.
func (c *Checkout) Finalize() (*Order, error) {
	if c.IsFinalized {
		return nil, ErrCheckoutFinalized
	}
	if !c.IsPaid || c.PaidAt == nil {
		return nil, ErrCheckoutNotPaid
	}

	orderItems := make([]OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		orderItems = append(orderItems, OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}

	o, err := NewOrder(c.UserID, orderItems, c.ShippingAddress, c.PaymentMethod, *c.PaidAt)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c.IsFinalized = true
	c.FinalizedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()

	return o, nil
}
