package cart

import (
	"time"

	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSnapshot carries the product fields captured into a line item
// at add time. Price, name and image are frozen at the moment of first
// insertion and are not re-synced when the product later changes.
type ProductSnapshot struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	ImageURL  string
}

// LineItem represents one (product, size, color) row in a cart
type LineItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	CartID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"` // price captured at add time
	Size      string          `gorm:"type:varchar(20);not null"`
	Color     string          `gorm:"type:varchar(50);not null"`
	Quantity  int             `gorm:"not null"`
	ImageURL  string          `gorm:"type:varchar(500)"`
	Position  int             `gorm:"not null;default:0"` // insertion order within the cart
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "cart_items"
}

// NewLineItem creates a new cart line item from a product snapshot
func NewLineItem(cartID uuid.UUID, snapshot ProductSnapshot, size, color string, quantity, position int) (*LineItem, error) {
	if snapshot.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if snapshot.Name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if size == "" {
		return nil, shared.NewDomainError("INVALID_SIZE", "Size cannot be empty")
	}
	if color == "" {
		return nil, shared.NewDomainError("INVALID_COLOR", "Color cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if snapshot.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &LineItem{
		ID:        uuid.New(),
		CartID:    cartID,
		ProductID: snapshot.ProductID,
		Name:      snapshot.Name,
		UnitPrice: snapshot.UnitPrice,
		Size:      size,
		Color:     color,
		Quantity:  quantity,
		ImageURL:  snapshot.ImageURL,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Matches returns true if the line item refers to the same purchasable
// unit as the candidate. Size and color compare case-sensitively.
func (i *LineItem) Matches(productID uuid.UUID, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}

// Subtotal returns unit price multiplied by quantity
func (i *LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// GetUnitPriceMoney returns the unit price as Money value object
func (i *LineItem) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.UnitPrice)
}

// MatchLineItem finds the index of the line item matching the candidate
// (productID, size, color), or -1 if no row matches. All three fields
// must be exactly equal; items differing only in size or only in color
// are distinct rows.
func MatchLineItem(items []LineItem, productID uuid.UUID, size, color string) int {
	for idx := range items {
		if items[idx].Matches(productID, size, color) {
			return idx
		}
	}
	return -1
}

// Cart is the aggregate root for purchase-intent line items.
// A cart is owned by exactly one of a registered user (OwnerID) or an
// anonymous guest (GuestToken), never both. TotalPrice is derived from
// the line items and recomputed in full after every mutation.
type Cart struct {
	shared.BaseAggregateRoot
	OwnerID    *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	GuestToken *string         `gorm:"type:varchar(128);uniqueIndex"`
	Items      []LineItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewUserCart creates a new empty cart owned by a registered user
func NewUserCart(ownerID uuid.UUID) (*Cart, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}

	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           &ownerID,
		Items:             make([]LineItem, 0),
		TotalPrice:        decimal.Zero,
	}, nil
}

// NewGuestCart creates a new empty cart keyed by a guest token
func NewGuestCart(guestToken string) (*Cart, error) {
	if guestToken == "" {
		return nil, shared.NewDomainError("INVALID_GUEST_TOKEN", "Guest token cannot be empty")
	}

	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		GuestToken:        &guestToken,
		Items:             make([]LineItem, 0),
		TotalPrice:        decimal.Zero,
	}, nil
}

// IsGuest returns true if the cart is keyed by a guest token
func (c *Cart) IsGuest() bool {
	return c.GuestToken != nil
}

// IsEmpty returns true if the cart has no line items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the number of distinct line items
func (c *Cart) ItemCount() int {
	return len(c.Items)
}

// TotalQuantity returns the sum of all line item quantities
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// GetTotalPriceMoney returns the cart total as Money
func (c *Cart) GetTotalPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(c.TotalPrice)
}

// FindItem returns the line item matching (productID, size, color), or nil
func (c *Cart) FindItem(productID uuid.UUID, size, color string) *LineItem {
	if idx := MatchLineItem(c.Items, productID, size, color); idx >= 0 {
		return &c.Items[idx]
	}
	return nil
}

// AddItem adds quantity of a product variant to the cart.
// If a row already matches (productID, size, color) its quantity is
// incremented; otherwise a new row is appended carrying the product
// snapshot. The total is recomputed either way.
func (c *Cart) AddItem(snapshot ProductSnapshot, size, color string, quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	if idx := MatchLineItem(c.Items, snapshot.ProductID, size, color); idx >= 0 {
		c.Items[idx].Quantity += quantity
		c.Items[idx].UpdatedAt = time.Now()
	} else {
		item, err := NewLineItem(c.ID, snapshot, size, color, quantity, c.nextPosition())
		if err != nil {
			return err
		}
		c.Items = append(c.Items, *item)
	}

	c.recalculateTotal()
	c.UpdatedAt = time.Now()

	return nil
}

// SetItemQuantity overwrites the quantity of the matching row.
// A quantity of zero or less removes the row instead of keeping a
// zero-quantity entry.
func (c *Cart) SetItemQuantity(productID uuid.UUID, size, color string, quantity int) error {
	idx := MatchLineItem(c.Items, productID, size, color)
	if idx < 0 {
		return ErrItemNotFound
	}

	if quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = quantity
		c.Items[idx].UpdatedAt = time.Now()
	}

	c.recalculateTotal()
	c.UpdatedAt = time.Now()

	return nil
}

// RemoveItem deletes the matching row from the cart
func (c *Cart) RemoveItem(productID uuid.UUID, size, color string) error {
	idx := MatchLineItem(c.Items, productID, size, color)
	if idx < 0 {
		return ErrItemNotFound
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.recalculateTotal()
	c.UpdatedAt = time.Now()

	return nil
}

// MergeFrom folds the line items of a guest cart into this cart.
// Guest items matching an existing row add their quantity to it;
// unmatched guest items are appended as-is, keeping the price snapshot
// they were created with. The total is recomputed from the merged rows.
func (c *Cart) MergeFrom(guest *Cart) error {
	if guest == nil || guest.IsEmpty() {
		return ErrEmptyGuestCart
	}

	for _, guestItem := range guest.Items {
		if idx := MatchLineItem(c.Items, guestItem.ProductID, guestItem.Size, guestItem.Color); idx >= 0 {
			c.Items[idx].Quantity += guestItem.Quantity
			c.Items[idx].UpdatedAt = time.Now()
			continue
		}

		item := guestItem
		item.ID = uuid.New()
		item.CartID = c.ID
		item.Position = c.nextPosition()
		item.UpdatedAt = time.Now()
		c.Items = append(c.Items, item)
	}

	c.recalculateTotal()
	c.UpdatedAt = time.Now()

	return nil
}

// Reown converts a guest cart into a cart owned by the given user.
// The line items and total carry over unchanged; the guest token is
// cleared so the cart can no longer be resolved by it.
func (c *Cart) Reown(ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if !c.IsGuest() {
		return shared.NewDomainError("INVALID_STATE", "Cart is already owned by a user")
	}

	c.OwnerID = &ownerID
	c.GuestToken = nil
	c.UpdatedAt = time.Now()

	return nil
}

// Clear removes all line items, leaving an empty cart
func (c *Cart) Clear() {
	c.Items = make([]LineItem, 0)
	c.recalculateTotal()
	c.UpdatedAt = time.Now()
}

// recalculateTotal recomputes the total from scratch over all line
// items. The recomputation is unconditional and full so the stored
// total can never drift from the rows that justify it.
func (c *Cart) recalculateTotal() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	c.TotalPrice = total
}

func (c *Cart) nextPosition() int {
	max := -1
	for _, item := range c.Items {
		if item.Position > max {
			max = item.Position
		}
	}
	return max + 1
}
