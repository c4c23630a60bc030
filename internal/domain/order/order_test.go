package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func testAddress() ShippingAddress {
	return ShippingAddress{
		FirstName:  "Jane",
		LastName:   "Doe",
		Address:    "1 Main St",
		City:       "Nairobi",
		PostalCode: "00100",
		Country:    "Kenya",
		Phone:      "0712345678",
	}
}

func testOrderItems() []OrderItem {
	return []OrderItem{
		{
			ProductID: uuid.New(),
			Name:      "Shirt",
			UnitPrice: decimal.NewFromInt(30),
			Size:      "M",
			Color:     "Red",
			Quantity:  2,
		},
		{
			ProductID: uuid.New(),
			Name:      "Hat",
			UnitPrice: decimal.NewFromInt(10),
			Size:      "One Size",
			Color:     "Black",
			Quantity:  1,
		},
	}
}

func createTestOrder(t *testing.T) *Order {
	o, err := NewOrder(uuid.New(), testOrderItems(), testAddress(), "Paypal", time.Now())
	require.NoError(t, err)
	return o
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusProcessing, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewOrder(t *testing.T) {
	o := createTestOrder(t)

	assert.Len(t, o.Items, 2)
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(70)))
	assert.True(t, o.IsPaid)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, OrderStatusProcessing, o.Status)
	for _, item := range o.Items {
		assert.Equal(t, o.ID, item.OrderID)
		assert.NotEqual(t, uuid.Nil, item.ID)
	}
}

func TestNewOrder_Validation(t *testing.T) {
	_, err := NewOrder(uuid.Nil, testOrderItems(), testAddress(), "Paypal", time.Now())
	assert.Error(t, err)

	_, err = NewOrder(uuid.New(), nil, testAddress(), "Paypal", time.Now())
	assert.Error(t, err)

	badAddr := testAddress()
	badAddr.City = ""
	_, err = NewOrder(uuid.New(), testOrderItems(), badAddr, "Paypal", time.Now())
	assert.Error(t, err)

	_, err = NewOrder(uuid.New(), testOrderItems(), testAddress(), "", time.Now())
	assert.Error(t, err)
}

func TestOrder_UpdateStatus(t *testing.T) {
	o := createTestOrder(t)

	require.NoError(t, o.UpdateStatus(OrderStatusShipped))
	assert.Equal(t, OrderStatusShipped, o.Status)
	assert.False(t, o.IsDelivered)

	require.NoError(t, o.UpdateStatus(OrderStatusDelivered))
	assert.True(t, o.IsDelivered)
	require.NotNil(t, o.DeliveredAt)
	assert.True(t, o.IsTerminal())

	assert.Error(t, o.UpdateStatus(OrderStatusProcessing))
}

func TestOrder_UpdateStatus_SameStatusIsNoop(t *testing.T) {
	o := createTestOrder(t)
	require.NoError(t, o.UpdateStatus(OrderStatusProcessing))
	assert.Equal(t, OrderStatusProcessing, o.Status)
}

func TestOrder_MarkDelivered_FromProcessing(t *testing.T) {
	o := createTestOrder(t)

	require.NoError(t, o.MarkDelivered())
	assert.Equal(t, OrderStatusDelivered, o.Status)
	assert.True(t, o.IsDelivered)
}

func TestOrder_ContainsProduct(t *testing.T) {
	o := createTestOrder(t)

	assert.True(t, o.ContainsProduct(o.Items[0].ProductID))
	assert.False(t, o.ContainsProduct(uuid.New()))
}

// ============================================
// Checkout Tests
// ============================================

func testCheckoutItems() []CheckoutItem {
	return []CheckoutItem{
		{
			ProductID: uuid.New(),
			Name:      "Shirt",
			UnitPrice: decimal.NewFromInt(30),
			Size:      "M",
			Color:     "Red",
			Quantity:  2,
		},
		{
			ProductID: uuid.New(),
			Name:      "Hat",
			UnitPrice: decimal.NewFromInt(10),
			Size:      "One Size",
			Color:     "Black",
			Quantity:  1,
		},
	}
}

func createTestCheckout(t *testing.T) *Checkout {
	c, err := NewCheckout(uuid.New(), testCheckoutItems(), testAddress(), "Paypal")
	require.NoError(t, err)
	return c
}

func TestNewCheckout(t *testing.T) {
	c := createTestCheckout(t)

	assert.Len(t, c.Items, 2)
	// total computed from items, not caller-supplied
	assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, PaymentStatusPending, c.PaymentStatus)
	assert.False(t, c.IsPaid)
	assert.False(t, c.IsFinalized)
}

func TestNewCheckout_Validation(t *testing.T) {
	_, err := NewCheckout(uuid.Nil, testCheckoutItems(), testAddress(), "Paypal")
	assert.Error(t, err)

	_, err = NewCheckout(uuid.New(), nil, testAddress(), "Paypal")
	assert.Error(t, err)

	items := testCheckoutItems()
	items[0].Quantity = 0
	_, err = NewCheckout(uuid.New(), items, testAddress(), "Paypal")
	assert.Error(t, err)
}

func TestCheckout_MarkPaid(t *testing.T) {
	c := createTestCheckout(t)
	paidAt := time.Now()

	require.NoError(t, c.MarkPaid(`{"id":"txn-1"}`, paidAt))

	assert.True(t, c.IsPaid)
	assert.Equal(t, PaymentStatusPaid, c.PaymentStatus)
	assert.Equal(t, `{"id":"txn-1"}`, c.PaymentDetails)

	assert.Error(t, c.MarkPaid("{}", time.Now()))
}

func TestCheckout_MarkPaymentFailed(t *testing.T) {
	c := createTestCheckout(t)

	require.NoError(t, c.MarkPaymentFailed(`{"error":"declined"}`))
	assert.Equal(t, PaymentStatusFailed, c.PaymentStatus)
	assert.False(t, c.IsPaid)

	// a later successful attempt can still be recorded
	require.NoError(t, c.MarkPaid("{}", time.Now()))
	assert.True(t, c.IsPaid)
}

func TestCheckout_Finalize(t *testing.T) {
	c := createTestCheckout(t)
	require.NoError(t, c.MarkPaid(`{"id":"txn-1"}`, time.Now()))

	o, err := c.Finalize()
	require.NoError(t, err)

	assert.True(t, c.IsFinalized)
	require.NotNil(t, c.FinalizedAt)
	assert.Equal(t, c.UserID, o.UserID)
	assert.Len(t, o.Items, 2)
	assert.True(t, o.TotalPrice.Equal(c.TotalPrice))
	assert.True(t, o.IsPaid)
	assert.Equal(t, c.ShippingAddress, o.ShippingAddress)
}

func TestCheckout_Finalize_RequiresPayment(t *testing.T) {
	c := createTestCheckout(t)

	_, err := c.Finalize()
	assert.ErrorIs(t, err, ErrCheckoutNotPaid)
}

func TestCheckout_Finalize_OnlyOnce(t *testing.T) {
	c := createTestCheckout(t)
	require.NoError(t, c.MarkPaid("{}", time.Now()))

	_, err := c.Finalize()
	require.NoError(t, err)

	_, err = c.Finalize()
	assert.ErrorIs(t, err, ErrCheckoutFinalized)

	assert.ErrorIs(t, c.MarkPaid("{}", time.Now()), ErrCheckoutFinalized)
}
