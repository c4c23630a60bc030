package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cartly/backend/internal/domain/order"
	"github.com/cartly/backend/internal/domain/shared"
)

func newTestOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	items := []order.OrderItem{{
		ProductID: uuid.New(),
		Name:      "Denim Jacket",
		UnitPrice: decimal.RequireFromString("79.99"),
		Size:      "M",
		Color:     "Blue",
		Quantity:  2,
	}}
	o, err := order.NewOrder(userID, items, testAddress().toDomain(), "paypal", time.Now())
	require.NoError(t, err)
	return o
}

func TestOrderService_MyOrders(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, zap.NewNop())

	userID := uuid.New()
	repo.On("FindByUser", ctx, userID).Return([]order.Order{*newTestOrder(t, userID)}, nil)

	result, err := svc.MyOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.True(t, result[0].TotalPrice.Equal(decimal.RequireFromString("159.98")))
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the user's own order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, zap.NewNop())

		userID := uuid.New()
		o := newTestOrder(t, userID)
		repo.On("FindByID", ctx, o.ID).Return(o, nil)

		result, err := svc.GetByID(ctx, userID, o.ID, false)
		require.NoError(t, err)
		assert.Equal(t, o.ID, result.ID)
	})

	t.Run("hides other users' orders", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, zap.NewNop())

		o := newTestOrder(t, uuid.New())
		repo.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := svc.GetByID(ctx, uuid.New(), o.ID, false)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ORDER_NOT_FOUND", domainErr.Code)
	})

	t.Run("lets admins see any order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, zap.NewNop())

		o := newTestOrder(t, uuid.New())
		repo.On("FindByID", ctx, o.ID).Return(o, nil)

		result, err := svc.GetByID(ctx, uuid.New(), o.ID, true)
		require.NoError(t, err)
		assert.Equal(t, o.ID, result.ID)
	})

	t.Run("maps a missing order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, zap.NewNop())

		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.GetByID(ctx, uuid.New(), id, true)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ORDER_NOT_FOUND", domainErr.Code)
	})
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, zap.NewNop())

	orders := []order.Order{*newTestOrder(t, uuid.New()), *newTestOrder(t, uuid.New())}
	repo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Return(orders, nil)
	repo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(12), nil)

	result, err := svc.List(ctx, shared.Filter{Page: 1, PageSize: 5})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 2)
	assert.Equal(t, int64(12), result.Total)
	assert.Equal(t, 3, result.TotalPages)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the order through the pipeline", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, zap.NewNop())

		o := newTestOrder(t, uuid.New())
		repo.On("FindByID", ctx, o.ID).Return(o, nil)
		repo.On("Save", ctx, o).Return(nil)

		result, err := svc.UpdateStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: "Shipped"})
		require.NoError(t, err)
		assert.Equal(t, "Shipped", result.Status)

		result, err = svc.UpdateStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: "Delivered"})
		require.NoError(t, err)
		assert.Equal(t, "Delivered", result.Status)
		assert.True(t, result.IsDelivered)
		assert.NotNil(t, result.DeliveredAt)
	})

	t.Run("rejects an illegal transition", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, zap.NewNop())

		o := newTestOrder(t, uuid.New())
		repo.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := svc.UpdateStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: "Delivered"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, zap.NewNop())

		o := newTestOrder(t, uuid.New())
		repo.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := svc.UpdateStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: "Teleported"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATUS", domainErr.Code)
	})
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an existing order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, zap.NewNop())

		o := newTestOrder(t, uuid.New())
		repo.On("FindByID", ctx, o.ID).Return(o, nil)
		repo.On("Delete", ctx, o.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, o.ID))
		repo.AssertExpectations(t)
	})

	t.Run("maps a missing order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		svc := NewOrderService(repo, zap.NewNop())

		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		err := svc.Delete(ctx, id)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ORDER_NOT_FOUND", domainErr.Code)
	})
}
