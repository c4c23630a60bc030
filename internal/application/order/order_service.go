package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cartly/backend/internal/domain/order"
	"github.com/cartly/backend/internal/domain/shared"
)

// OrderService handles order queries and admin fulfillment management
type OrderService struct {
	orderRepo order.OrderRepository
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// MyOrders returns all orders of the user, newest first
func (s *OrderService) MyOrders(ctx context.Context, userID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses, nil
}

// GetByID returns a single order. Buyers only see their own orders;
// admin access skips the ownership check.
func (s *OrderService) GetByID(ctx context.Context, userID, orderID uuid.UUID, isAdmin bool) (*OrderResponse, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, order.ErrOrderNotFound
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns one page of all orders (admin only)
func (s *OrderService) List(ctx context.Context, filter shared.Filter) (*OrderListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}

	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	return &OrderListResult{
		Orders:     responses,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus moves an order along the fulfillment pipeline (admin only)
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.UpdateStatus(order.OrderStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", o.Status.String()))

	resp := ToOrderResponse(o)
	return &resp, nil
}

// Delete removes an order (admin only)
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	if _, err := s.findOrder(ctx, orderID); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return err
	}

	s.logger.Info("Order deleted", zap.String("order_id", orderID.String()))
	return nil
}

func (s *OrderService) findOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}
