package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cartly/backend/internal/domain/cart"
	"github.com/cartly/backend/internal/domain/order"
	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/infrastructure/telemetry"
)

// CheckoutService drives the checkout flow: cart snapshot, payment
// verification through the gateway, and finalization into an order.
type CheckoutService struct {
	checkoutRepo order.CheckoutRepository
	orderRepo    order.OrderRepository
	cartRepo     cart.Repository
	gateway      order.PaymentGateway
	metrics      *telemetry.BusinessMetrics
	logger       *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	checkoutRepo order.CheckoutRepository,
	orderRepo order.OrderRepository,
	cartRepo cart.Repository,
	gateway order.PaymentGateway,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		checkoutRepo: checkoutRepo,
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		gateway:      gateway,
		logger:       logger,
	}
}

// WithMetrics attaches business metrics recording
func (s *CheckoutService) WithMetrics(metrics *telemetry.BusinessMetrics) *CheckoutService {
	s.metrics = metrics
	return s
}

// Create opens a checkout session from the user's current cart
func (s *CheckoutService) Create(ctx context.Context, userID uuid.UUID, req CreateCheckoutRequest) (*CheckoutResponse, error) {
	userCart, err := s.cartRepo.FindByOwnerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if userCart == nil || userCart.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot check out an empty cart")
	}

	items := make([]order.CheckoutItem, 0, len(userCart.Items))
	for _, line := range userCart.Items {
		items = append(items, order.CheckoutItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
		})
	}

	checkout, err := order.NewCheckout(userID, items, req.ShippingAddress.toDomain(), req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if err := s.checkoutRepo.Save(ctx, checkout); err != nil {
		return nil, err
	}

	s.logger.Info("Checkout created",
		zap.String("checkout_id", checkout.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", checkout.TotalPrice.String()))

	resp := ToCheckoutResponse(checkout)
	return &resp, nil
}

// Pay verifies the gateway transaction and marks the checkout paid or
// failed accordingly. A failed verification is recorded on the checkout
// and reported as PAYMENT_FAILED so the buyer can retry.
func (s *CheckoutService) Pay(ctx context.Context, userID, checkoutID uuid.UUID, req PayCheckoutRequest) (*CheckoutResponse, error) {
	checkout, err := s.findOwnedCheckout(ctx, userID, checkoutID)
	if err != nil {
		return nil, err
	}
	if checkout.IsFinalized {
		return nil, order.ErrCheckoutFinalized
	}
	if checkout.IsPaid {
		return nil, shared.NewDomainError("ALREADY_PAID", "Checkout is already paid")
	}

	verification, err := s.gateway.VerifyPayment(ctx, checkout.ID, req.TransactionID, checkout.GetTotalPriceMoney())
	if err != nil {
		s.logger.Error("Payment verification failed",
			zap.String("checkout_id", checkout.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("PAYMENT_VERIFICATION_FAILED", "Could not verify the payment with the provider")
	}

	if !verification.Succeeded {
		if err := checkout.MarkPaymentFailed(verification.RawDetails); err != nil {
			return nil, err
		}
		if err := s.checkoutRepo.Save(ctx, checkout); err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.RecordPayment(ctx, checkout.PaymentMethod, telemetry.PaymentStatusFailed)
		}
		s.logger.Warn("Payment not captured",
			zap.String("checkout_id", checkout.ID.String()),
			zap.String("transaction_id", req.TransactionID))
		return nil, shared.NewDomainError("PAYMENT_FAILED", "The payment was not captured")
	}

	if err := checkout.MarkPaid(verification.RawDetails, time.Now()); err != nil {
		return nil, err
	}
	if err := s.checkoutRepo.Save(ctx, checkout); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordPayment(ctx, checkout.PaymentMethod, telemetry.PaymentStatusSuccess)
	}

	s.logger.Info("Checkout paid",
		zap.String("checkout_id", checkout.ID.String()),
		zap.String("transaction_id", verification.TransactionID))

	resp := ToCheckoutResponse(checkout)
	return &resp, nil
}

// Finalize converts a paid checkout into an order and clears the user's
// cart. Finalizing twice fails instead of duplicating the order.
func (s *CheckoutService) Finalize(ctx context.Context, userID, checkoutID uuid.UUID) (*OrderResponse, error) {
	checkout, err := s.findOwnedCheckout(ctx, userID, checkoutID)
	if err != nil {
		return nil, err
	}

	newOrder, err := checkout.Finalize()
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, newOrder); err != nil {
		return nil, err
	}
	if err := s.checkoutRepo.Save(ctx, checkout); err != nil {
		return nil, err
	}

	// The cart served its purpose; a failure here leaves a stale cart
	// behind but does not undo the order
	userCart, err := s.cartRepo.FindByOwnerID(ctx, userID)
	if err == nil && userCart != nil {
		if err := s.cartRepo.Delete(ctx, userCart.ID); err != nil {
			s.logger.Warn("Failed to clear cart after checkout",
				zap.String("cart_id", userCart.ID.String()),
				zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordOrderWithAmount(ctx, newOrder.TotalPrice)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", newOrder.ID.String()),
		zap.String("checkout_id", checkout.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", newOrder.TotalPrice.String()))

	resp := ToOrderResponse(newOrder)
	return &resp, nil
}

// GetByID returns a checkout session, owner-bound
func (s *CheckoutService) GetByID(ctx context.Context, userID, checkoutID uuid.UUID) (*CheckoutResponse, error) {
	checkout, err := s.findOwnedCheckout(ctx, userID, checkoutID)
	if err != nil {
		return nil, err
	}

	resp := ToCheckoutResponse(checkout)
	return &resp, nil
}

// findOwnedCheckout loads a checkout and hides other users' sessions
// behind CHECKOUT_NOT_FOUND rather than revealing their existence
func (s *CheckoutService) findOwnedCheckout(ctx context.Context, userID, checkoutID uuid.UUID) (*order.Checkout, error) {
	checkout, err := s.checkoutRepo.FindByID(ctx, checkoutID)
	if err != nil {
		return nil, order.ErrCheckoutNotFound
	}
	if checkout.UserID != userID {
		return nil, order.ErrCheckoutNotFound
	}
	return checkout, nil
}
