package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cartly/backend/internal/domain/catalog"
	"github.com/cartly/backend/internal/domain/identity"
	"github.com/cartly/backend/internal/domain/order"
	"github.com/cartly/backend/internal/domain/shared"
)

// ReviewService handles product reviews. Only buyers with a delivered
// order containing the product may review it, once each.
type ReviewService struct {
	productRepo catalog.ProductRepository
	orderRepo   order.OrderRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	productRepo catalog.ProductRepository,
	orderRepo order.OrderRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// AddReview records a review for a product on behalf of a user
func (s *ReviewService) AddReview(ctx context.Context, productID, userID uuid.UUID, req AddReviewRequest) (*ReviewResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsPublished {
		return nil, catalog.ErrProductNotFound
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if product.HasReviewFrom(userID) {
		return nil, shared.NewDomainError("ALREADY_REVIEWED", "You have already reviewed this product")
	}

	purchased, err := s.orderRepo.ExistsDeliveredWithProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, shared.NewDomainError("REVIEW_NOT_ALLOWED", "Only buyers of a delivered order can review this product")
	}

	review, err := product.AddReview(userID, user.Name, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Review added",
		zap.String("product_id", productID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("rating", req.Rating))

	resp := ToReviewResponse(review)
	return &resp, nil
}
