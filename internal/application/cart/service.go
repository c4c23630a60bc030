// Package cart implements the application services for cart mutation
// and the guest cart merge performed at login.
package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cartly/backend/internal/domain/cart"
	"github.com/cartly/backend/internal/domain/catalog"
	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/infrastructure/telemetry"
)

// Identity names the owner of a cart: exactly one of UserID (from the
// JWT context) or GuestToken (caller-supplied opaque token) is set.
type Identity struct {
	UserID     *uuid.UUID
	GuestToken string
}

// UserIdentity builds an identity for an authenticated user
func UserIdentity(userID uuid.UUID) Identity {
	return Identity{UserID: &userID}
}

// GuestIdentity builds an identity for an anonymous guest
func GuestIdentity(token string) Identity {
	return Identity{GuestToken: token}
}

// Valid returns true if exactly one identity source is set
func (id Identity) Valid() bool {
	return (id.UserID != nil) != (id.GuestToken != "")
}

// key returns the serialization key for the keyed mutex
func (id Identity) key() string {
	if id.UserID != nil {
		return "user:" + id.UserID.String()
	}
	return "guest:" + id.GuestToken
}

// Service orchestrates cart reads and mutations. Every mutation runs
// under a per-identity lock so the load-mutate-save cycle of one
// request cannot interleave with another request for the same cart.
type Service struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
	metrics     *telemetry.BusinessMetrics

	identityLocks *keyedMutex
}

// NewService creates a new cart Service
func NewService(cartRepo cart.Repository, productRepo catalog.ProductRepository) *Service {
	return &Service{
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		identityLocks: newKeyedMutex(),
	}
}

// WithMetrics attaches business metrics recording to the service
func (s *Service) WithMetrics(metrics *telemetry.BusinessMetrics) *Service {
	s.metrics = metrics
	return s
}

// GetCart returns the cart for the identity.
// Returns ErrCartNotFound when no cart exists yet; callers treat this
// as an empty-cart signal, not a failure.
func (s *Service) GetCart(ctx context.Context, identity Identity) (*CartResponse, error) {
	if !identity.Valid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Exactly one of user or guest identity must be provided")
	}

	c, err := s.findCart(ctx, identity)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrCartNotFound
	}

	return ToCartResponse(c), nil
}

// AddItem adds a product variant to the identity's cart, creating the
// cart on first use. A row already matching (product, size, color) has
// its quantity incremented; otherwise a new row captures the product's
// current effective price, name and primary image.
func (s *Service) AddItem(ctx context.Context, identity Identity, req AddItemRequest) (*CartResponse, error) {
	if !identity.Valid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Exactly one of user or guest identity must be provided")
	}
	if req.Quantity < 1 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be at least 1")
	}

	unlock := s.identityLocks.Lock(identity.key())
	defer unlock()

	product, err := s.resolveProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.HasVariant(req.Size, req.Color) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product is not available in this size and color")
	}

	c, err := s.findCart(ctx, identity)
	if err != nil {
		return nil, err
	}

	created := false
	if c == nil {
		c, err = s.newCart(identity)
		if err != nil {
			return nil, err
		}
		created = true
	}

	snapshot := cart.ProductSnapshot{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.EffectivePrice(),
		ImageURL:  product.PrimaryImageURL(),
	}
	if err := c.AddItem(snapshot, req.Size, req.Color, req.Quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		if created {
			s.metrics.RecordCartCreated(ctx, ownerKind(identity))
		}
		s.metrics.RecordCartItemsAdded(ctx, ownerKind(identity), int64(req.Quantity))
	}

	return ToCartResponse(c), nil
}

// UpdateItemQuantity overwrites the quantity of a line item.
// A quantity of zero or less removes the row.
func (s *Service) UpdateItemQuantity(ctx context.Context, identity Identity, req UpdateItemRequest) (*CartResponse, error) {
	if !identity.Valid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Exactly one of user or guest identity must be provided")
	}

	unlock := s.identityLocks.Lock(identity.key())
	defer unlock()

	c, err := s.findCart(ctx, identity)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrCartNotFound
	}

	if err := c.SetItemQuantity(req.ProductID, req.Size, req.Color, req.Quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	return ToCartResponse(c), nil
}

// RemoveItem deletes a line item from the identity's cart
func (s *Service) RemoveItem(ctx context.Context, identity Identity, req RemoveItemRequest) (*CartResponse, error) {
	if !identity.Valid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Exactly one of user or guest identity must be provided")
	}

	unlock := s.identityLocks.Lock(identity.key())
	defer unlock()

	c, err := s.findCart(ctx, identity)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrCartNotFound
	}

	if err := c.RemoveItem(req.ProductID, req.Size, req.Color); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	return ToCartResponse(c), nil
}

// MergeGuestCart folds the guest cart identified by guestToken into the
// user's cart at login. The cases are evaluated in order:
//
//  1. no guest cart exists: the user's cart is returned if there is
//     one, otherwise ErrNoCartToMerge;
//  2. the guest cart exists but is empty: ErrEmptyGuestCart;
//  3. the guest cart has items: with no user cart the guest cart is
//     re-owned to the user; with an existing user cart the guest rows
//     merge into it by (product, size, color), unmatched rows keeping
//     their original snapshots. The guest cart is deleted afterwards.
//
// A retry after a partial failure re-evaluates from case 1, so a merge
// that already consumed the guest cart reports ErrNoCartToMerge rather
// than merging twice.
func (s *Service) MergeGuestCart(ctx context.Context, userID uuid.UUID, guestToken string) (*CartResponse, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "User ID is required for cart merge")
	}
	if guestToken == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Guest token is required for cart merge")
	}

	unlock := s.identityLocks.Lock(UserIdentity(userID).key())
	defer unlock()
	unlockGuest := s.identityLocks.Lock(GuestIdentity(guestToken).key())
	defer unlockGuest()

	guestCart, err := s.cartRepo.FindByGuestToken(ctx, guestToken)
	if err != nil {
		return nil, err
	}

	userCart, err := s.cartRepo.FindByOwnerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Case 1: nothing to merge
	if guestCart == nil {
		if userCart != nil {
			s.recordMerge(ctx, telemetry.MergeOutcomeNoCart)
			return ToCartResponse(userCart), nil
		}
		s.recordMerge(ctx, telemetry.MergeOutcomeNoCart)
		return nil, cart.ErrNoCartToMerge
	}

	// Case 2: guest cart exists but holds nothing
	if guestCart.IsEmpty() {
		s.recordMerge(ctx, telemetry.MergeOutcomeEmptyGuest)
		return nil, cart.ErrEmptyGuestCart
	}

	// Case 3a: no user cart, re-own the guest cart wholesale
	if userCart == nil {
		if err := guestCart.Reown(userID); err != nil {
			return nil, err
		}
		if err := s.cartRepo.Save(ctx, guestCart); err != nil {
			return nil, err
		}
		s.recordMerge(ctx, telemetry.MergeOutcomeReowned)
		return ToCartResponse(guestCart), nil
	}

	// Case 3b: merge guest rows into the user cart, then retire the
	// guest cart so a second merge cannot double the quantities
	if err := userCart.MergeFrom(guestCart); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, userCart); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Delete(ctx, guestCart.ID); err != nil {
		return nil, err
	}

	s.recordMerge(ctx, telemetry.MergeOutcomeMerged)
	return ToCartResponse(userCart), nil
}

// ClearCart removes every line item from the identity's cart
func (s *Service) ClearCart(ctx context.Context, identity Identity) (*CartResponse, error) {
	if !identity.Valid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Exactly one of user or guest identity must be provided")
	}

	unlock := s.identityLocks.Lock(identity.key())
	defer unlock()

	c, err := s.findCart(ctx, identity)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrCartNotFound
	}

	c.Clear()
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	return ToCartResponse(c), nil
}

func (s *Service) findCart(ctx context.Context, identity Identity) (*cart.Cart, error) {
	if identity.UserID != nil {
		return s.cartRepo.FindByOwnerID(ctx, *identity.UserID)
	}
	return s.cartRepo.FindByGuestToken(ctx, identity.GuestToken)
}

func (s *Service) newCart(identity Identity) (*cart.Cart, error) {
	if identity.UserID != nil {
		return cart.NewUserCart(*identity.UserID)
	}
	return cart.NewGuestCart(identity.GuestToken)
}

// resolveProduct maps a missing or unpublished product to ErrProductNotFound
func (s *Service) resolveProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, cart.ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsPublished {
		return nil, cart.ErrProductNotFound
	}
	return product, nil
}

func (s *Service) recordMerge(ctx context.Context, outcome telemetry.MergeOutcome) {
	if s.metrics != nil {
		s.metrics.RecordCartMerge(ctx, outcome)
	}
}

func ownerKind(identity Identity) telemetry.OwnerKind {
	if identity.UserID != nil {
		return telemetry.OwnerKindUser
	}
	return telemetry.OwnerKindGuest
}
