package catalog

import (
	"time"

	"github.com/cartly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Review represents a buyer's review of a product.
// At most one review per (product, user) pair.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user,priority:2"`
	UserName  string    `gorm:"type:varchar(200);not null"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "product_reviews"
}

// AddReview adds a review to the product and recomputes the rating
// aggregates. Each user may review a product at most once; purchase
// verification is the application layer's responsibility.
func (p *Product) AddReview(userID uuid.UUID, userName string, rating int, comment string) (*Review, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if userName == "" {
		return nil, shared.NewDomainError("INVALID_USER_NAME", "User name cannot be empty")
	}
	if rating < 1 || rating > 5 {
		return nil, shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	if comment == "" {
		return nil, shared.NewDomainError("INVALID_COMMENT", "Comment cannot be empty")
	}

	for _, r := range p.Reviews {
		if r.UserID == userID {
			return nil, shared.NewDomainError("ALREADY_REVIEWED", "Product already reviewed by this user")
		}
	}

	review := Review{
		ID:        uuid.New(),
		ProductID: p.ID,
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}

	p.Reviews = append(p.Reviews, review)
	p.recalculateRating()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return &review, nil
}

// HasReviewFrom returns true if the user already reviewed the product
func (p *Product) HasReviewFrom(userID uuid.UUID) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// recalculateRating recomputes ReviewCount and AverageRating from the
// full review list
func (p *Product) recalculateRating() {
	p.ReviewCount = len(p.Reviews)
	if p.ReviewCount == 0 {
		p.AverageRating = decimal.Zero
		return
	}

	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.AverageRating = decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(p.ReviewCount))).
		Round(2)
}
