package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartly/backend/internal/domain/catalog"
)

// CreateProductRequest is the admin request to create a product
type CreateProductRequest struct {
	Name          string       `json:"name" binding:"required,max=200"`
	Description   string       `json:"description" binding:"required"`
	SKU           string       `json:"sku" binding:"required,max=50"`
	Price         string       `json:"price" binding:"required"`
	DiscountPrice string       `json:"discountPrice"`
	CountInStock  int          `json:"countInStock" binding:"min=0"`
	Category      string       `json:"category" binding:"required"`
	Collection    string       `json:"collection" binding:"required"`
	Brand         string       `json:"brand"`
	Material      string       `json:"material"`
	Gender        string       `json:"gender"`
	Sizes         []string     `json:"sizes" binding:"required,min=1"`
	Colors        []string     `json:"colors" binding:"required,min=1"`
	Tags          []string     `json:"tags"`
	Images        []ImageInput `json:"images"`
	IsFeatured    bool         `json:"isFeatured"`
	IsPublished   bool         `json:"isPublished"`
}

// UpdateProductRequest is the admin request to update a product.
// Pointer fields are only applied when present.
type UpdateProductRequest struct {
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	Price         *string      `json:"price"`
	DiscountPrice *string      `json:"discountPrice"`
	CountInStock  *int         `json:"countInStock"`
	Category      *string      `json:"category"`
	Collection    *string      `json:"collection"`
	Brand         *string      `json:"brand"`
	Material      *string      `json:"material"`
	Gender        *string      `json:"gender"`
	Sizes         []string     `json:"sizes"`
	Colors        []string     `json:"colors"`
	Tags          []string     `json:"tags"`
	Images        []ImageInput `json:"images"`
	IsFeatured    *bool        `json:"isFeatured"`
	IsPublished   *bool        `json:"isPublished"`
}

// ImageInput is one image in a create or update request
type ImageInput struct {
	URL     string `json:"url" binding:"required,max=500"`
	AltText string `json:"altText"`
}

// AddReviewRequest is the buyer request to review a product
type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// ImageResponse is one product image in API responses
type ImageResponse struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

// ReviewResponse is one product review in API responses
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductResponse is the full product representation
type ProductResponse struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	SKU           string           `json:"sku"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	CountInStock  int              `json:"countInStock"`
	Category      string           `json:"category"`
	Collection    string           `json:"collection"`
	Brand         string           `json:"brand,omitempty"`
	Material      string           `json:"material,omitempty"`
	Gender        string           `json:"gender,omitempty"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
	Tags          []string         `json:"tags,omitempty"`
	Images        []ImageResponse  `json:"images"`
	IsFeatured    bool             `json:"isFeatured"`
	IsPublished   bool             `json:"isPublished"`
	AverageRating decimal.Decimal  `json:"rating"`
	ReviewCount   int              `json:"numReviews"`
	Reviews       []ReviewResponse `json:"reviews,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// ProductListResult is one page of a product listing
type ProductListResult struct {
	Products   []ProductResponse `json:"products"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// ToProductResponse maps a product aggregate to its API representation.
// Reviews are included only when withReviews is set; listings omit them.
func ToProductResponse(p *catalog.Product, withReviews bool) ProductResponse {
	images := make([]ImageResponse, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ImageResponse{URL: img.URL, AltText: img.AltText})
	}

	resp := ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		SKU:           p.SKU,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		CountInStock:  p.CountInStock,
		Category:      p.Category,
		Collection:    p.Collection,
		Brand:         p.Brand,
		Material:      p.Material,
		Gender:        string(p.Gender),
		Sizes:         p.Sizes,
		Colors:        p.Colors,
		Tags:          p.Tags,
		Images:        images,
		IsFeatured:    p.IsFeatured,
		IsPublished:   p.IsPublished,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}

	if withReviews {
		reviews := make([]ReviewResponse, 0, len(p.Reviews))
		for _, r := range p.Reviews {
			reviews = append(reviews, ToReviewResponse(&r))
		}
		resp.Reviews = reviews
	}

	return resp
}

// ToReviewResponse maps a review to its API representation
func ToReviewResponse(r *catalog.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
