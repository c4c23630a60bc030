package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sort options for product listings
const (
	SortPriceAsc   = "priceAsc"
	SortPriceDesc  = "priceDesc"
	SortPopularity = "popularity"
	SortNewest     = "newest"
)

// ProductFilter carries the query parameters for product listings
type ProductFilter struct {
	Category   string
	Collection string
	Gender     Gender
	Brands     []string
	Materials  []string
	Sizes      []string
	Colors     []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string // matches name or description, case-insensitive
	SortBy     string
	Page       int
	PageSize   int

	// IncludeUnpublished is only honored for admin listings
	IncludeUnpublished bool
}

// DefaultProductFilter returns a filter with default pagination
func DefaultProductFilter() ProductFilter {
	return ProductFilter{
		Page:     1,
		PageSize: 10,
		SortBy:   SortNewest,
	}
}

// Offset returns the pagination offset
func (f ProductFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the pagination limit
func (f ProductFilter) Limit() int {
	if f.PageSize < 1 {
		return 10
	}
	return f.PageSize
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID including images and reviews
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll finds products matching the filter, returning the page
	// of products and the total match count
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)

	// FindBestSeller returns the published product with the highest
	// average rating, or (nil, nil) when the catalog is empty
	FindBestSeller(ctx context.Context) (*Product, error)

	// FindNewArrivals returns the most recently created published products
	FindNewArrivals(ctx context.Context, limit int) ([]Product, error)

	// FindSimilar returns published products sharing the gender and
	// category of the given product, excluding the product itself
	FindSimilar(ctx context.Context, product *Product, limit int) ([]Product, error)

	// ExistsBySKU checks if a product with the SKU exists
	ExistsBySKU(ctx context.Context, sku string) (bool, error)

	// Save creates or updates a product with its images and reviews
	Save(ctx context.Context, product *Product) error

	// Delete removes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
