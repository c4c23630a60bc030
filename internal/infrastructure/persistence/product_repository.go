package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/cartly/backend/internal/domain/catalog"
	"github.com/cartly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID including images and reviews
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.position ASC")
		}).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_reviews.created_at DESC")
		}).
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySKU finds a product by SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	if sku == "" {
		return nil, shared.ErrNotFound
	}
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Images").
		Where("sku = ?", strings.ToUpper(sku)).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll returns products matching the filter and the total match count
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	var products []catalog.Product
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySort(query, filter.SortBy)
	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	if err := query.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.position ASC")
		}).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// FindBestSeller returns the published product with the highest average
// rating, or (nil, nil) when there are no published products
func (r *GormProductRepository) FindBestSeller(ctx context.Context) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.position ASC")
		}).
		Where("is_published = ?", true).
		Order("average_rating DESC").
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindNewArrivals returns the most recently created published products
func (r *GormProductRepository) FindNewArrivals(ctx context.Context, limit int) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.position ASC")
		}).
		Where("is_published = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindSimilar returns published products sharing the gender and category
// of the given product, excluding the product itself
func (r *GormProductRepository) FindSimilar(ctx context.Context, product *catalog.Product, limit int) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.position ASC")
		}).
		Where("is_published = ?", true).
		Where("id <> ?", product.ID).
		Where("gender = ? AND category = ?", product.Gender, product.Category).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ExistsBySKU checks if a product with the SKU exists
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	if sku == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("sku = ?", strings.ToUpper(sku)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product and replaces its images and reviews
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images", "Reviews").Save(product).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&catalog.ProductImage{}).Error; err != nil {
			return err
		}
		if len(product.Images) > 0 {
			if err := tx.Create(&product.Images).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&catalog.Review{}).Error; err != nil {
			return err
		}
		if len(product.Reviews) > 0 {
			if err := tx.Create(&product.Reviews).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a product with its images and reviews
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&catalog.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&catalog.Review{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies storefront filter options to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if !filter.IncludeUnpublished {
		query = query.Where("is_published = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Collection != "" {
		query = query.Where("collection = ?", filter.Collection)
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}
	if len(filter.Brands) > 0 {
		query = query.Where("brand IN ?", filter.Brands)
	}
	if len(filter.Materials) > 0 {
		query = query.Where("material IN ?", filter.Materials)
	}
	// Array overlap: product matches when it offers any of the requested variants
	if len(filter.Sizes) > 0 {
		query = query.Where("sizes && ?", pq.StringArray(filter.Sizes))
	}
	if len(filter.Colors) > 0 {
		query = query.Where("colors && ?", pq.StringArray(filter.Colors))
	}
	// Price bounds apply to the effective price, so discounted products
	// are matched by what the shopper would actually pay
	if filter.MinPrice != nil {
		query = query.Where("COALESCE(discount_price, price) >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("COALESCE(discount_price, price) <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}
	return query
}

// applySort maps storefront sort options to SQL ordering
func (r *GormProductRepository) applySort(query *gorm.DB, sortBy string) *gorm.DB {
	switch sortBy {
	case catalog.SortPriceAsc:
		return query.Order("COALESCE(discount_price, price) ASC")
	case catalog.SortPriceDesc:
		return query.Order("COALESCE(discount_price, price) DESC")
	case catalog.SortPopularity:
		return query.Order("average_rating DESC")
	default:
		return query.Order("created_at DESC")
	}
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
