package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cartly/backend/internal/domain/catalog"
	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/domain/shared/valueobject"
)

const (
	newArrivalsLimit     = 8
	similarProductsLimit = 4
)

// ProductService handles catalog queries and admin product management
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// List returns one page of products matching the filter. Unpublished
// products are only included when the filter says so (admin listings).
func (s *ProductService) List(ctx context.Context, filter catalog.ProductFilter) (*ProductListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}

	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i], false))
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	return &ProductListResult{
		Products:   responses,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetByID returns a single product with its reviews. Unpublished
// products are hidden from the storefront unless includeUnpublished is
// set (admin access).
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID, includeUnpublished bool) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsPublished && !includeUnpublished {
		return nil, catalog.ErrProductNotFound
	}

	resp := ToProductResponse(product, true)
	return &resp, nil
}

// BestSeller returns the published product with the highest average rating
func (s *ProductService) BestSeller(ctx context.Context) (*ProductResponse, error) {
	product, err := s.productRepo.FindBestSeller(ctx)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, catalog.ErrProductNotFound
	}

	resp := ToProductResponse(product, false)
	return &resp, nil
}

// NewArrivals returns the most recently added published products
func (s *ProductService) NewArrivals(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindNewArrivals(ctx, newArrivalsLimit)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i], false))
	}
	return responses, nil
}

// Similar returns published products sharing the gender and category of
// the given product
func (s *ProductService) Similar(ctx context.Context, id uuid.UUID) ([]ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindSimilar(ctx, product, similarProductsLimit)
	if err != nil {
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i], false))
	}
	return responses, nil
}

// Create creates a new product (admin only)
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this SKU already exists")
	}

	price, err := valueobject.NewMoneyUSDFromString(req.Price)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", "Invalid price format")
	}

	product, err := catalog.NewProduct(req.Name, req.Description, req.SKU, req.Category, req.Collection, price, req.Sizes, req.Colors)
	if err != nil {
		return nil, err
	}

	if req.DiscountPrice != "" {
		discount, err := valueobject.NewMoneyUSDFromString(req.DiscountPrice)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_DISCOUNT_PRICE", "Invalid discount price format")
		}
		if err := product.SetDiscountPrice(discount); err != nil {
			return nil, err
		}
	}

	if err := product.SetDetails(req.Brand, req.Material, catalog.Gender(req.Gender), req.Tags); err != nil {
		return nil, err
	}
	if err := product.SetStock(req.CountInStock); err != nil {
		return nil, err
	}
	for _, img := range req.Images {
		if err := product.AddImage(img.URL, img.AltText); err != nil {
			return nil, err
		}
	}
	product.SetFeatured(req.IsFeatured)
	if req.IsPublished {
		product.Publish()
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))

	resp := ToProductResponse(product, false)
	return &resp, nil
}

// Update applies a partial update to a product (admin only)
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	name := product.Name
	description := product.Description
	category := product.Category
	collection := product.Collection
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Category != nil {
		category = *req.Category
	}
	if req.Collection != nil {
		collection = *req.Collection
	}
	if err := product.Update(name, description, category, collection); err != nil {
		return nil, err
	}

	// The discount is cleared before the price changes so a combined
	// update cannot trip the discount-below-price check mid-way
	if req.DiscountPrice != nil {
		product.ClearDiscountPrice()
	}
	if req.Price != nil {
		price, err := valueobject.NewMoneyUSDFromString(*req.Price)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PRICE", "Invalid price format")
		}
		if err := product.SetPrice(price); err != nil {
			return nil, err
		}
	}
	if req.DiscountPrice != nil && *req.DiscountPrice != "" {
		discount, err := valueobject.NewMoneyUSDFromString(*req.DiscountPrice)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_DISCOUNT_PRICE", "Invalid discount price format")
		}
		if err := product.SetDiscountPrice(discount); err != nil {
			return nil, err
		}
	}
	if req.CountInStock != nil {
		if err := product.SetStock(*req.CountInStock); err != nil {
			return nil, err
		}
	}
	if req.Sizes != nil || req.Colors != nil {
		sizes := product.Sizes
		colors := product.Colors
		if req.Sizes != nil {
			sizes = req.Sizes
		}
		if req.Colors != nil {
			colors = req.Colors
		}
		if err := product.SetVariants(sizes, colors); err != nil {
			return nil, err
		}
	}
	if req.Brand != nil || req.Material != nil || req.Gender != nil || req.Tags != nil {
		brand := product.Brand
		material := product.Material
		gender := product.Gender
		tags := []string(product.Tags)
		if req.Brand != nil {
			brand = *req.Brand
		}
		if req.Material != nil {
			material = *req.Material
		}
		if req.Gender != nil {
			gender = catalog.Gender(*req.Gender)
		}
		if req.Tags != nil {
			tags = req.Tags
		}
		if err := product.SetDetails(brand, material, gender, tags); err != nil {
			return nil, err
		}
	}
	if req.Images != nil {
		images := make([]catalog.ProductImage, 0, len(req.Images))
		for _, img := range req.Images {
			images = append(images, catalog.ProductImage{URL: img.URL, AltText: img.AltText})
		}
		product.ReplaceImages(images)
	}
	if req.IsFeatured != nil {
		product.SetFeatured(*req.IsFeatured)
	}
	if req.IsPublished != nil {
		if *req.IsPublished {
			product.Publish()
		} else {
			product.Unpublish()
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.String("product_id", product.ID.String()))

	resp := ToProductResponse(product, false)
	return &resp, nil
}

// Delete removes a product from the catalog (admin only)
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findProduct(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *ProductService) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
