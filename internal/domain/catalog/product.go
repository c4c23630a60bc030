package catalog

import (
	"strings"
	"time"

	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Gender represents the target audience of a product
type Gender string

const (
	GenderMen    Gender = "Men"
	GenderWomen  Gender = "Women"
	GenderUnisex Gender = "Unisex"
)

// IsValid checks if the gender is a valid Gender
func (g Gender) IsValid() bool {
	switch g {
	case GenderMen, GenderWomen, GenderUnisex:
		return true
	}
	return false
}

// ErrProductNotFound is returned when a product lookup fails
var ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")

// ProductImage represents one image attached to a product
type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"type:varchar(500);not null"`
	AltText   string    `gorm:"type:varchar(200)"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// Product represents a purchasable item in the catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Name          string           `gorm:"type:varchar(200);not null"`
	Description   string           `gorm:"type:text;not null"`
	SKU           string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Price         decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(18,2)"`
	CountInStock  int              `gorm:"not null;default:0"`
	Category      string           `gorm:"type:varchar(100);not null;index"`
	Brand         string           `gorm:"type:varchar(100);index"`
	Collection    string           `gorm:"type:varchar(100);not null;index"`
	Material      string           `gorm:"type:varchar(100)"`
	Gender        Gender           `gorm:"type:varchar(20);index"`
	Sizes         pq.StringArray   `gorm:"type:text[];not null"`
	Colors        pq.StringArray   `gorm:"type:text[];not null"`
	Tags          pq.StringArray   `gorm:"type:text[]"`
	Images        []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	IsFeatured    bool             `gorm:"not null;default:false"`
	IsPublished   bool             `gorm:"not null;default:false"`
	Reviews       []Review         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	AverageRating decimal.Decimal  `gorm:"type:decimal(3,2);not null;default:0"`
	ReviewCount   int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new unpublished product
func NewProduct(name, description, sku, category, collection string, price valueobject.Money, sizes, colors []string) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if collection == "" {
		return nil, shared.NewDomainError("INVALID_COLLECTION", "Collection cannot be empty")
	}
	if price.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if len(sizes) == 0 {
		return nil, shared.NewDomainError("INVALID_SIZES", "At least one size is required")
	}
	if len(colors) == 0 {
		return nil, shared.NewDomainError("INVALID_COLORS", "At least one color is required")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Description:       description,
		SKU:               strings.ToUpper(strings.TrimSpace(sku)),
		Price:             price.Amount(),
		Category:          category,
		Collection:        collection,
		Sizes:             sizes,
		Colors:            colors,
		Images:            make([]ProductImage, 0),
		Reviews:           make([]Review, 0),
		AverageRating:     decimal.Zero,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description, category, collection string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if category == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if collection == "" {
		return shared.NewDomainError("INVALID_COLLECTION", "Collection cannot be empty")
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Category = category
	p.Collection = collection
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetPrice sets the product's list price
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if p.DiscountPrice != nil && p.DiscountPrice.GreaterThanOrEqual(price.Amount()) {
		return shared.NewDomainError("INVALID_PRICE", "Price must exceed the discount price")
	}

	p.Price = price.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetDiscountPrice sets a promotional price below the list price
func (p *Product) SetDiscountPrice(discountPrice valueobject.Money) error {
	amount := discountPrice.Amount()
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT_PRICE", "Discount price cannot be negative")
	}
	if amount.GreaterThanOrEqual(p.Price) {
		return shared.NewDomainError("INVALID_DISCOUNT_PRICE", "Discount price must be below the list price")
	}

	p.DiscountPrice = &amount
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ClearDiscountPrice removes the promotional price
func (p *Product) ClearDiscountPrice() {
	p.DiscountPrice = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// EffectivePrice returns the discount price when set, the list price otherwise
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// GetEffectivePriceMoney returns the effective price as Money
func (p *Product) GetEffectivePriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.EffectivePrice())
}

// SetVariants replaces the available sizes and colors
func (p *Product) SetVariants(sizes, colors []string) error {
	if len(sizes) == 0 {
		return shared.NewDomainError("INVALID_SIZES", "At least one size is required")
	}
	if len(colors) == 0 {
		return shared.NewDomainError("INVALID_COLORS", "At least one color is required")
	}

	p.Sizes = sizes
	p.Colors = colors
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// HasVariant returns true if the product offers the given size and color
func (p *Product) HasVariant(size, color string) bool {
	return containsString(p.Sizes, size) && containsString(p.Colors, color)
}

// SetDetails sets the optional descriptive fields
func (p *Product) SetDetails(brand, material string, gender Gender, tags []string) error {
	if gender != "" && !gender.IsValid() {
		return shared.NewDomainError("INVALID_GENDER", "Gender must be Men, Women or Unisex")
	}

	p.Brand = brand
	p.Material = material
	p.Gender = gender
	p.Tags = tags
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetStock sets the available stock count
func (p *Product) SetStock(count int) error {
	if count < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock count cannot be negative")
	}

	p.CountInStock = count
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// InStock returns true if at least one unit is available
func (p *Product) InStock() bool {
	return p.CountInStock > 0
}

// AddImage appends an image to the product gallery
func (p *Product) AddImage(url, altText string) error {
	if url == "" {
		return shared.NewDomainError("INVALID_IMAGE_URL", "Image URL cannot be empty")
	}
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_IMAGE_URL", "Image URL cannot exceed 500 characters")
	}

	p.Images = append(p.Images, ProductImage{
		ID:        uuid.New(),
		ProductID: p.ID,
		URL:       url,
		AltText:   altText,
		Position:  len(p.Images),
		CreatedAt: time.Now(),
	})
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ReplaceImages replaces the whole image gallery
func (p *Product) ReplaceImages(images []ProductImage) {
	for idx := range images {
		if images[idx].ID == uuid.Nil {
			images[idx].ID = uuid.New()
		}
		images[idx].ProductID = p.ID
		images[idx].Position = idx
	}
	p.Images = images
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// PrimaryImageURL returns the URL of the first gallery image, or empty
func (p *Product) PrimaryImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// Publish makes the product visible in the storefront
func (p *Product) Publish() {
	p.IsPublished = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Unpublish hides the product from the storefront
func (p *Product) Unpublish() {
	p.IsPublished = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetFeatured marks or unmarks the product as featured
func (p *Product) SetFeatured(featured bool) {
	p.IsFeatured = featured
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Validation functions

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	return nil
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
