package handler

import (
	appcatalog "github.com/cartly/backend/internal/application/catalog"
	"github.com/cartly/backend/internal/domain/catalog"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductHandler handles catalog browsing and admin product management
type ProductHandler struct {
	BaseHandler
	productService *appcatalog.ProductService
	reviewService  *appcatalog.ReviewService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *appcatalog.ProductService, reviewService *appcatalog.ReviewService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		reviewService:  reviewService,
	}
}

// ListProductsRequest represents the catalog listing query parameters
type ListProductsRequest struct {
	Category   string   `form:"category"`
	Collection string   `form:"collection"`
	Gender     string   `form:"gender" binding:"omitempty,oneof=Men Women Unisex"`
	Brands     []string `form:"brand"`
	Materials  []string `form:"material"`
	Sizes      []string `form:"size"`
	Colors     []string `form:"color"`
	MinPrice   string   `form:"min_price"`
	MaxPrice   string   `form:"max_price"`
	Search     string   `form:"search"`
	SortBy     string   `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc newest rating"`
	Page       int      `form:"page" binding:"omitempty,min=1"`
	PageSize   int      `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (r ListProductsRequest) toFilter() (catalog.ProductFilter, error) {
	filter := catalog.ProductFilter{
		Category:   r.Category,
		Collection: r.Collection,
		Gender:     catalog.Gender(r.Gender),
		Brands:     r.Brands,
		Materials:  r.Materials,
		Sizes:      r.Sizes,
		Colors:     r.Colors,
		Search:     r.Search,
		SortBy:     r.SortBy,
		Page:       r.Page,
		PageSize:   r.PageSize,
	}

	if r.MinPrice != "" {
		min, err := decimal.NewFromString(r.MinPrice)
		if err != nil {
			return filter, err
		}
		filter.MinPrice = &min
	}
	if r.MaxPrice != "" {
		max, err := decimal.NewFromString(r.MaxPrice)
		if err != nil {
			return filter, err
		}
		filter.MaxPrice = &max
	}

	return filter, nil
}

// List godoc
// @Summary      List products
// @Description  Browse published products with filtering, sorting and pagination
// @Tags         products
// @Produce      json
// @Param        category query string false "Category name"
// @Param        collection query string false "Collection name"
// @Param        gender query string false "Men, Women or Unisex"
// @Param        brand query []string false "Brand filter"
// @Param        size query []string false "Size filter"
// @Param        color query []string false "Color filter"
// @Param        min_price query string false "Minimum price"
// @Param        max_price query string false "Maximum price"
// @Param        search query string false "Match on name or description"
// @Param        sort_by query string false "price_asc, price_desc, newest or rating"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(10)
// @Success      200 {object} dto.Response{data=[]appcatalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter, err := req.toFilter()
	if err != nil {
		h.BadRequest(c, "Invalid price filter")
		return
	}
	// Unpublished products are only visible on the admin listing
	filter.IncludeUnpublished = false

	result, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Products, result.Total, result.Page, result.PageSize)
}

// AdminList godoc
// @Summary      List all products
// @Description  Admin listing that includes unpublished products
// @Tags         products
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(10)
// @Success      200 {object} dto.Response{data=[]appcatalog.ProductResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter, err := req.toFilter()
	if err != nil {
		h.BadRequest(c, "Invalid price filter")
		return
	}
	filter.IncludeUnpublished = true

	result, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Products, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
// @Summary      Get a product
// @Description  Fetch a single published product with its reviews
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=appcatalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id, isAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// BestSeller godoc
// @Summary      Get the best seller
// @Description  Returns the highest rated published product
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=appcatalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/best-seller [get]
func (h *ProductHandler) BestSeller(c *gin.Context) {
	product, err := h.productService.BestSeller(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// NewArrivals godoc
// @Summary      Get new arrivals
// @Description  Returns the most recently added published products
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appcatalog.ProductResponse}
// @Router       /products/new-arrivals [get]
func (h *ProductHandler) NewArrivals(c *gin.Context) {
	products, err := h.productService.NewArrivals(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// Similar godoc
// @Summary      Get similar products
// @Description  Returns products related to the given one by category and gender
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=[]appcatalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id}/similar [get]
func (h *ProductHandler) Similar(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	products, err := h.productService.Similar(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// Create godoc
// @Summary      Create a product
// @Description  Add a new product to the catalog
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body appcatalog.CreateProductRequest true "Product details"
// @Success      201 {object} dto.Response{data=appcatalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req appcatalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Description  Partially update product fields
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body appcatalog.UpdateProductRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=appcatalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Remove a product from the catalog
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddReview godoc
// @Summary      Review a product
// @Description  Add a review to a product the user has received
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body appcatalog.AddReviewRequest true "Rating and comment"
// @Success      201 {object} dto.Response{data=appcatalog.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/reviews [post]
func (h *ProductHandler) AddReview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	productID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appcatalog.AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	review, err := h.reviewService.AddReview(c.Request.Context(), productID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, review)
}
