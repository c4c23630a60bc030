package handler

import (
	appcart "github.com/cartly/backend/internal/application/cart"
	"github.com/cartly/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CartHandler handles shopping cart HTTP requests for both
// authenticated users and guests.
type CartHandler struct {
	BaseHandler
	cartService *appcart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *appcart.Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// identity resolves the cart owner from the request: the JWT identity
// when authenticated, otherwise the X-Guest-Token header. The boolean
// is false when neither is present and a response has been written.
func (h *CartHandler) identity(c *gin.Context) (appcart.Identity, bool) {
	if userIDStr := middleware.GetJWTUserID(c); userIDStr != "" {
		userID, err := getUserID(c)
		if err != nil {
			h.Unauthorized(c, "Authentication required")
			return appcart.Identity{}, false
		}
		return appcart.UserIdentity(userID), true
	}

	if token := middleware.GetGuestToken(c); token != "" {
		return appcart.GuestIdentity(token), true
	}

	h.ErrorWithCode(c, "INVALID_GUEST_TOKEN", "A guest token or authentication is required")
	return appcart.Identity{}, false
}

// Get godoc
// @Summary      Get the cart
// @Description  Returns the caller's cart, creating an empty view when none exists
// @Tags         cart
// @Produce      json
// @Param        X-Guest-Token header string false "Guest session token"
// @Success      200 {object} dto.Response{data=appcart.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), identity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cart)
}

// AddItem godoc
// @Summary      Add an item
// @Description  Add a product variant to the cart, merging with an existing matching row
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Guest-Token header string false "Guest session token"
// @Param        request body appcart.AddItemRequest true "Variant and quantity"
// @Success      200 {object} dto.Response{data=appcart.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req appcart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), identity, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cart)
}

// UpdateItem godoc
// @Summary      Update an item quantity
// @Description  Overwrite a line item quantity; zero removes the row
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Guest-Token header string false "Guest session token"
// @Param        request body appcart.UpdateItemRequest true "Variant and new quantity"
// @Success      200 {object} dto.Response{data=appcart.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req appcart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.cartService.UpdateItemQuantity(c.Request.Context(), identity, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cart)
}

// RemoveItem godoc
// @Summary      Remove an item
// @Description  Delete a line item identified by product, size and color
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Guest-Token header string false "Guest session token"
// @Param        request body appcart.RemoveItemRequest true "Variant to remove"
// @Success      200 {object} dto.Response{data=appcart.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	var req appcart.RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), identity, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cart)
}

// Clear godoc
// @Summary      Clear the cart
// @Description  Remove every line item from the caller's cart
// @Tags         cart
// @Produce      json
// @Param        X-Guest-Token header string false "Guest session token"
// @Success      200 {object} dto.Response{data=appcart.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}

	cart, err := h.cartService.ClearCart(c.Request.Context(), identity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cart)
}

// Merge godoc
// @Summary      Merge the guest cart
// @Description  Fold the guest cart identified by X-Guest-Token into the authenticated user's cart
// @Tags         cart
// @Produce      json
// @Param        X-Guest-Token header string true "Guest session token"
// @Success      200 {object} dto.Response{data=appcart.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/merge [post]
func (h *CartHandler) Merge(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	guestToken := middleware.GetGuestToken(c)
	if guestToken == "" {
		h.ErrorWithCode(c, "INVALID_GUEST_TOKEN", "X-Guest-Token header is required")
		return
	}

	cart, err := h.cartService.MergeGuestCart(c.Request.Context(), userID, guestToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cart)
}
