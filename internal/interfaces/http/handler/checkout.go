package handler

import (
	apporder "github.com/cartly/backend/internal/application/order"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles the checkout flow from cart snapshot to paid order
type CheckoutHandler struct {
	BaseHandler
	checkoutService *apporder.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *apporder.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// Create godoc
// @Summary      Start a checkout
// @Description  Snapshot the user's cart into a new checkout session
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body apporder.CreateCheckoutRequest true "Shipping address and payment method"
// @Success      201 {object} dto.Response{data=apporder.CheckoutResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout [post]
func (h *CheckoutHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req apporder.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	checkout, err := h.checkoutService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, checkout)
}

// GetByID godoc
// @Summary      Get a checkout session
// @Description  Fetch one of the user's checkout sessions
// @Tags         checkout
// @Produce      json
// @Param        id path string true "Checkout ID"
// @Success      200 {object} dto.Response{data=apporder.CheckoutResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/{id} [get]
func (h *CheckoutHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	checkoutID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	checkout, err := h.checkoutService.GetByID(c.Request.Context(), userID, checkoutID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, checkout)
}

// Pay godoc
// @Summary      Pay a checkout session
// @Description  Verify the payment with the gateway and mark the session paid
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        id path string true "Checkout ID"
// @Param        request body apporder.PayCheckoutRequest true "Gateway transaction reference"
// @Success      200 {object} dto.Response{data=apporder.CheckoutResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/{id}/pay [put]
func (h *CheckoutHandler) Pay(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	checkoutID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req apporder.PayCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	checkout, err := h.checkoutService.Pay(c.Request.Context(), userID, checkoutID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, checkout)
}

// Finalize godoc
// @Summary      Finalize a checkout session
// @Description  Convert a paid checkout into an order and delete the user's cart
// @Tags         checkout
// @Produce      json
// @Param        id path string true "Checkout ID"
// @Success      201 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /checkout/{id}/finalize [post]
func (h *CheckoutHandler) Finalize(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	checkoutID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.checkoutService.Finalize(c.Request.Context(), userID, checkoutID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}
