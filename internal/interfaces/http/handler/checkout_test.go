package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apporder "github.com/cartly/backend/internal/application/order"
	"github.com/cartly/backend/internal/domain/cart"
	"github.com/cartly/backend/internal/domain/order"
	"github.com/cartly/backend/internal/domain/shared"
	"github.com/cartly/backend/internal/domain/shared/valueobject"
	"github.com/cartly/backend/internal/interfaces/http/dto"
)

// MockOrderRepository implements order.OrderRepository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsDeliveredWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCheckoutRepository implements order.CheckoutRepository for testing
type MockCheckoutRepository struct {
	mock.Mock
}

func (m *MockCheckoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Checkout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Checkout), args.Error(1)
}

func (m *MockCheckoutRepository) Save(ctx context.Context, c *order.Checkout) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockPaymentGateway implements order.PaymentGateway for testing
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) VerifyPayment(ctx context.Context, checkoutID uuid.UUID, transactionID string, expected valueobject.Money) (*order.PaymentVerification, error) {
	args := m.Called(ctx, checkoutID, transactionID, expected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PaymentVerification), args.Error(1)
}

func setupCheckoutHandler(
	checkoutRepo *MockCheckoutRepository,
	orderRepo *MockOrderRepository,
	cartRepo *MockCartRepository,
	gateway *MockPaymentGateway,
) *CheckoutHandler {
	service := apporder.NewCheckoutService(checkoutRepo, orderRepo, cartRepo, gateway, zap.NewNop())
	return NewCheckoutHandler(service)
}

func setupCheckoutRouter(handler *CheckoutHandler, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		setAuthContext(c, userID, "buyer")
		c.Next()
	})

	router.POST("/checkout", handler.Create)
	router.GET("/checkout/:id", handler.GetByID)
	router.PUT("/checkout/:id/pay", handler.Pay)
	router.POST("/checkout/:id/finalize", handler.Finalize)
	return router
}

func testShippingAddress() apporder.ShippingAddressInput {
	return apporder.ShippingAddressInput{
		FirstName:  "Sam",
		LastName:   "Carter",
		Address:    "4 Privet Drive",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
		Phone:      "+1-555-0100",
	}
}

func newTestCheckout(t *testing.T, userID uuid.UUID) *order.Checkout {
	t.Helper()

	checkout, err := order.NewCheckout(
		userID,
		[]order.CheckoutItem{
			{
				ProductID: uuid.New(),
				Name:      "Denim Jacket",
				UnitPrice: decimal.NewFromFloat(79.99),
				Size:      "M",
				Color:     "Blue",
				Quantity:  2,
			},
		},
		order.ShippingAddress{
			FirstName:  "Sam",
			LastName:   "Carter",
			Address:    "4 Privet Drive",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
			Phone:      "+1-555-0100",
		},
		"paypal",
	)
	require.NoError(t, err)
	return checkout
}

func TestCheckoutHandler_Create(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	orderRepo := new(MockOrderRepository)
	cartRepo := new(MockCartRepository)
	gateway := new(MockPaymentGateway)
	handler := setupCheckoutHandler(checkoutRepo, orderRepo, cartRepo, gateway)

	userID := uuid.New()
	product := newCartTestProduct(t)
	userCart, err := cart.NewUserCart(userID)
	require.NoError(t, err)
	snapshot := cart.ProductSnapshot{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.EffectivePrice(),
	}
	require.NoError(t, userCart.AddItem(snapshot, "M", "Blue", 2))

	cartRepo.On("FindByOwnerID", mock.Anything, userID).Return(userCart, nil)
	checkoutRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Checkout")).Return(nil)

	router := setupCheckoutRouter(handler, userID)

	body, _ := json.Marshal(apporder.CreateCheckoutRequest{
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   "paypal",
	})

	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, userID.String(), data["userId"])
	assert.Equal(t, "159.98", data["totalPrice"])
	assert.Equal(t, "pending", data["paymentStatus"])
	items := data["checkoutItems"].([]interface{})
	assert.Len(t, items, 1)
	checkoutRepo.AssertExpectations(t)
}

func TestCheckoutHandler_Create_EmptyCart(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	cartRepo := new(MockCartRepository)
	handler := setupCheckoutHandler(checkoutRepo, new(MockOrderRepository), cartRepo, new(MockPaymentGateway))

	userID := uuid.New()
	cartRepo.On("FindByOwnerID", mock.Anything, userID).Return(nil, nil)

	router := setupCheckoutRouter(handler, userID)

	body, _ := json.Marshal(apporder.CreateCheckoutRequest{
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   "paypal",
	})

	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "EMPTY_CART", resp.Error.Code)
	checkoutRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCheckoutHandler_Create_MissingAddress(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	cartRepo := new(MockCartRepository)
	handler := setupCheckoutHandler(checkoutRepo, new(MockOrderRepository), cartRepo, new(MockPaymentGateway))

	userID := uuid.New()
	router := setupCheckoutRouter(handler, userID)

	body, _ := json.Marshal(map[string]interface{}{"paymentMethod": "paypal"})

	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	cartRepo.AssertNotCalled(t, "FindByOwnerID", mock.Anything, mock.Anything)
}

func TestCheckoutHandler_GetByID_OtherUsersSession(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	handler := setupCheckoutHandler(checkoutRepo, new(MockOrderRepository), new(MockCartRepository), new(MockPaymentGateway))

	userID := uuid.New()
	otherCheckout := newTestCheckout(t, uuid.New())
	checkoutRepo.On("FindByID", mock.Anything, otherCheckout.ID).Return(otherCheckout, nil)

	router := setupCheckoutRouter(handler, userID)

	req := httptest.NewRequest(http.MethodGet, "/checkout/"+otherCheckout.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CHECKOUT_NOT_FOUND", resp.Error.Code)
}

func TestCheckoutHandler_Pay(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	gateway := new(MockPaymentGateway)
	handler := setupCheckoutHandler(checkoutRepo, new(MockOrderRepository), new(MockCartRepository), gateway)

	userID := uuid.New()
	checkout := newTestCheckout(t, userID)

	checkoutRepo.On("FindByID", mock.Anything, checkout.ID).Return(checkout, nil)
	gateway.On("VerifyPayment", mock.Anything, checkout.ID, "TXN-123", mock.Anything).
		Return(&order.PaymentVerification{
			Succeeded:     true,
			TransactionID: "TXN-123",
			RawDetails:    `{"status":"COMPLETED"}`,
		}, nil)
	checkoutRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Checkout")).Return(nil)

	router := setupCheckoutRouter(handler, userID)

	body, _ := json.Marshal(apporder.PayCheckoutRequest{TransactionID: "TXN-123"})

	req := httptest.NewRequest(http.MethodPut, "/checkout/"+checkout.ID.String()+"/pay", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["isPaid"])
	assert.Equal(t, "paid", data["paymentStatus"])
	gateway.AssertExpectations(t)
	checkoutRepo.AssertExpectations(t)
}

func TestCheckoutHandler_Pay_NotCaptured(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	gateway := new(MockPaymentGateway)
	handler := setupCheckoutHandler(checkoutRepo, new(MockOrderRepository), new(MockCartRepository), gateway)

	userID := uuid.New()
	checkout := newTestCheckout(t, userID)

	checkoutRepo.On("FindByID", mock.Anything, checkout.ID).Return(checkout, nil)
	gateway.On("VerifyPayment", mock.Anything, checkout.ID, "TXN-456", mock.Anything).
		Return(&order.PaymentVerification{
			Succeeded:  false,
			RawDetails: `{"status":"DECLINED"}`,
		}, nil)
	checkoutRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Checkout")).Return(nil)

	router := setupCheckoutRouter(handler, userID)

	body, _ := json.Marshal(apporder.PayCheckoutRequest{TransactionID: "TXN-456"})

	req := httptest.NewRequest(http.MethodPut, "/checkout/"+checkout.ID.String()+"/pay", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PAYMENT_FAILED", resp.Error.Code)
	assert.Equal(t, order.PaymentStatusFailed, checkout.PaymentStatus)
	assert.False(t, checkout.IsPaid)
}

func TestCheckoutHandler_Pay_AlreadyPaid(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	gateway := new(MockPaymentGateway)
	handler := setupCheckoutHandler(checkoutRepo, new(MockOrderRepository), new(MockCartRepository), gateway)

	userID := uuid.New()
	checkout := newTestCheckout(t, userID)
	require.NoError(t, checkout.MarkPaid(`{"status":"COMPLETED"}`, time.Now()))

	checkoutRepo.On("FindByID", mock.Anything, checkout.ID).Return(checkout, nil)

	router := setupCheckoutRouter(handler, userID)

	body, _ := json.Marshal(apporder.PayCheckoutRequest{TransactionID: "TXN-789"})

	req := httptest.NewRequest(http.MethodPut, "/checkout/"+checkout.ID.String()+"/pay", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	gateway.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutHandler_Finalize(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	orderRepo := new(MockOrderRepository)
	cartRepo := new(MockCartRepository)
	handler := setupCheckoutHandler(checkoutRepo, orderRepo, cartRepo, new(MockPaymentGateway))

	userID := uuid.New()
	checkout := newTestCheckout(t, userID)
	require.NoError(t, checkout.MarkPaid(`{"status":"COMPLETED"}`, time.Now()))

	userCart, err := cart.NewUserCart(userID)
	require.NoError(t, err)

	checkoutRepo.On("FindByID", mock.Anything, checkout.ID).Return(checkout, nil)
	orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	checkoutRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Checkout")).Return(nil)
	cartRepo.On("FindByOwnerID", mock.Anything, userID).Return(userCart, nil)
	cartRepo.On("Delete", mock.Anything, userCart.ID).Return(nil)

	router := setupCheckoutRouter(handler, userID)

	req := httptest.NewRequest(http.MethodPost, "/checkout/"+checkout.ID.String()+"/finalize", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Processing", data["status"])
	assert.Equal(t, true, data["isPaid"])
	assert.True(t, checkout.IsFinalized)
	orderRepo.AssertExpectations(t)
	cartRepo.AssertExpectations(t)
}

func TestCheckoutHandler_Finalize_NotPaid(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupCheckoutHandler(checkoutRepo, orderRepo, new(MockCartRepository), new(MockPaymentGateway))

	userID := uuid.New()
	checkout := newTestCheckout(t, userID)

	checkoutRepo.On("FindByID", mock.Anything, checkout.ID).Return(checkout, nil)

	router := setupCheckoutRouter(handler, userID)

	req := httptest.NewRequest(http.MethodPost, "/checkout/"+checkout.ID.String()+"/finalize", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CHECKOUT_NOT_PAID", resp.Error.Code)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCheckoutHandler_Finalize_Twice(t *testing.T) {
	checkoutRepo := new(MockCheckoutRepository)
	orderRepo := new(MockOrderRepository)
	cartRepo := new(MockCartRepository)
	handler := setupCheckoutHandler(checkoutRepo, orderRepo, cartRepo, new(MockPaymentGateway))

	userID := uuid.New()
	checkout := newTestCheckout(t, userID)
	require.NoError(t, checkout.MarkPaid(`{"status":"COMPLETED"}`, time.Now()))
	_, err := checkout.Finalize()
	require.NoError(t, err)

	checkoutRepo.On("FindByID", mock.Anything, checkout.ID).Return(checkout, nil)

	router := setupCheckoutRouter(handler, userID)

	req := httptest.NewRequest(http.MethodPost, "/checkout/"+checkout.ID.String()+"/finalize", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CHECKOUT_FINALIZED", resp.Error.Code)
	orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
