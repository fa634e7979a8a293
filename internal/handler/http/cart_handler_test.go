package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M0h4mmadH/ex-online-shop/internal/cart"
	"github.com/M0h4mmadH/ex-online-shop/internal/checkout"
	"github.com/M0h4mmadH/ex-online-shop/internal/receipt"
)

type mockCartService struct {
	AddItemsToCartFunc func(ctx context.Context, userID uuid.UUID, items []cart.ItemInput) (*cart.Cart, []cart.CartItem, error)
	DeleteCartFunc     func(ctx context.Context, userID, cartID uuid.UUID) (*cart.Cart, error)
	ListUserCartsFunc  func(ctx context.Context, userID uuid.UUID, status *cart.CartStatus) ([]cart.Cart, error)
}

func (m *mockCartService) AddItemsToCart(ctx context.Context, userID uuid.UUID, items []cart.ItemInput) (*cart.Cart, []cart.CartItem, error) {
	return m.AddItemsToCartFunc(ctx, userID, items)
}

func (m *mockCartService) DeleteCart(ctx context.Context, userID, cartID uuid.UUID) (*cart.Cart, error) {
	return m.DeleteCartFunc(ctx, userID, cartID)
}

func (m *mockCartService) ListUserCarts(ctx context.Context, userID uuid.UUID, status *cart.CartStatus) ([]cart.Cart, error) {
	return m.ListUserCartsFunc(ctx, userID, status)
}

type mockCheckoutService struct {
	PurchaseFunc func(ctx context.Context, userID, cartID, addressID uuid.UUID) (*checkout.Result, error)
}

func (m *mockCheckoutService) Purchase(ctx context.Context, userID, cartID, addressID uuid.UUID) (*checkout.Result, error) {
	return m.PurchaseFunc(ctx, userID, cartID, addressID)
}

type mockReceiptRepository struct {
	CreateFunc     func(ctx context.Context, rcpt *receipt.Receipt) error
	ListByUserFunc func(ctx context.Context, userID uuid.UUID) ([]receipt.Receipt, error)
}

func (m *mockReceiptRepository) Create(ctx context.Context, rcpt *receipt.Receipt) error {
	return m.CreateFunc(ctx, rcpt)
}

func (m *mockReceiptRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]receipt.Receipt, error) {
	return m.ListByUserFunc(ctx, userID)
}

func authedRequest(t *testing.T, userID uuid.UUID, method, target string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	ctx := context.WithValue(req.Context(), userIDKey, userID)
	return req.WithContext(ctx)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestCartHandler_AddItems(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())
	cartID := uuid.Must(uuid.NewV4())

	testCases := []struct {
		name       string
		payload    interface{}
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{
			name:       "items added",
			payload:    []AddItemRequest{{ProductID: productID, Quantity: 2}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "capacity exceeded",
			payload:    []AddItemRequest{{ProductID: productID, Quantity: 1}},
			serviceErr: cart.ErrTooManyItems,
			wantStatus: http.StatusBadRequest,
			wantError:  "Too many items",
		},
		{
			name:       "unknown product",
			payload:    []AddItemRequest{{ProductID: productID, Quantity: 1}},
			serviceErr: fmt.Errorf("%w: %s", cart.ErrProductNotFound, productID),
			wantStatus: http.StatusNotFound,
			wantError:  "Product not found",
		},
		{
			name:       "empty batch",
			payload:    []AddItemRequest{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not an array",
			payload:    map[string]string{"product_id": productID.String()},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request payload",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			carts := &mockCartService{
				AddItemsToCartFunc: func(_ context.Context, gotUserID uuid.UUID, items []cart.ItemInput) (*cart.Cart, []cart.CartItem, error) {
					assert.Equal(t, userID, gotUserID)
					if tc.serviceErr != nil {
						return nil, nil, tc.serviceErr
					}
					userCart := &cart.Cart{ID: cartID, UserID: userID, Status: cart.StatusOpen, IsActive: true}
					cartItems := []cart.CartItem{{CartID: cartID, ProductID: productID, Quantity: 2, IsActive: true}}
					return userCart, cartItems, nil
				},
			}
			handler := NewCartHandler(carts, &mockCheckoutService{}, &mockReceiptRepository{})

			req := authedRequest(t, userID, http.MethodPost, "/cart/add-items", tc.payload)
			rec := httptest.NewRecorder()
			handler.handleAddItems(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, errorMessage(t, rec))
			}
			if tc.wantStatus == http.StatusOK {
				var resp AddItemsResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, cartID, resp.Cart.ID)
				assert.Len(t, resp.Items, 1)
			}
		})
	}
}

func TestCartHandler_AddItems_Unauthorized(t *testing.T) {
	handler := NewCartHandler(&mockCartService{}, &mockCheckoutService{}, &mockReceiptRepository{})

	req := httptest.NewRequest(http.MethodPost, "/cart/add-items", bytes.NewBufferString("[]"))
	rec := httptest.NewRecorder()
	handler.handleAddItems(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartHandler_DeleteCart(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	cartID := uuid.Must(uuid.NewV4())

	t.Run("cart deleted", func(t *testing.T) {
		carts := &mockCartService{
			DeleteCartFunc: func(_ context.Context, _, gotCartID uuid.UUID) (*cart.Cart, error) {
				assert.Equal(t, cartID, gotCartID)
				return &cart.Cart{ID: cartID, UserID: userID, IsActive: false}, nil
			},
		}
		handler := NewCartHandler(carts, &mockCheckoutService{}, &mockReceiptRepository{})

		req := authedRequest(t, userID, http.MethodPost, "/cart/delete", DeleteCartRequest{CartID: cartID})
		rec := httptest.NewRecorder()
		handler.handleDeleteCart(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]uuid.UUID
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, cartID, body["id"])
	})

	t.Run("cart missing", func(t *testing.T) {
		carts := &mockCartService{
			DeleteCartFunc: func(_ context.Context, _, _ uuid.UUID) (*cart.Cart, error) {
				return nil, cart.ErrCartNotFound
			},
		}
		handler := NewCartHandler(carts, &mockCheckoutService{}, &mockReceiptRepository{})

		req := authedRequest(t, userID, http.MethodPost, "/cart/delete", DeleteCartRequest{CartID: cartID})
		rec := httptest.NewRecorder()
		handler.handleDeleteCart(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Cart not found", errorMessage(t, rec))
	})
}

func TestCartHandler_Purchase(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	cartID := uuid.Must(uuid.NewV4())
	addressID := uuid.Must(uuid.NewV4())
	mismatchProduct := uuid.Must(uuid.NewV4())

	testCases := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{
			name:       "address missing",
			serviceErr: checkout.ErrAddressNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "Address not found",
		},
		{
			name:       "cart missing",
			serviceErr: checkout.ErrCartNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "Cart not found",
		},
		{
			name:       "cart empty",
			serviceErr: checkout.ErrEmptyCart,
			wantStatus: http.StatusBadRequest,
			wantError:  "Cart is empty",
		},
		{
			name:       "city mismatch names the product",
			serviceErr: &checkout.CityMismatchError{ProductID: mismatchProduct},
			wantStatus: http.StatusBadRequest,
			wantError:  fmt.Sprintf("Product with id %s address city mismatch", mismatchProduct),
		},
		{
			name:       "concurrent payment",
			serviceErr: checkout.ErrCartConflict,
			wantStatus: http.StatusConflict,
			wantError:  "Cart conflict",
		},
		{
			name:       "gateway failure",
			serviceErr: fmt.Errorf("%w: provider down", checkout.ErrPaymentFailed),
			wantStatus: http.StatusBadGateway,
			wantError:  "Payment failed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checkoutSvc := &mockCheckoutService{
				PurchaseFunc: func(_ context.Context, _, _, _ uuid.UUID) (*checkout.Result, error) {
					return nil, tc.serviceErr
				},
			}
			handler := NewCartHandler(&mockCartService{}, checkoutSvc, &mockReceiptRepository{})

			req := authedRequest(t, userID, http.MethodPost, "/cart/purchase",
				PurchaseRequest{CartID: cartID, AddressID: addressID})
			rec := httptest.NewRecorder()
			handler.handlePurchase(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantError, errorMessage(t, rec))
		})
	}

	t.Run("purchase succeeds", func(t *testing.T) {
		checkoutSvc := &mockCheckoutService{
			PurchaseFunc: func(_ context.Context, gotUserID, gotCartID, gotAddressID uuid.UUID) (*checkout.Result, error) {
				assert.Equal(t, userID, gotUserID)
				assert.Equal(t, cartID, gotCartID)
				assert.Equal(t, addressID, gotAddressID)
				return &checkout.Result{
					Cart:         &cart.Cart{ID: cartID, UserID: userID, Status: cart.StatusPaid, IsActive: true},
					TotalPrice:   1250,
					TrackingCode: "track-123",
				}, nil
			},
		}
		handler := NewCartHandler(&mockCartService{}, checkoutSvc, &mockReceiptRepository{})

		req := authedRequest(t, userID, http.MethodPost, "/cart/purchase",
			PurchaseRequest{CartID: cartID, AddressID: addressID})
		rec := httptest.NewRecorder()
		handler.handlePurchase(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var result checkout.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, cartID, result.Cart.ID)
		assert.Equal(t, cart.StatusPaid, result.Cart.Status)
		assert.Equal(t, int64(1250), result.TotalPrice)
		assert.Equal(t, "track-123", result.TrackingCode)
	})
}

func TestCartHandler_GetActiveCarts(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	t.Run("status filter forwarded", func(t *testing.T) {
		carts := &mockCartService{
			ListUserCartsFunc: func(_ context.Context, _ uuid.UUID, status *cart.CartStatus) ([]cart.Cart, error) {
				require.NotNil(t, status)
				assert.Equal(t, cart.StatusPaid, *status)
				return []cart.Cart{}, nil
			},
		}
		handler := NewCartHandler(carts, &mockCheckoutService{}, &mockReceiptRepository{})

		req := authedRequest(t, userID, http.MethodGet, "/user/get-active-carts?status=PAID", nil)
		rec := httptest.NewRecorder()
		handler.handleGetActiveCarts(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		handler := NewCartHandler(&mockCartService{}, &mockCheckoutService{}, &mockReceiptRepository{})

		req := authedRequest(t, userID, http.MethodGet, "/user/get-active-carts?status=SHIPPED", nil)
		rec := httptest.NewRecorder()
		handler.handleGetActiveCarts(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid status filter", errorMessage(t, rec))
	})
}

func TestCartHandler_GetPurchases(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	receipts := &mockReceiptRepository{
		ListByUserFunc: func(_ context.Context, gotUserID uuid.UUID) ([]receipt.Receipt, error) {
			assert.Equal(t, userID, gotUserID)
			return []receipt.Receipt{{UserID: userID, Price: 1250, TrackingCode: "track-123"}}, nil
		},
	}
	handler := NewCartHandler(&mockCartService{}, &mockCheckoutService{}, receipts)

	req := authedRequest(t, userID, http.MethodGet, "/user/get-purchase", nil)
	rec := httptest.NewRecorder()
	handler.handleGetPurchases(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body []receipt.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "track-123", body[0].TrackingCode)
}
