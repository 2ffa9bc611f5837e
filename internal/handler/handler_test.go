package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront/internal/middleware"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/validator"
)

var testSecret = []byte("handler-test-secret")

// mockPinger implements Pinger for health checks.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.pingErr
}

// mockProductService is a mock implementation of ProductServiceInterface.
type mockProductService struct {
	listFn func(ctx context.Context, req *model.ProductListRequest) (*model.ProductListResponse, error)
}

func (m *mockProductService) List(ctx context.Context, req *model.ProductListRequest) (*model.ProductListResponse, error) {
	if m.listFn != nil {
		return m.listFn(ctx, req)
	}
	return &model.ProductListResponse{Products: []model.ProductView{}}, nil
}

// mockCartService is a mock implementation of CartServiceInterface.
type mockCartService struct {
	addItemFn    func(ctx context.Context, userID int64, req *model.AddCartItemRequest) error
	updateItemFn func(ctx context.Context, userID int64, req *model.UpdateCartItemRequest) error
	removeItemFn func(ctx context.Context, userID, productID int64) error
	viewFn       func(ctx context.Context, userID int64) (*model.CartView, error)
}

func (m *mockCartService) AddItem(ctx context.Context, userID int64, req *model.AddCartItemRequest) error {
	if m.addItemFn != nil {
		return m.addItemFn(ctx, userID, req)
	}
	return nil
}

func (m *mockCartService) UpdateItem(ctx context.Context, userID int64, req *model.UpdateCartItemRequest) error {
	if m.updateItemFn != nil {
		return m.updateItemFn(ctx, userID, req)
	}
	return nil
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	if m.removeItemFn != nil {
		return m.removeItemFn(ctx, userID, productID)
	}
	return nil
}

func (m *mockCartService) View(ctx context.Context, userID int64) (*model.CartView, error) {
	if m.viewFn != nil {
		return m.viewFn(ctx, userID)
	}
	return &model.CartView{Items: []model.CartLine{}}, nil
}

// mockCheckoutService is a mock implementation of CheckoutServiceInterface.
type mockCheckoutService struct {
	previewFn  func(ctx context.Context, userID int64, couponCode string) (*model.Breakdown, error)
	checkoutFn func(ctx context.Context, userID int64, couponCode string) (*model.CheckoutResult, error)
	directFn   func(ctx context.Context, userID int64, items []model.DirectItem, couponCode string) (*model.CheckoutResult, error)
}

func (m *mockCheckoutService) Preview(ctx context.Context, userID int64, couponCode string) (*model.Breakdown, error) {
	if m.previewFn != nil {
		return m.previewFn(ctx, userID, couponCode)
	}
	return &model.Breakdown{}, nil
}

func (m *mockCheckoutService) Checkout(ctx context.Context, userID int64, couponCode string) (*model.CheckoutResult, error) {
	if m.checkoutFn != nil {
		return m.checkoutFn(ctx, userID, couponCode)
	}
	return &model.CheckoutResult{OrderID: 1}, nil
}

func (m *mockCheckoutService) DirectCheckout(ctx context.Context, userID int64, items []model.DirectItem, couponCode string) (*model.CheckoutResult, error) {
	if m.directFn != nil {
		return m.directFn(ctx, userID, items, couponCode)
	}
	return &model.CheckoutResult{OrderID: 1}, nil
}

// mockOrderService is a mock implementation of OrderServiceInterface.
type mockOrderService struct {
	historyFn func(ctx context.Context, userID int64) (*model.OrderHistory, error)
}

func (m *mockOrderService) History(ctx context.Context, userID int64) (*model.OrderHistory, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, userID)
	}
	return &model.OrderHistory{Orders: []model.Order{}, Items: []model.OrderLine{}, Level: model.TierLV1}, nil
}

// mockMembershipService is a mock implementation of MembershipServiceInterface.
type mockMembershipService struct {
	claimFn       func(ctx context.Context, userID int64) (*model.ClaimResult, error)
	resyncFn      func(ctx context.Context, userID int64) (*model.MembershipStatus, error)
	listCouponsFn func(ctx context.Context, userID int64) (*model.CouponListResponse, error)
}

func (m *mockMembershipService) Claim(ctx context.Context, userID int64) (*model.ClaimResult, error) {
	if m.claimFn != nil {
		return m.claimFn(ctx, userID)
	}
	return &model.ClaimResult{Level: model.TierLV1, Issued: []model.IssuedCoupon{}}, nil
}

func (m *mockMembershipService) Resync(ctx context.Context, userID int64) (*model.MembershipStatus, error) {
	if m.resyncFn != nil {
		return m.resyncFn(ctx, userID)
	}
	return &model.MembershipStatus{Level: model.TierLV1}, nil
}

func (m *mockMembershipService) ListCoupons(ctx context.Context, userID int64) (*model.CouponListResponse, error) {
	if m.listCouponsFn != nil {
		return m.listCouponsFn(ctx, userID)
	}
	return &model.CouponListResponse{Coupons: []model.UserCoupon{}}, nil
}

// testServices holds the mocks behind a test app. Nil fields get defaults.
type testServices struct {
	pinger     *mockPinger
	products   *mockProductService
	cart       *mockCartService
	checkout   *mockCheckoutService
	orders     *mockOrderService
	membership *mockMembershipService
}

func setupTestApp(s testServices) *fiber.App {
	if s.pinger == nil {
		s.pinger = &mockPinger{}
	}
	if s.products == nil {
		s.products = &mockProductService{}
	}
	if s.cart == nil {
		s.cart = &mockCartService{}
	}
	if s.checkout == nil {
		s.checkout = &mockCheckoutService{}
	}
	if s.orders == nil {
		s.orders = &mockOrderService{}
	}
	if s.membership == nil {
		s.membership = &mockMembershipService{}
	}

	v := validator.New()
	app := fiber.New()
	Register(app, Handlers{
		Health:     NewHealthHandler(s.pinger, "test"),
		Products:   NewProductHandler(s.products, v),
		Cart:       NewCartHandler(s.cart, v),
		Checkout:   NewCheckoutHandler(s.checkout, v),
		Orders:     NewOrderHandler(s.orders),
		Membership: NewMembershipHandler(s.membership),
	}, middleware.Auth(testSecret))
	return app
}

func bearer(t *testing.T, userID int64) string {
	t.Helper()
	token, err := middleware.IssueToken(testSecret, userID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

// doRequest sends a request as userID (0 sends no token) with an optional JSON body.
func doRequest(t *testing.T, app *fiber.App, method, path string, userID int64, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", bearer(t, userID))
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
