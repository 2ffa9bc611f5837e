package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// EligibleOrderStatuses are the statuses counted toward lifetime spend.
var EligibleOrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusPaid,
	OrderStatusFulfilled,
}

// Order is a committed purchase. TotalPrice is final (post-discount, post-shipping).
type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"-"`
	Status     OrderStatus `json:"status"`
	TotalPrice int64       `json:"totalPrice"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// OrderLine is the frozen copy of a product line at purchase time.
type OrderLine struct {
	OrderID   int64  `json:"orderId"`
	ProductID int64  `json:"productId"`
	Name      string `json:"name,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Breakdown is the settlement of a cart plus an optional coupon.
type Breakdown struct {
	Subtotal    int64          `json:"subtotal"`
	Discount    int64          `json:"discount"`
	ShippingFee int64          `json:"shippingFee"`
	Total       int64          `json:"total"`
	Applied     *AppliedCoupon `json:"applied,omitempty"`
}

// CheckoutResult is returned after a committed checkout.
type CheckoutResult struct {
	OrderID   int64     `json:"orderId"`
	Breakdown Breakdown `json:"breakdown"`
}

// CheckoutRequest is the DTO for POST /api/checkout and the preview endpoints.
// An empty coupon code means no coupon.
type CheckoutRequest struct {
	CouponCode string `json:"couponCode" query:"couponCode" validate:"omitempty,max=64,couponcode"`
}

// DirectItem is one line of a direct purchase.
type DirectItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1,lte=999"`
}

// DirectCheckoutRequest is the DTO for POST /api/checkout/direct
type DirectCheckoutRequest struct {
	Items      []DirectItem `json:"items" validate:"required,min=1,max=50,dive"`
	CouponCode string       `json:"couponCode" validate:"omitempty,max=64,couponcode"`
}

// OrderHistory is the API response for GET /api/orders/me
type OrderHistory struct {
	Orders   []Order     `json:"orders"`
	Items    []OrderLine `json:"items"`
	Lifetime int64       `json:"lifetime"`
	Level    Tier        `json:"level"`
}
