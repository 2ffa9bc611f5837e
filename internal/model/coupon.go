package model

import "time"

// CouponKind is the benefit a coupon type grants.
type CouponKind string

const (
	CouponKindAmount   CouponKind = "amount"
	CouponKindShipping CouponKind = "shipping"
)

// WelcomeCouponCode is the starter coupon issued once to users with no spend.
const (
	WelcomeCouponCode  = "M_LV1_5K"
	WelcomeCouponLabel = "Level 1: 5,000 Discount"
)

// CouponType is the catalog definition of a coupon code.
type CouponType struct {
	Code          string     `json:"code"`
	Label         string     `json:"label"`
	Kind          CouponKind `json:"kind"`
	Amount        int64      `json:"amount"`
	LevelRequired Tier       `json:"levelRequired"`
}

// UserCoupon is the issuance of a coupon type to a user.
// UsedOrderID is nil while the coupon is available and set exactly once on consumption.
type UserCoupon struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"-"`
	Code        string     `json:"code"`
	Label       string     `json:"label"`
	Kind        CouponKind `json:"kind"`
	Amount      int64      `json:"amount"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	UsedOrderID *int64     `json:"usedOrderId"`
	CreatedAt   time.Time  `json:"-"`
}

// Used reports whether the coupon has been consumed by an order.
func (c *UserCoupon) Used() bool {
	return c.UsedOrderID != nil
}

// ExpiredAt reports whether the coupon is past its expiry at now.
func (c *UserCoupon) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// AppliedCoupon describes the coupon reflected in a breakdown.
type AppliedCoupon struct {
	Code   string     `json:"code"`
	Kind   CouponKind `json:"kind"`
	Amount int64      `json:"amount"`
	Label  string     `json:"label"`
}

// IssuedCoupon is a coupon newly granted by a membership operation.
type IssuedCoupon struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// CouponListResponse is the API response for GET /api/coupons/me
type CouponListResponse struct {
	Coupons []UserCoupon `json:"coupons"`
}
