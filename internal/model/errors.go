package model

// ErrorCode is the closed set of failure codes returned to API callers.
type ErrorCode string

const (
	ErrCodeLoginRequired     ErrorCode = "LOGIN_REQUIRED"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidQuantity   ErrorCode = "INVALID_QUANTITY"
	ErrCodeCartEmpty         ErrorCode = "CART_EMPTY"
	ErrCodeOutOfStock        ErrorCode = "OUT_OF_STOCK"
	ErrCodeCouponNotFound    ErrorCode = "COUPON_NOT_FOUND"
	ErrCodeCouponAlreadyUsed ErrorCode = "COUPON_ALREADY_USED"
	ErrCodeCouponExpired     ErrorCode = "COUPON_EXPIRED"
	ErrCodeProductNotFound   ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
}
