package service

import "errors"

var (
	// ErrLoginRequired is returned when an operation needs an authenticated user
	ErrLoginRequired = errors.New("login required")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidQuantity is returned when a line quantity is not a positive integer
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrCartEmpty is returned when checking out a cart without lines
	ErrCartEmpty = errors.New("cart is empty")

	// ErrOutOfStock is returned when a requested quantity exceeds live stock
	ErrOutOfStock = errors.New("out of stock")

	// ErrProductNotFound is returned when a referenced product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrCouponNotFound is returned when the user does not own a coupon with the given code
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponAlreadyUsed is returned when the coupon has already been consumed by an order
	ErrCouponAlreadyUsed = errors.New("coupon already used")

	// ErrCouponExpired is returned when the coupon is past its expiry
	ErrCouponExpired = errors.New("coupon expired")
)
