package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront/internal/middleware"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/service"
)

type errorMapping struct {
	target  error
	status  int
	code    model.ErrorCode
	message string
}

var errorMappings = []errorMapping{
	{service.ErrLoginRequired, fiber.StatusUnauthorized, model.ErrCodeLoginRequired, "login required"},
	{service.ErrInvalidRequest, fiber.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid request"},
	{service.ErrInvalidQuantity, fiber.StatusBadRequest, model.ErrCodeInvalidQuantity, "quantity must be a positive integer"},
	{service.ErrCartEmpty, fiber.StatusBadRequest, model.ErrCodeCartEmpty, "cart is empty"},
	{service.ErrOutOfStock, fiber.StatusConflict, model.ErrCodeOutOfStock, "not enough stock"},
	{service.ErrCouponNotFound, fiber.StatusNotFound, model.ErrCodeCouponNotFound, "coupon not found"},
	{service.ErrCouponAlreadyUsed, fiber.StatusConflict, model.ErrCodeCouponAlreadyUsed, "coupon already used"},
	{service.ErrCouponExpired, fiber.StatusGone, model.ErrCodeCouponExpired, "coupon expired"},
	{service.ErrProductNotFound, fiber.StatusNotFound, model.ErrCodeProductNotFound, "product not found"},
}

// writeError maps service errors to the API error body. Unknown errors are logged and become 500.
func writeError(c *fiber.Ctx, err error, msg string) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(model.ErrorResponse{Error: m.code, Message: m.message})
		}
	}

	log.Error().
		Err(err).
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int64("user_id", middleware.UserID(c)).
		Msg(msg)
	return c.Status(fiber.StatusInternalServerError).JSON(model.ErrorResponse{
		Error:   model.ErrCodeInternal,
		Message: "internal server error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(model.ErrorResponse{
		Error:   model.ErrCodeInvalidRequest,
		Message: message,
	})
}

// rejectInvalid writes the response for a failed struct validation.
// When only the coupon code is malformed it cannot name an owned coupon, so it is reported as not found.
func rejectInvalid(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		onlyCoupon := true
		for _, fe := range ve {
			if fe.Field() != "couponCode" {
				onlyCoupon = false
				break
			}
		}
		if onlyCoupon {
			return writeError(c, service.ErrCouponNotFound, "malformed coupon code")
		}
	}
	return badRequest(c, formatValidationError(err))
}

// formatValidationError converts the first validator error to a client message.
// Field names come from json/query tags.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "max", "lte":
				return "invalid request: " + field + " exceeds maximum of " + fe.Param()
			case "min", "gte", "gt":
				return "invalid request: " + field + " is below minimum of " + fe.Param()
			case "notblank":
				return "invalid request: " + field + " must not be blank"
			case "couponcode":
				return "invalid request: " + field + " must contain only A-Z, 0-9 and _"
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}
