package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront/internal/middleware"
	"github.com/fairyhunter13/storefront/internal/model"
)

// CheckoutServiceInterface defines the interface for settlement and order creation.
type CheckoutServiceInterface interface {
	Preview(ctx context.Context, userID int64, couponCode string) (*model.Breakdown, error)
	Checkout(ctx context.Context, userID int64, couponCode string) (*model.CheckoutResult, error)
	DirectCheckout(ctx context.Context, userID int64, items []model.DirectItem, couponCode string) (*model.CheckoutResult, error)
}

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	service   CheckoutServiceInterface
	validator *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler with the given service and validator.
func NewCheckoutHandler(svc CheckoutServiceInterface, v *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{service: svc, validator: v}
}

// PreviewQuery handles GET /api/checkout/preview?couponCode=
func (h *CheckoutHandler) PreviewQuery(c *fiber.Ctx) error {
	var req model.CheckoutRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	return h.preview(c, req)
}

// PreviewBody handles POST /api/checkout/preview
func (h *CheckoutHandler) PreviewBody(c *fiber.Ctx) error {
	req, err := h.parseCheckoutBody(c)
	if err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.preview(c, req)
}

func (h *CheckoutHandler) preview(c *fiber.Ctx, req model.CheckoutRequest) error {
	if err := h.validator.Struct(req); err != nil {
		return rejectInvalid(c, err)
	}

	breakdown, err := h.service.Preview(c.UserContext(), middleware.UserID(c), req.CouponCode)
	if err != nil {
		return writeError(c, err, "failed to preview checkout")
	}
	return c.JSON(breakdown)
}

// Checkout handles POST /api/checkout
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	req, err := h.parseCheckoutBody(c)
	if err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return rejectInvalid(c, err)
	}

	userID := middleware.UserID(c)
	result, err := h.service.Checkout(c.UserContext(), userID, req.CouponCode)
	if err != nil {
		return writeError(c, err, "failed to checkout")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Int64("user_id", userID).
		Int64("order_id", result.OrderID).
		Msg("checkout completed")
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Direct handles POST /api/checkout/direct
func (h *CheckoutHandler) Direct(c *fiber.Ctx) error {
	var req model.DirectCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return rejectInvalid(c, err)
	}

	userID := middleware.UserID(c)
	result, err := h.service.DirectCheckout(c.UserContext(), userID, req.Items, req.CouponCode)
	if err != nil {
		return writeError(c, err, "failed to checkout items")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Int64("user_id", userID).
		Int64("order_id", result.OrderID).
		Msg("direct checkout completed")
	return c.Status(fiber.StatusCreated).JSON(result)
}

// parseCheckoutBody accepts an empty body as "no coupon".
func (h *CheckoutHandler) parseCheckoutBody(c *fiber.Ctx) (model.CheckoutRequest, error) {
	var req model.CheckoutRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	err := c.BodyParser(&req)
	return req, err
}
