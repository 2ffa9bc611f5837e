package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/storefront/internal/middleware"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/service"
)

// CartServiceInterface defines the interface for cart operations.
type CartServiceInterface interface {
	AddItem(ctx context.Context, userID int64, req *model.AddCartItemRequest) error
	UpdateItem(ctx context.Context, userID int64, req *model.UpdateCartItemRequest) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	View(ctx context.Context, userID int64) (*model.CartView, error)
}

// CartHandler handles HTTP requests for the user's cart.
type CartHandler struct {
	service   CartServiceInterface
	validator *validator.Validate
}

// NewCartHandler creates a new CartHandler with the given service and validator.
func NewCartHandler(svc CartServiceInterface, v *validator.Validate) *CartHandler {
	return &CartHandler{service: svc, validator: v}
}

// View handles GET /api/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	view, err := h.service.View(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err, "failed to load cart")
	}
	return c.JSON(view)
}

// Add handles POST /api/cart/add
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req model.AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	if err := h.service.AddItem(c.UserContext(), middleware.UserID(c), &req); err != nil {
		return writeError(c, err, "failed to add cart item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Update handles POST /api/cart/update. A zero quantity removes the line.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	var req model.UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	if err := h.service.UpdateItem(c.UserContext(), middleware.UserID(c), &req); err != nil {
		return writeError(c, err, "failed to update cart item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Remove handles DELETE /api/cart/:productId
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("productId")
	if err != nil || productID <= 0 {
		return writeError(c, service.ErrInvalidRequest, "")
	}

	if err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), int64(productID)); err != nil {
		return writeError(c, err, "failed to remove cart item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
