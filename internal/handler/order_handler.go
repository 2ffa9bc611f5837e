package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/storefront/internal/middleware"
	"github.com/fairyhunter13/storefront/internal/model"
)

// OrderServiceInterface defines the interface for order history reads.
type OrderServiceInterface interface {
	History(ctx context.Context, userID int64) (*model.OrderHistory, error)
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service OrderServiceInterface
}

// NewOrderHandler creates a new OrderHandler with the given service.
func NewOrderHandler(svc OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: svc}
}

// Mine handles GET /api/orders/me
func (h *OrderHandler) Mine(c *fiber.Ctx) error {
	history, err := h.service.History(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err, "failed to load order history")
	}
	return c.JSON(history)
}
