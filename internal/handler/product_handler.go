package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/storefront/internal/model"
)

// ProductServiceInterface defines the interface for catalog reads.
type ProductServiceInterface interface {
	List(ctx context.Context, req *model.ProductListRequest) (*model.ProductListResponse, error)
}

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service   ProductServiceInterface
	validator *validator.Validate
}

// NewProductHandler creates a new ProductHandler with the given service and validator.
func NewProductHandler(svc ProductServiceInterface, v *validator.Validate) *ProductHandler {
	return &ProductHandler{service: svc, validator: v}
}

// List handles GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var req model.ProductListRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, formatValidationError(err))
	}

	resp, err := h.service.List(c.UserContext(), &req)
	if err != nil {
		return writeError(c, err, "failed to list products")
	}
	return c.JSON(resp)
}
