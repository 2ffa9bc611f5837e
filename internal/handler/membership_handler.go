package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/storefront/internal/middleware"
	"github.com/fairyhunter13/storefront/internal/model"
)

// MembershipServiceInterface defines the interface for membership and coupon wallet operations.
type MembershipServiceInterface interface {
	Claim(ctx context.Context, userID int64) (*model.ClaimResult, error)
	Resync(ctx context.Context, userID int64) (*model.MembershipStatus, error)
	ListCoupons(ctx context.Context, userID int64) (*model.CouponListResponse, error)
}

// MembershipHandler handles HTTP requests for membership tiers and coupons.
type MembershipHandler struct {
	service MembershipServiceInterface
}

// NewMembershipHandler creates a new MembershipHandler with the given service.
func NewMembershipHandler(svc MembershipServiceInterface) *MembershipHandler {
	return &MembershipHandler{service: svc}
}

// Claim handles POST /api/membership/claim
func (h *MembershipHandler) Claim(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	result, err := h.service.Claim(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "failed to claim membership coupons")
	}

	if result.Issued == nil {
		result.Issued = []model.IssuedCoupon{}
	}
	if len(result.Issued) > 0 {
		log.Info().
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Int64("user_id", userID).
			Str("level", string(result.Level)).
			Int("issued", len(result.Issued)).
			Msg("membership coupons claimed")
	}
	return c.JSON(result)
}

// Resync handles POST /api/membership/resync
func (h *MembershipHandler) Resync(c *fiber.Ctx) error {
	status, err := h.service.Resync(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err, "failed to resync membership")
	}
	return c.JSON(status)
}

// Coupons handles GET /api/coupons/me
func (h *MembershipHandler) Coupons(c *fiber.Ctx) error {
	resp, err := h.service.ListCoupons(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err, "failed to list coupons")
	}
	return c.JSON(resp)
}
