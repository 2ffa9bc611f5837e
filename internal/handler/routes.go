package handler

import "github.com/gofiber/fiber/v2"

// Handlers groups every HTTP handler mounted by Register.
type Handlers struct {
	Health     *HealthHandler
	Products   *ProductHandler
	Cart       *CartHandler
	Checkout   *CheckoutHandler
	Orders     *OrderHandler
	Membership *MembershipHandler
}

// Register mounts the public and authenticated routes. auth guards everything but
// health and the product catalog.
func Register(app *fiber.App, h Handlers, auth fiber.Handler) {
	app.Get("/health", h.Health.Check)

	api := app.Group("/api")
	api.Get("/products", h.Products.List)

	// registered after the catalog so the product listing stays public
	user := api.Group("", auth)

	user.Get("/cart", h.Cart.View)
	user.Post("/cart/add", h.Cart.Add)
	user.Post("/cart/update", h.Cart.Update)
	user.Delete("/cart/:productId", h.Cart.Remove)

	user.Get("/checkout/preview", h.Checkout.PreviewQuery)
	user.Post("/checkout/preview", h.Checkout.PreviewBody)
	user.Post("/checkout", h.Checkout.Checkout)
	user.Post("/checkout/direct", h.Checkout.Direct)

	user.Get("/orders/me", h.Orders.Mine)
	user.Get("/coupons/me", h.Membership.Coupons)
	user.Post("/membership/claim", h.Membership.Claim)
	user.Post("/membership/resync", h.Membership.Resync)
}
