package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/handler"
	"github.com/ardiansyahnr/event-ticketing/internal/middleware"
	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// RegisterCustomer registers the purchase flow: transactions, coupon
// redemption checks, owned coupons and reviews. Admins share the
// transaction read endpoints.
func RegisterCustomer(e *echo.Echo, txs *handler.TransactionHandler, coupons *handler.CouponHandler, reviews *handler.ReviewHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))

	g.POST("/transactions", txs.Create)
	g.GET("/my-transactions", txs.ListMine)
	g.GET("/transactions/:id", txs.Get)
	g.DELETE("/transactions/:id", txs.Cancel)

	g.POST("/coupons/redeem", coupons.Redeem)
	g.GET("/my-coupons", coupons.ListOwned)

	g.POST("/events/:id/reviews", reviews.Create)
	g.DELETE("/reviews/:id", reviews.Delete)
}
