package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/handler"
	"github.com/ardiansyahnr/event-ticketing/internal/middleware"
	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// RegisterOrganizer registers event management, coupon management and
// the sales dashboard for the ORGANIZER role.
func RegisterOrganizer(e *echo.Echo, events *handler.EventHandler, coupons *handler.CouponHandler, txs *handler.TransactionHandler, dash *handler.DashboardHandler, jwtSecret string) {
	g := e.Group("/v1/organizer")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleOrganizer))

	g.POST("/events", events.Create)
	g.GET("/events", events.ListMine)
	g.PUT("/events/:id", events.Update)

	g.POST("/coupons", coupons.Create)
	g.GET("/coupons", coupons.ListMine)

	g.GET("/transactions", txs.ListForOrganizer)
	g.GET("/dashboard", dash.Stats)
}
