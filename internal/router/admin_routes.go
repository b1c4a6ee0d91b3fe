package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/handler"
	"github.com/ardiansyahnr/event-ticketing/internal/middleware"
	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// RegisterAdmin registers the payment confirmation queue and reporting
// endpoints for the ADMIN role.
func RegisterAdmin(e *echo.Echo, txs *handler.TransactionHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/transactions", txs.List)
	g.PATCH("/transactions/:id/status", txs.UpdateStatus)
	g.GET("/transactions/stats", txs.Stats)
	g.GET("/transactions/expiring", txs.ListExpiring)
}
