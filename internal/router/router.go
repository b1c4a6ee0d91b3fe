// Package router wires HTTP routes to handlers. Routes are grouped by
// audience: public browse, auth, customer, organizer and admin.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/handler"
	"github.com/ardiansyahnr/event-ticketing/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication beyond
// the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration, login and token lifecycle
// endpoints under /v1/auth, plus the protected /v1/me and
// /v1/auth/logout-all.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout-all", a.LogoutAll)
}
