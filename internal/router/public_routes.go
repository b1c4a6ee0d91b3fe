package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints. The
// cacheMW argument is the Redis response cache; pass nil to serve
// everything uncached.
func RegisterPublic(e *echo.Echo, events *handler.EventHandler, reviews *handler.ReviewHandler, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cacheMW != nil {
		g.Use(cacheMW)
	}
	g.GET("/events", events.List)
	g.GET("/events/:id", events.Get)
	g.GET("/events/:id/reviews", reviews.ListByEvent)
}
