package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/repository"
)

// DashboardHandler serves the organizer's aggregate numbers.
type DashboardHandler struct {
	Dash *repository.DashboardRepo
}

func NewDashboardHandler(dash *repository.DashboardRepo) *DashboardHandler {
	return &DashboardHandler{Dash: dash}
}

// Stats returns event count, tickets sold, gross revenue, active
// coupons and the per-status transaction breakdown for the organizer.
func (h *DashboardHandler) Stats(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	stats, err := h.Dash.StatsForOrganizer(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load dashboard failed"})
	}
	return c.JSON(http.StatusOK, stats)
}
