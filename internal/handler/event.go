package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
)

// EventHandler serves both the public browse endpoints and the
// organizer's event management.
type EventHandler struct {
	Events *repository.EventRepo
}

func NewEventHandler(events *repository.EventRepo) *EventHandler {
	return &EventHandler{Events: events}
}

type eventReq struct {
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Quantity    int64     `json:"quantity"`
	PriceIDR    int64     `json:"price_idr"`
	IsFree      bool      `json:"is_free"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

func (r eventReq) validate() string {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return "title required"
	case r.Quantity < 0:
		return "quantity cannot be negative"
	case r.PriceIDR < 0:
		return "price_idr cannot be negative"
	case !r.IsFree && r.PriceIDR == 0:
		return "paid event needs a price, or set is_free"
	case r.StartsAt.IsZero() || r.EndsAt.IsZero():
		return "starts_at and ends_at required"
	case !r.EndsAt.After(r.StartsAt):
		return "ends_at must be after starts_at"
	}
	return ""
}

// Create registers a new event owned by the authenticated organizer.
func (h *EventHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ev := model.Event{
		OrganizerID: uid,
		Title:       strings.TrimSpace(req.Title),
		Category:    strings.TrimSpace(req.Category),
		Location:    strings.TrimSpace(req.Location),
		Description: req.Description,
		Quantity:    req.Quantity,
		PriceIDR:    req.PriceIDR,
		IsFree:      req.IsFree,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
	}
	if ev.IsFree {
		ev.PriceIDR = 0
	}
	if err := h.Events.Create(ctx, &ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, ev)
}

// Update edits an event the organizer owns. Remaining ticket quantity
// is managed by the transaction flow and cannot be edited here.
func (h *EventHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ev := model.Event{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Category:    strings.TrimSpace(req.Category),
		Location:    strings.TrimSpace(req.Location),
		Description: req.Description,
		PriceIDR:    req.PriceIDR,
		IsFree:      req.IsFree,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
	}
	if ev.IsFree {
		ev.PriceIDR = 0
	}
	switch err := h.Events.Update(ctx, &ev, uid); {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}

	updated, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// ListMine returns the organizer's own events.
func (h *EventHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	events, err := h.Events.ListByOrganizer(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// List is the public browse endpoint with category/location filters and
// free-text search over title and description.
func (h *EventHandler) List(c echo.Context) error {
	f := repository.EventFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 20),
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	events, total, err := h.Events.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"events": events,
		"total":  total,
		"page":   f.Page,
		"limit":  f.Limit,
	})
}

// Get returns one event by id, public.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	return c.JSON(http.StatusOK, ev)
}
