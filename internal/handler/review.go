package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
)

// ReviewHandler lets customers rate events they actually attended.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
	Txs     *repository.TransactionRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, txs *repository.TransactionRepo) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Txs: txs}
}

type reviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Create stores a review for the event in the path. Only users holding
// a DONE transaction for the event may review it, and only once.
func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	attended, err := h.Txs.HasDoneTransaction(ctx, uid, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check attendance failed"})
	}
	if !attended {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only attendees can review this event"})
	}

	rv := model.Review{
		UserID:  uid,
		EventID: eventID,
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := h.Reviews.Create(ctx, &rv); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already reviewed this event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	return c.JSON(http.StatusCreated, rv)
}

// ListByEvent returns all reviews of an event, public.
func (h *ReviewHandler) ListByEvent(c echo.Context) error {
	eventID, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	reviews, err := h.Reviews.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reviews failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": reviews})
}

// Delete removes the caller's own review.
func (h *ReviewHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	switch err := h.Reviews.Delete(ctx, id, uid); {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your review"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete review failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
