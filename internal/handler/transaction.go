package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
	"github.com/ardiansyahnr/event-ticketing/internal/service"
)

// TransactionHandler serves the purchase flow for customers, the sales
// view for organizers and the confirmation queue for admins.
type TransactionHandler struct {
	Txs *service.TransactionService
}

func NewTransactionHandler(txs *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{Txs: txs}
}

// Create starts a ticket purchase for the authenticated customer.
func (h *TransactionHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.CreateTransactionInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	detail, err := h.Txs.Create(ctx, uid, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// Get returns one transaction. Customers can only read their own;
// admins can read any.
func (h *TransactionHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid transaction id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	detail, err := h.Txs.Get(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	if detail.UserID != uid && getRole(c) != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your transaction"})
	}
	return c.JSON(http.StatusOK, detail)
}

// Cancel aborts the caller's own waiting-for-payment transaction.
func (h *TransactionHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid transaction id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	detail, err := h.Txs.Cancel(ctx, id, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListMine returns the caller's purchase history, filterable by status.
func (h *TransactionHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := filterFromQuery(c)
	f.UserID = uid

	ctx, cancel := reqContext(c)
	defer cancel()

	details, page, err := h.Txs.List(ctx, f)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": details, "pagination": page})
}

// ListForOrganizer returns transactions against the organizer's events.
func (h *TransactionHandler) ListForOrganizer(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := filterFromQuery(c)
	f.OrganizerID = uid

	ctx, cancel := reqContext(c)
	defer cancel()

	details, page, err := h.Txs.List(ctx, f)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": details, "pagination": page})
}

// List is the admin view over all transactions with the full filter
// set: status, date window, amount range, user and event.
func (h *TransactionHandler) List(c echo.Context) error {
	f := filterFromQuery(c)
	if v := c.QueryParam("user_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.UserID = n
		}
	}
	if v := c.QueryParam("event_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.EventID = n
		}
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	details, page, err := h.Txs.List(ctx, f)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": details, "pagination": page})
}

// UpdateStatus is the admin confirmation endpoint: it moves a
// transaction to DONE, REJECTED, EXPIRED or CANCELED subject to the
// lifecycle rules.
func (h *TransactionHandler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid transaction id"})
	}
	var req service.UpdateStatusInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	detail, err := h.Txs.UpdateStatus(ctx, id, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Stats returns per-status counts and revenue, optionally narrowed to
// one user or event.
func (h *TransactionHandler) Stats(c echo.Context) error {
	var userID, eventID uint64
	if v := c.QueryParam("user_id"); v != "" {
		userID, _ = strconv.ParseUint(v, 10, 64)
	}
	if v := c.QueryParam("event_id"); v != "" {
		eventID, _ = strconv.ParseUint(v, 10, 64)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	stats, err := h.Txs.Stats(ctx, userID, eventID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

// ListExpiring surfaces the oldest unpaid transactions so an admin can
// expire them.
func (h *TransactionHandler) ListExpiring(c echo.Context) error {
	limit := queryInt(c, "limit", 50)

	ctx, cancel := reqContext(c)
	defer cancel()

	details, err := h.Txs.ListExpiring(ctx, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": details})
}

// filterFromQuery reads the shared filter params: status, date window,
// amount range and pagination.
func filterFromQuery(c echo.Context) repository.TransactionFilter {
	f := repository.TransactionFilter{
		Page:  queryInt(c, "page", 1),
		Limit: queryInt(c, "limit", 20),
	}
	if v := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); v != "" {
		f.Status = model.TransactionStatus(v)
	}
	if v := c.QueryParam("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.DateFrom = &t
		}
	}
	if v := c.QueryParam("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.DateTo = &t
		}
	}
	if v := c.QueryParam("min_amount"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MinAmount = &n
		}
	}
	if v := c.QueryParam("max_amount"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MaxAmount = &n
		}
	}
	return f
}
