package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ardiansyahnr/event-ticketing/internal/repository"
	"github.com/ardiansyahnr/event-ticketing/internal/service"
)

// CouponHandler exposes coupon creation for organizers, redemption
// checks for customers and coupon listings for both.
type CouponHandler struct {
	Coupons *service.CouponService
	Repo    *repository.CouponRepo
}

func NewCouponHandler(svc *service.CouponService, repo *repository.CouponRepo) *CouponHandler {
	return &CouponHandler{Coupons: svc, Repo: repo}
}

// Create makes a quota-based coupon owned by the organizer.
func (h *CouponHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req service.CreateCouponInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	coupon, err := h.Coupons.CreateOrganizerCoupon(ctx, req, uid)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, coupon)
}

type redeemReq struct {
	Code string `json:"code"`
}

// Redeem consumes one redemption of the given coupon code and returns
// the coupon with its discount, or the reason it cannot be redeemed
// (expired, exhausted, already used). Coupons applied during checkout
// go through the transaction flow instead, which tracks usage per
// transaction and can roll it back on rejection.
func (h *CouponHandler) Redeem(c echo.Context) error {
	var req redeemReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	coupon, err := h.Coupons.Redeem(ctx, strings.TrimSpace(req.Code))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, coupon)
}

// ListMine returns the organizer's coupons with how many transactions
// each one touched.
func (h *CouponHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	coupons, err := h.Repo.ListByOrganizer(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list coupons failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"coupons": coupons})
}

// ListOwned returns the customer's referral coupons.
func (h *CouponHandler) ListOwned(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	coupons, err := h.Repo.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list coupons failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"coupons": coupons})
}
