// Package repository defines error values that are reused across
// multiple repositories. These sentinel values allow higher layers such
// as services and handlers to distinguish between failure scenarios
// without inspecting SQL errors. Counter mutations (event quantity,
// coupon quota and usage) are expressed as single conditional UPDATE
// statements; when the condition fails, the repository reports which
// precondition was violated through one of these values.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering a user with an email
// address that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrCodeExists is returned when creating a coupon whose code is
// already taken.
var ErrCodeExists = errors.New("coupon code already exists")

// ErrSoldOut is returned by the conditional seat decrement when the
// event has no remaining quantity.
var ErrSoldOut = errors.New("event sold out")

// ErrCouponExhausted is returned when an organizer coupon's quota or
// usage allowance is depleted.
var ErrCouponExhausted = errors.New("coupon exhausted")

// ErrCouponUnavailable is returned when a coupon is not in the
// AVAILABLE status required for the attempted mutation.
var ErrCouponUnavailable = errors.New("coupon not available")

// ErrNothingToRollback is returned when a usage rollback finds no
// recorded usage to undo.
var ErrNothingToRollback = errors.New("no coupon usage to roll back")

// ErrStaleStatus is returned by the compare-and-set status update when
// the row is no longer in the expected source status.
var ErrStaleStatus = errors.New("transaction status changed concurrently")

// ErrInsufficientPoints is returned by the conditional point debit when
// the user's balance is lower than the requested amount.
var ErrInsufficientPoints = errors.New("insufficient points")

// isDuplicate reports whether err is a MySQL duplicate-key error
// (error 1062 on a unique index).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
