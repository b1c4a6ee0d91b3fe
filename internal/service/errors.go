// Package service implements the business rules of the ticketing
// backend: the purchase lifecycle, the coupon redemption state machine
// and referral crediting. Services receive their stores as interfaces
// so tests can inject in-memory fakes.
package service

import (
	"errors"
	"fmt"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// Error values exposed to handlers. Services wrap them with
// fmt.Errorf("...: %w", ...) so callers match with errors.Is while
// users still get a readable message.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrExpired            = errors.New("coupon has expired")
	ErrAlreadyUsed        = errors.New("coupon has already been used")
	ErrExhausted          = errors.New("coupon quota exceeded")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidState       = errors.New("operation not allowed in current state")
	ErrForbidden          = errors.New("forbidden")
	ErrSoldOut            = errors.New("event tickets are sold out")
	ErrEventStarted       = errors.New("event has already started")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// TransitionError reports a disallowed status transition, carrying the
// offending pair. It matches ErrInvalidTransition under errors.Is.
type TransitionError struct {
	From model.TransactionStatus
	To   model.TransactionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Is lets errors.Is(err, ErrInvalidTransition) succeed for *TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
