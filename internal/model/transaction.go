package model

import "time"

// TransactionStatus enumerates the lifecycle of a ticket purchase.  A
// transaction is created in WAITING_FOR_PAYMENT and moves forward only
// along the edges returned by CanTransitionTo; DONE, REJECTED, EXPIRED
// and CANCELED are terminal.
type TransactionStatus string

const (
	StatusWaitingForPayment TransactionStatus = "WAITING_FOR_PAYMENT"
	StatusWaitingForAdmin   TransactionStatus = "WAITING_FOR_ADMIN_CONFIRMATION"
	StatusDone              TransactionStatus = "DONE"
	StatusRejected          TransactionStatus = "REJECTED"
	StatusExpired           TransactionStatus = "EXPIRED"
	StatusCanceled          TransactionStatus = "CANCELED"
)

// statusTransitions maps each status to the set of statuses it may move
// to.  Terminal states map to an empty set.
var statusTransitions = map[TransactionStatus][]TransactionStatus{
	StatusWaitingForPayment: {StatusWaitingForAdmin, StatusCanceled, StatusExpired},
	StatusWaitingForAdmin:   {StatusDone, StatusRejected},
	StatusDone:              {},
	StatusRejected:          {},
	StatusExpired:           {},
	StatusCanceled:          {},
}

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s TransactionStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Transaction represents a row in the `transactions` table.  TotalIDR
// is computed once at creation (price minus coupon discount minus
// points, floored at zero) and never recomputed.
//
// Fields:
//  ID         – primary key identifier.
//  Reference  – opaque reference handed to the client (UUID).
//  UserID     – buyer.
//  EventID    – event the ticket is for.
//  CouponID   – coupon applied at creation, if any.
//  Status     – current lifecycle status.
//  PointsUsed – points the buyer chose to burn on this purchase.
//  TotalIDR   – amount due, always >= 0.
//  AdminNotes – optional note recorded by the admin on a status change.
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type Transaction struct {
	ID         uint64            `json:"id"`
	Reference  string            `json:"reference"`
	UserID     uint64            `json:"user_id"`
	EventID    uint64            `json:"event_id"`
	CouponID   *uint64           `json:"coupon_id,omitempty"`
	Status     TransactionStatus `json:"status"`
	PointsUsed int64             `json:"points_used"`
	TotalIDR   int64             `json:"total_idr"`
	AdminNotes *string           `json:"admin_notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
