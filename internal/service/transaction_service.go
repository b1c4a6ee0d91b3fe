package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/queue"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
	"github.com/ardiansyahnr/event-ticketing/internal/utils"
)

// TransactionStore is the persistence contract of the transaction
// engine. UpdateStatus is a compare-and-set keyed on the expected
// source status.
type TransactionStore interface {
	Create(ctx context.Context, t *model.Transaction) error
	GetByID(ctx context.Context, id uint64) (repository.TransactionDetail, error)
	List(ctx context.Context, f repository.TransactionFilter) ([]repository.TransactionDetail, repository.Pagination, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.TransactionStatus, adminNotes *string) error
	Stats(ctx context.Context, userID, eventID uint64) ([]repository.StatusCount, error)
	ListExpiring(ctx context.Context, limit int) ([]repository.TransactionDetail, error)
}

// EventStore is the seat-inventory contract. Decrement fails with
// repository.ErrSoldOut instead of ever producing a negative count.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	DecrementQuantity(ctx context.Context, eventID uint64) error
	IncrementQuantity(ctx context.Context, eventID uint64) error
}

// UserStore provides the buyer lookups the engine needs.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// CouponEngine is the slice of the coupon service the transaction
// engine depends on.
type CouponEngine interface {
	Get(ctx context.Context, id uint64) (model.Coupon, error)
	UseCoupon(ctx context.Context, id uint64) (model.Coupon, error)
	RollbackUsage(ctx context.Context, id uint64) (model.Coupon, error)
}

// TransactionService orchestrates the purchase lifecycle: creation
// (price computation, coupon application, seat decrement), admin status
// transitions with their side effects, and user cancellation with
// compensating inventory/coupon restores.
type TransactionService struct {
	transactions TransactionStore
	events       EventStore
	users        UserStore
	coupons      CouponEngine
	notifier     Notifier
	now          func() time.Time
}

// NewTransactionService wires the engine to its collaborators.
func NewTransactionService(t TransactionStore, e EventStore, u UserStore, c CouponEngine, n Notifier) *TransactionService {
	return &TransactionService{
		transactions: t,
		events:       e,
		users:        u,
		coupons:      c,
		notifier:     n,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransactionInput is the purchase request.
type CreateTransactionInput struct {
	EventID    uint64  `json:"event_id"`
	CouponID   *uint64 `json:"coupon_id"`
	PointsUsed int64   `json:"points_used"`
}

// Create opens a transaction for one ticket. The total is the event
// price minus coupon discount minus points, floored at zero. The seat
// is consumed immediately; payment confirmation only changes status.
func (s *TransactionService) Create(ctx context.Context, userID uint64, in CreateTransactionInput) (repository.TransactionDetail, error) {
	if in.EventID == 0 {
		return repository.TransactionDetail{}, fmt.Errorf("%w: event_id is required", ErrValidation)
	}
	if in.PointsUsed < 0 {
		return repository.TransactionDetail{}, fmt.Errorf("%w: points_used cannot be negative", ErrValidation)
	}

	event, err := s.events.GetByID(ctx, in.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.TransactionDetail{}, fmt.Errorf("%w: event %d", ErrNotFound, in.EventID)
	}
	if err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("find event: %w", err)
	}
	if event.Quantity <= 0 {
		return repository.TransactionDetail{}, fmt.Errorf("%w: event %q", ErrSoldOut, event.Title)
	}
	if event.HasStarted(s.now()) {
		return repository.TransactionDetail{}, fmt.Errorf("%w: event %q", ErrEventStarted, event.Title)
	}

	total := event.PriceIDR
	if event.IsFree {
		total = 0
	}

	if in.CouponID != nil {
		coupon, err := s.coupons.Get(ctx, *in.CouponID)
		if err != nil {
			return repository.TransactionDetail{}, err
		}
		total = max(0, total-coupon.DiscountIDR)
		if _, err := s.coupons.UseCoupon(ctx, coupon.ID); err != nil {
			return repository.TransactionDetail{}, err
		}
	}

	if in.PointsUsed > 0 {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return repository.TransactionDetail{}, fmt.Errorf("find user: %w", err)
		}
		if user.Points < in.PointsUsed {
			return repository.TransactionDetail{}, fmt.Errorf("%w: balance %d, requested %d",
				ErrInsufficientPoints, user.Points, in.PointsUsed)
		}
		// TODO: debit points_used from the user balance once the point
		// ledger lands; today the balance is only checked, not reduced.
		total = max(0, total-in.PointsUsed)
	}

	tx := model.Transaction{
		Reference:  utils.NewReference(),
		UserID:     userID,
		EventID:    in.EventID,
		CouponID:   in.CouponID,
		Status:     model.StatusWaitingForPayment,
		PointsUsed: in.PointsUsed,
		TotalIDR:   total,
	}
	if err := s.transactions.Create(ctx, &tx); err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("create transaction: %w", err)
	}

	if err := s.events.DecrementQuantity(ctx, in.EventID); err != nil {
		if errors.Is(err, repository.ErrSoldOut) {
			return repository.TransactionDetail{}, fmt.Errorf("%w: event %q", ErrSoldOut, event.Title)
		}
		return repository.TransactionDetail{}, fmt.Errorf("consume seat: %w", err)
	}

	detail, err := s.transactions.GetByID(ctx, tx.ID)
	if err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("load transaction: %w", err)
	}
	return detail, nil
}

// UpdateStatusInput is the admin's status change request.
type UpdateStatusInput struct {
	Status     model.TransactionStatus `json:"status"`
	AdminNotes *string                 `json:"admin_notes"`
}

// UpdateStatus validates and applies a status transition. Moving to
// DONE sends a confirmation; moving to REJECTED restores the seat and
// sends a rejection notice. Notifications are best effort: a publish
// failure is logged and the transition stands.
func (s *TransactionService) UpdateStatus(ctx context.Context, id uint64, in UpdateStatusInput) (repository.TransactionDetail, error) {
	if !in.Status.Valid() {
		return repository.TransactionDetail{}, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
	}
	detail, err := s.transactions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.TransactionDetail{}, fmt.Errorf("%w: transaction %d", ErrNotFound, id)
	}
	if err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("find transaction: %w", err)
	}
	if !detail.Status.CanTransitionTo(in.Status) {
		return repository.TransactionDetail{}, &TransitionError{From: detail.Status, To: in.Status}
	}

	err = s.transactions.UpdateStatus(ctx, id, detail.Status, in.Status, in.AdminNotes)
	if errors.Is(err, repository.ErrStaleStatus) {
		// Someone else moved the transaction first; report against the
		// fresh status.
		fresh, ferr := s.transactions.GetByID(ctx, id)
		if ferr != nil {
			return repository.TransactionDetail{}, fmt.Errorf("reload transaction: %w", ferr)
		}
		return repository.TransactionDetail{}, &TransitionError{From: fresh.Status, To: in.Status}
	}
	if err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("update status: %w", err)
	}

	switch in.Status {
	case model.StatusDone:
		s.notify(ctx, detail, "Congratulations! Your ticket purchase is confirmed!",
			"transaction-accepted", map[string]string{
				"user_name":   detail.User.Name,
				"event_title": detail.Event.Title,
				"total_idr":   strconv.FormatInt(detail.TotalIDR, 10),
			})
	case model.StatusRejected:
		s.notify(ctx, detail, "Transaction Rejected", "transaction-rejected",
			map[string]string{
				"user_name":   detail.User.Name,
				"event_title": detail.Event.Title,
				"info":        "Your payment has been rejected. Seats have been restored.",
			})
		// Seat restore happens after the status write; a failure here
		// leaves the status committed and surfaces as its own error.
		if err := s.events.IncrementQuantity(ctx, detail.EventID); err != nil {
			return repository.TransactionDetail{}, fmt.Errorf("restore seat: %w", err)
		}
		if detail.CouponID != nil {
			if _, err := s.coupons.RollbackUsage(ctx, *detail.CouponID); err != nil {
				return repository.TransactionDetail{}, fmt.Errorf("restore coupon: %w", err)
			}
		}
	}

	updated, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("load transaction: %w", err)
	}
	return updated, nil
}

// Cancel lets the buyer abort a transaction that is still waiting for
// payment. The seat and any applied coupon usage are restored.
func (s *TransactionService) Cancel(ctx context.Context, id, requestingUserID uint64) (repository.TransactionDetail, error) {
	detail, err := s.transactions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.TransactionDetail{}, fmt.Errorf("%w: transaction %d", ErrNotFound, id)
	}
	if err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("find transaction: %w", err)
	}
	if detail.UserID != requestingUserID {
		return repository.TransactionDetail{}, fmt.Errorf("%w: transaction belongs to another user", ErrForbidden)
	}
	if detail.Status != model.StatusWaitingForPayment {
		return repository.TransactionDetail{}, fmt.Errorf("%w: cannot cancel a %s transaction",
			ErrInvalidState, detail.Status)
	}

	err = s.transactions.UpdateStatus(ctx, id, model.StatusWaitingForPayment, model.StatusCanceled, nil)
	if errors.Is(err, repository.ErrStaleStatus) {
		return repository.TransactionDetail{}, fmt.Errorf("%w: transaction is no longer waiting for payment",
			ErrInvalidState)
	}
	if err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("cancel transaction: %w", err)
	}

	if err := s.events.IncrementQuantity(ctx, detail.EventID); err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("restore seat: %w", err)
	}
	if detail.CouponID != nil {
		if _, err := s.coupons.RollbackUsage(ctx, *detail.CouponID); err != nil {
			return repository.TransactionDetail{}, fmt.Errorf("restore coupon: %w", err)
		}
	}

	updated, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("load transaction: %w", err)
	}
	return updated, nil
}

// Get fetches one transaction with its relations.
func (s *TransactionService) Get(ctx context.Context, id uint64) (repository.TransactionDetail, error) {
	detail, err := s.transactions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.TransactionDetail{}, fmt.Errorf("%w: transaction %d", ErrNotFound, id)
	}
	if err != nil {
		return repository.TransactionDetail{}, fmt.Errorf("find transaction: %w", err)
	}
	return detail, nil
}

// List returns transactions matching the filter with pagination.
func (s *TransactionService) List(ctx context.Context, f repository.TransactionFilter) ([]repository.TransactionDetail, repository.Pagination, error) {
	details, page, err := s.transactions.List(ctx, f)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list transactions: %w", err)
	}
	return details, page, nil
}

// Stats returns per-status transaction counts and sums.
func (s *TransactionService) Stats(ctx context.Context, userID, eventID uint64) ([]repository.StatusCount, error) {
	stats, err := s.transactions.Stats(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}
	return stats, nil
}

// ListExpiring returns the oldest transactions still waiting for payment.
func (s *TransactionService) ListExpiring(ctx context.Context, limit int) ([]repository.TransactionDetail, error) {
	details, err := s.transactions.ListExpiring(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list expiring transactions: %w", err)
	}
	return details, nil
}

// notify publishes a notification event and logs (but swallows) any
// failure.
func (s *TransactionService) notify(ctx context.Context, detail repository.TransactionDetail, subject, template string, msgCtx map[string]string) {
	if s.notifier == nil {
		return
	}
	ev := queue.NotificationEvent{
		MessageID:  utils.NewReference(),
		ToEmail:    detail.User.Email,
		Subject:    subject,
		Template:   template,
		Context:    msgCtx,
		OccurredAt: s.now().Format(time.RFC3339),
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		log.Printf("transaction %d: notify %q failed: %v", detail.ID, template, err)
	}
}
