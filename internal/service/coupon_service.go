package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
)

// referralCouponValidity is how long a referral coupon stays
// redeemable after signup.
const referralCouponValidity = 3 * 30 * 24 * time.Hour // 3 months

// CouponStore is the persistence contract the coupon engine needs. The
// counter mutations are atomic conditional updates; the store reports a
// failed precondition through the repository sentinel errors.
type CouponStore interface {
	Create(ctx context.Context, c *model.Coupon) error
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	FindByID(ctx context.Context, id uint64) (model.Coupon, error)
	RedeemOrganizer(ctx context.Context, id uint64, exhaustedStatus string) (model.Coupon, error)
	MarkReferralUsed(ctx context.Context, id uint64) (model.Coupon, error)
	IncrementUsage(ctx context.Context, id uint64) (model.Coupon, error)
	RollbackOrganizerUsage(ctx context.Context, id uint64) (model.Coupon, error)
	ResetReferral(ctx context.Context, id uint64) (model.Coupon, error)
}

// CouponService is the redemption and issuance engine over a
// CouponStore. The exhaustion policy decides whether a depleted
// organizer coupon reads USED or EXPIRED afterwards; both behaviours
// exist in the wild, so it is an explicit constructor argument.
type CouponService struct {
	store  CouponStore
	policy model.ExhaustionPolicy
	now    func() time.Time
}

// NewCouponService constructs a CouponService. An empty policy
// defaults to marking exhausted coupons USED.
func NewCouponService(store CouponStore, policy model.ExhaustionPolicy) *CouponService {
	if policy == "" {
		policy = model.ExhaustToUsed
	}
	return &CouponService{store: store, policy: policy, now: func() time.Time { return time.Now().UTC() }}
}

// CreateCouponInput carries the organizer's coupon parameters.
type CreateCouponInput struct {
	Code        string     `json:"code"`
	DiscountIDR int64      `json:"discount_idr"`
	Quantity    int64      `json:"quantity"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// CreateOrganizerCoupon creates a quota-based coupon owned by an
// organizer.
func (s *CouponService) CreateOrganizerCoupon(ctx context.Context, in CreateCouponInput, organizerID uint64) (model.Coupon, error) {
	if organizerID == 0 {
		return model.Coupon{}, fmt.Errorf("%w: organizer is required", ErrValidation)
	}
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if in.Code == "" {
		return model.Coupon{}, fmt.Errorf("%w: code is required", ErrValidation)
	}
	if in.DiscountIDR <= 0 {
		return model.Coupon{}, fmt.Errorf("%w: discount_idr must be positive", ErrValidation)
	}
	if in.Quantity <= 0 {
		return model.Coupon{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	used := int64(0)
	c := model.Coupon{
		Code:        in.Code,
		Type:        model.CouponTypeOrganizer,
		DiscountIDR: in.DiscountIDR,
		Status:      model.CouponStatusAvailable,
		Quantity:    &in.Quantity,
		Used:        &used,
		OrganizerID: &organizerID,
		ExpiresAt:   in.ExpiresAt,
	}
	if err := s.store.Create(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrCodeExists) {
			return model.Coupon{}, fmt.Errorf("%w: coupon code already taken", ErrValidation)
		}
		return model.Coupon{}, fmt.Errorf("create coupon: %w", err)
	}
	return c, nil
}

// CreateReferralCoupon issues a single-use coupon to a freshly referred
// user. It expires three months after issuance.
func (s *CouponService) CreateReferralCoupon(ctx context.Context, userID uint64, discountIDR int64, code string) (model.Coupon, error) {
	if userID == 0 {
		return model.Coupon{}, fmt.Errorf("%w: user is required", ErrValidation)
	}
	expiresAt := s.now().Add(referralCouponValidity)
	c := model.Coupon{
		Code:        strings.ToUpper(strings.TrimSpace(code)),
		Type:        model.CouponTypeReferral,
		DiscountIDR: discountIDR,
		Status:      model.CouponStatusAvailable,
		UserID:      &userID,
		ExpiresAt:   &expiresAt,
	}
	if err := s.store.Create(ctx, &c); err != nil {
		return model.Coupon{}, fmt.Errorf("create referral coupon: %w", err)
	}
	return c, nil
}

// Get fetches a coupon by id.
func (s *CouponService) Get(ctx context.Context, id uint64) (model.Coupon, error) {
	c, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Coupon{}, fmt.Errorf("%w: coupon %d", ErrNotFound, id)
	}
	if err != nil {
		return model.Coupon{}, fmt.Errorf("find coupon: %w", err)
	}
	return c, nil
}

// Redeem consumes one redemption of the coupon with the given code.
// Organizer coupons burn one unit of quota; referral coupons are
// one-shot. Expiry is checked lazily here, there is no background
// sweep.
func (s *CouponService) Redeem(ctx context.Context, code string) (model.Coupon, error) {
	c, err := s.store.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, repository.ErrNotFound) {
		return model.Coupon{}, fmt.Errorf("%w: coupon code %q", ErrNotFound, code)
	}
	if err != nil {
		return model.Coupon{}, fmt.Errorf("find coupon: %w", err)
	}
	if c.IsExpired(s.now()) {
		return model.Coupon{}, fmt.Errorf("%w: code %s", ErrExpired, c.Code)
	}
	if c.Type == model.CouponTypeReferral && c.Status == model.CouponStatusUsed {
		return model.Coupon{}, fmt.Errorf("%w: code %s", ErrAlreadyUsed, c.Code)
	}

	switch c.Type {
	case model.CouponTypeOrganizer:
		updated, err := s.store.RedeemOrganizer(ctx, c.ID, string(s.policy))
		switch {
		case errors.Is(err, repository.ErrCouponExhausted),
			errors.Is(err, repository.ErrCouponUnavailable):
			return model.Coupon{}, fmt.Errorf("%w: code %s", ErrExhausted, c.Code)
		case err != nil:
			return model.Coupon{}, fmt.Errorf("redeem coupon: %w", err)
		}
		return updated, nil
	case model.CouponTypeReferral:
		updated, err := s.store.MarkReferralUsed(ctx, c.ID)
		switch {
		case errors.Is(err, repository.ErrCouponUnavailable):
			return model.Coupon{}, fmt.Errorf("%w: code %s", ErrAlreadyUsed, c.Code)
		case err != nil:
			return model.Coupon{}, fmt.Errorf("redeem coupon: %w", err)
		}
		return updated, nil
	default:
		return model.Coupon{}, fmt.Errorf("%w: unknown coupon type %q", ErrValidation, c.Type)
	}
}

// UseCoupon records that a coupon was applied to a transaction. This is
// the usage-counter path, distinct from self-service redemption: an
// organizer coupon tracks applications in used against its quantity; a
// referral coupon simply flips to USED.
func (s *CouponService) UseCoupon(ctx context.Context, id uint64) (model.Coupon, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return model.Coupon{}, err
	}
	switch c.Type {
	case model.CouponTypeOrganizer:
		updated, err := s.store.IncrementUsage(ctx, id)
		switch {
		case errors.Is(err, repository.ErrCouponExhausted):
			return model.Coupon{}, fmt.Errorf("%w: code %s", ErrExhausted, c.Code)
		case err != nil:
			return model.Coupon{}, fmt.Errorf("use coupon: %w", err)
		}
		return updated, nil
	case model.CouponTypeReferral:
		if c.Status == model.CouponStatusUsed {
			return model.Coupon{}, fmt.Errorf("%w: code %s", ErrAlreadyUsed, c.Code)
		}
		updated, err := s.store.MarkReferralUsed(ctx, id)
		switch {
		case errors.Is(err, repository.ErrCouponUnavailable):
			return model.Coupon{}, fmt.Errorf("%w: code %s", ErrAlreadyUsed, c.Code)
		case err != nil:
			return model.Coupon{}, fmt.Errorf("use coupon: %w", err)
		}
		return updated, nil
	default:
		return model.Coupon{}, fmt.Errorf("%w: unknown coupon type %q", ErrValidation, c.Type)
	}
}

// RollbackUsage undoes a recorded usage after a canceled or rejected
// transaction: organizer coupons get one use back, referral coupons
// return to AVAILABLE.
func (s *CouponService) RollbackUsage(ctx context.Context, id uint64) (model.Coupon, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return model.Coupon{}, err
	}
	switch c.Type {
	case model.CouponTypeOrganizer:
		updated, err := s.store.RollbackOrganizerUsage(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNothingToRollback):
			return model.Coupon{}, fmt.Errorf("%w: no usage recorded for code %s", ErrInvalidState, c.Code)
		case err != nil:
			return model.Coupon{}, fmt.Errorf("rollback coupon usage: %w", err)
		}
		return updated, nil
	case model.CouponTypeReferral:
		updated, err := s.store.ResetReferral(ctx, id)
		switch {
		case errors.Is(err, repository.ErrNothingToRollback):
			return model.Coupon{}, fmt.Errorf("%w: code %s is not used", ErrInvalidState, c.Code)
		case err != nil:
			return model.Coupon{}, fmt.Errorf("rollback coupon usage: %w", err)
		}
		return updated, nil
	default:
		return model.Coupon{}, fmt.Errorf("%w: unknown coupon type %q", ErrValidation, c.Type)
	}
}
