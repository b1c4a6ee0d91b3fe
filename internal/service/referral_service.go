package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
	"github.com/ardiansyahnr/event-ticketing/internal/utils"
)

const (
	// referralPointsReward is credited to the referrer each time one of
	// their codes is used at registration.
	referralPointsReward = 10000
	// referralCouponDiscountIDR is the welcome coupon handed to the new
	// user who registered with a referral code.
	referralCouponDiscountIDR = 15000
)

// ReferralUserStore covers the user mutations the referral flow needs.
type ReferralUserStore interface {
	FindByReferralCode(ctx context.Context, code string) (model.User, error)
	SetReferrer(ctx context.Context, userID, referrerID uint64) error
	AddPoints(ctx context.Context, userID uint64, points int64) error
}

// CouponIssuer mints the welcome coupon for referred users.
type CouponIssuer interface {
	CreateReferralCoupon(ctx context.Context, userID uint64, discountIDR int64, code string) (model.Coupon, error)
}

// ReferralService settles referral rewards at registration time: the
// referrer earns points and the new user gets a welcome coupon.
type ReferralService struct {
	users   ReferralUserStore
	coupons CouponIssuer
}

func NewReferralService(users ReferralUserStore, coupons CouponIssuer) *ReferralService {
	return &ReferralService{users: users, coupons: coupons}
}

// Apply resolves code to its owner, records the referral edge on the
// new user, credits the referrer and issues the welcome coupon.
// A code that resolves to the new user themselves is rejected.
func (s *ReferralService) Apply(ctx context.Context, newUserID uint64, code string) (model.Coupon, error) {
	referrer, err := s.users.FindByReferralCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Coupon{}, fmt.Errorf("%w: referral code %q", ErrNotFound, code)
	}
	if err != nil {
		return model.Coupon{}, fmt.Errorf("resolve referral code: %w", err)
	}
	if referrer.ID == newUserID {
		return model.Coupon{}, fmt.Errorf("%w: cannot refer yourself", ErrValidation)
	}

	if err := s.users.SetReferrer(ctx, newUserID, referrer.ID); err != nil {
		return model.Coupon{}, fmt.Errorf("record referrer: %w", err)
	}
	if err := s.users.AddPoints(ctx, referrer.ID, referralPointsReward); err != nil {
		return model.Coupon{}, fmt.Errorf("credit referrer points: %w", err)
	}

	coupon, err := s.coupons.CreateReferralCoupon(ctx, newUserID, referralCouponDiscountIDR, utils.NewShortCode())
	if err != nil {
		return model.Coupon{}, fmt.Errorf("issue welcome coupon: %w", err)
	}
	return coupon, nil
}
