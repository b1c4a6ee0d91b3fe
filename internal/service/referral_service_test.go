package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
)

type fakeReferralUsers struct {
	referrer    model.User
	findErr     error
	referrerSet struct {
		userID, referrerID uint64
	}
	pointsUser  uint64
	pointsDelta int64
}

func (f *fakeReferralUsers) FindByReferralCode(_ context.Context, _ string) (model.User, error) {
	return f.referrer, f.findErr
}

func (f *fakeReferralUsers) SetReferrer(_ context.Context, userID, referrerID uint64) error {
	f.referrerSet.userID = userID
	f.referrerSet.referrerID = referrerID
	return nil
}

func (f *fakeReferralUsers) AddPoints(_ context.Context, userID uint64, points int64) error {
	f.pointsUser = userID
	f.pointsDelta = points
	return nil
}

type fakeCouponIssuer struct {
	issued struct {
		userID   uint64
		discount int64
		code     string
	}
	err error
}

func (f *fakeCouponIssuer) CreateReferralCoupon(_ context.Context, userID uint64, discountIDR int64, code string) (model.Coupon, error) {
	if f.err != nil {
		return model.Coupon{}, f.err
	}
	f.issued.userID = userID
	f.issued.discount = discountIDR
	f.issued.code = code
	return model.Coupon{ID: 9, Code: code, Type: model.CouponTypeReferral, DiscountIDR: discountIDR}, nil
}

func TestReferralApply(t *testing.T) {
	users := &fakeReferralUsers{referrer: model.User{ID: 3, ReferralCode: "ABCD1234"}}
	issuer := &fakeCouponIssuer{}
	svc := NewReferralService(users, issuer)

	coupon, err := svc.Apply(context.Background(), 7, "ABCD1234")
	require.NoError(t, err)

	assert.Equal(t, uint64(7), users.referrerSet.userID)
	assert.Equal(t, uint64(3), users.referrerSet.referrerID)
	assert.Equal(t, uint64(3), users.pointsUser)
	assert.Equal(t, int64(10000), users.pointsDelta)

	assert.Equal(t, uint64(7), issuer.issued.userID)
	assert.Equal(t, int64(15000), issuer.issued.discount)
	assert.Len(t, issuer.issued.code, 8)
	assert.Equal(t, int64(15000), coupon.DiscountIDR)
}

func TestReferralApplyUnknownCode(t *testing.T) {
	users := &fakeReferralUsers{findErr: repository.ErrNotFound}
	svc := NewReferralService(users, &fakeCouponIssuer{})

	_, err := svc.Apply(context.Background(), 7, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReferralApplySelfReferral(t *testing.T) {
	users := &fakeReferralUsers{referrer: model.User{ID: 7}}
	svc := NewReferralService(users, &fakeCouponIssuer{})

	_, err := svc.Apply(context.Background(), 7, "MYOWNCODE")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, users.pointsDelta, "no points credited on rejected referral")
}
