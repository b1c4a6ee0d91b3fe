package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
)

// fakeCouponStore lets each test plug in just the calls it expects.
type fakeCouponStore struct {
	create          func(ctx context.Context, c *model.Coupon) error
	findByCode      func(ctx context.Context, code string) (model.Coupon, error)
	findByID        func(ctx context.Context, id uint64) (model.Coupon, error)
	redeemOrganizer func(ctx context.Context, id uint64, exhaustedStatus string) (model.Coupon, error)
	markReferral    func(ctx context.Context, id uint64) (model.Coupon, error)
	incrementUsage  func(ctx context.Context, id uint64) (model.Coupon, error)
	rollbackUsage   func(ctx context.Context, id uint64) (model.Coupon, error)
	resetReferral   func(ctx context.Context, id uint64) (model.Coupon, error)
}

func (f *fakeCouponStore) Create(ctx context.Context, c *model.Coupon) error {
	return f.create(ctx, c)
}
func (f *fakeCouponStore) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	return f.findByCode(ctx, code)
}
func (f *fakeCouponStore) FindByID(ctx context.Context, id uint64) (model.Coupon, error) {
	return f.findByID(ctx, id)
}
func (f *fakeCouponStore) RedeemOrganizer(ctx context.Context, id uint64, exhaustedStatus string) (model.Coupon, error) {
	return f.redeemOrganizer(ctx, id, exhaustedStatus)
}
func (f *fakeCouponStore) MarkReferralUsed(ctx context.Context, id uint64) (model.Coupon, error) {
	return f.markReferral(ctx, id)
}
func (f *fakeCouponStore) IncrementUsage(ctx context.Context, id uint64) (model.Coupon, error) {
	return f.incrementUsage(ctx, id)
}
func (f *fakeCouponStore) RollbackOrganizerUsage(ctx context.Context, id uint64) (model.Coupon, error) {
	return f.rollbackUsage(ctx, id)
}
func (f *fakeCouponStore) ResetReferral(ctx context.Context, id uint64) (model.Coupon, error) {
	return f.resetReferral(ctx, id)
}

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestCouponService(store CouponStore, policy model.ExhaustionPolicy) *CouponService {
	svc := NewCouponService(store, policy)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCreateOrganizerCouponValidation(t *testing.T) {
	svc := newTestCouponService(&fakeCouponStore{}, "")
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateCouponInput
		org  uint64
	}{
		{"missing organizer", CreateCouponInput{Code: "SALE", DiscountIDR: 1000, Quantity: 5}, 0},
		{"missing code", CreateCouponInput{DiscountIDR: 1000, Quantity: 5}, 1},
		{"zero discount", CreateCouponInput{Code: "SALE", Quantity: 5}, 1},
		{"negative discount", CreateCouponInput{Code: "SALE", DiscountIDR: -5, Quantity: 5}, 1},
		{"zero quantity", CreateCouponInput{Code: "SALE", DiscountIDR: 1000}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrganizerCoupon(ctx, tc.in, tc.org)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateOrganizerCoupon(t *testing.T) {
	var stored model.Coupon
	store := &fakeCouponStore{
		create: func(_ context.Context, c *model.Coupon) error {
			c.ID = 7
			stored = *c
			return nil
		},
	}
	svc := newTestCouponService(store, "")

	got, err := svc.CreateOrganizerCoupon(context.Background(), CreateCouponInput{
		Code:        "  promo10  ",
		DiscountIDR: 10000,
		Quantity:    25,
	}, 42)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, "PROMO10", stored.Code)
	assert.Equal(t, model.CouponTypeOrganizer, stored.Type)
	assert.Equal(t, model.CouponStatusAvailable, stored.Status)
	require.NotNil(t, stored.Quantity)
	assert.Equal(t, int64(25), *stored.Quantity)
	require.NotNil(t, stored.Used)
	assert.Equal(t, int64(0), *stored.Used)
	require.NotNil(t, stored.OrganizerID)
	assert.Equal(t, uint64(42), *stored.OrganizerID)
}

func TestCreateOrganizerCouponDuplicateCode(t *testing.T) {
	store := &fakeCouponStore{
		create: func(_ context.Context, _ *model.Coupon) error { return repository.ErrCodeExists },
	}
	svc := newTestCouponService(store, "")

	_, err := svc.CreateOrganizerCoupon(context.Background(), CreateCouponInput{
		Code: "SALE", DiscountIDR: 1000, Quantity: 5,
	}, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateReferralCouponExpiry(t *testing.T) {
	var stored model.Coupon
	store := &fakeCouponStore{
		create: func(_ context.Context, c *model.Coupon) error {
			stored = *c
			return nil
		},
	}
	svc := newTestCouponService(store, "")

	_, err := svc.CreateReferralCoupon(context.Background(), 9, 15000, "ab12cd34")
	require.NoError(t, err)

	assert.Equal(t, "AB12CD34", stored.Code)
	assert.Equal(t, model.CouponTypeReferral, stored.Type)
	assert.Equal(t, int64(15000), stored.DiscountIDR)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, uint64(9), *stored.UserID)
	require.NotNil(t, stored.ExpiresAt)
	assert.Equal(t, testNow.Add(3*30*24*time.Hour), *stored.ExpiresAt)
}

func TestRedeemUnknownCode(t *testing.T) {
	store := &fakeCouponStore{
		findByCode: func(_ context.Context, _ string) (model.Coupon, error) {
			return model.Coupon{}, repository.ErrNotFound
		},
	}
	svc := newTestCouponService(store, "")

	_, err := svc.Redeem(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeemExpiredCoupon(t *testing.T) {
	expired := testNow.Add(-time.Hour)
	store := &fakeCouponStore{
		findByCode: func(_ context.Context, _ string) (model.Coupon, error) {
			return model.Coupon{
				ID: 1, Code: "OLD", Type: model.CouponTypeOrganizer,
				Status: model.CouponStatusAvailable, ExpiresAt: &expired,
			}, nil
		},
	}
	svc := newTestCouponService(store, "")

	_, err := svc.Redeem(context.Background(), "OLD")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestRedeemOrganizerPassesPolicy(t *testing.T) {
	qty := int64(1)
	var gotStatus string
	store := &fakeCouponStore{
		findByCode: func(_ context.Context, code string) (model.Coupon, error) {
			assert.Equal(t, "SALE", code)
			return model.Coupon{
				ID: 3, Code: "SALE", Type: model.CouponTypeOrganizer,
				Status: model.CouponStatusAvailable, Quantity: &qty,
			}, nil
		},
		redeemOrganizer: func(_ context.Context, id uint64, exhaustedStatus string) (model.Coupon, error) {
			assert.Equal(t, uint64(3), id)
			gotStatus = exhaustedStatus
			return model.Coupon{ID: 3, Code: "SALE", Status: exhaustedStatus}, nil
		},
	}
	svc := newTestCouponService(store, model.ExhaustToExpired)

	got, err := svc.Redeem(context.Background(), "sale")
	require.NoError(t, err)
	assert.Equal(t, model.CouponStatusExpired, gotStatus)
	assert.Equal(t, model.CouponStatusExpired, got.Status)
}

func TestRedeemOrganizerExhausted(t *testing.T) {
	qty := int64(0)
	store := &fakeCouponStore{
		findByCode: func(_ context.Context, _ string) (model.Coupon, error) {
			return model.Coupon{
				ID: 3, Code: "SALE", Type: model.CouponTypeOrganizer,
				Status: model.CouponStatusAvailable, Quantity: &qty,
			}, nil
		},
		redeemOrganizer: func(_ context.Context, _ uint64, _ string) (model.Coupon, error) {
			return model.Coupon{}, repository.ErrCouponExhausted
		},
	}
	svc := newTestCouponService(store, "")

	_, err := svc.Redeem(context.Background(), "SALE")
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestRedeemReferralAlreadyUsed(t *testing.T) {
	store := &fakeCouponStore{
		findByCode: func(_ context.Context, _ string) (model.Coupon, error) {
			return model.Coupon{
				ID: 5, Code: "WELCOME", Type: model.CouponTypeReferral,
				Status: model.CouponStatusUsed,
			}, nil
		},
	}
	svc := newTestCouponService(store, "")

	_, err := svc.Redeem(context.Background(), "WELCOME")
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestRedeemReferralLosesRace(t *testing.T) {
	// The status read AVAILABLE but another request consumed the coupon
	// before our conditional update ran.
	store := &fakeCouponStore{
		findByCode: func(_ context.Context, _ string) (model.Coupon, error) {
			return model.Coupon{
				ID: 5, Code: "WELCOME", Type: model.CouponTypeReferral,
				Status: model.CouponStatusAvailable,
			}, nil
		},
		markReferral: func(_ context.Context, _ uint64) (model.Coupon, error) {
			return model.Coupon{}, repository.ErrCouponUnavailable
		},
	}
	svc := newTestCouponService(store, "")

	_, err := svc.Redeem(context.Background(), "WELCOME")
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestUseCouponOrganizerExhausted(t *testing.T) {
	qty := int64(2)
	used := int64(2)
	store := &fakeCouponStore{
		findByID: func(_ context.Context, _ uint64) (model.Coupon, error) {
			return model.Coupon{
				ID: 3, Code: "SALE", Type: model.CouponTypeOrganizer,
				Status: model.CouponStatusAvailable, Quantity: &qty, Used: &used,
			}, nil
		},
		incrementUsage: func(_ context.Context, _ uint64) (model.Coupon, error) {
			return model.Coupon{}, repository.ErrCouponExhausted
		},
	}
	svc := newTestCouponService(store, "")

	_, err := svc.UseCoupon(context.Background(), 3)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestUseCouponReferralUsed(t *testing.T) {
	store := &fakeCouponStore{
		findByID: func(_ context.Context, _ uint64) (model.Coupon, error) {
			return model.Coupon{
				ID: 5, Code: "WELCOME", Type: model.CouponTypeReferral,
				Status: model.CouponStatusUsed,
			}, nil
		},
	}
	svc := newTestCouponService(store, "")

	_, err := svc.UseCoupon(context.Background(), 5)
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestRollbackUsageNothingRecorded(t *testing.T) {
	store := &fakeCouponStore{
		findByID: func(_ context.Context, _ uint64) (model.Coupon, error) {
			return model.Coupon{ID: 3, Code: "SALE", Type: model.CouponTypeOrganizer}, nil
		},
		rollbackUsage: func(_ context.Context, _ uint64) (model.Coupon, error) {
			return model.Coupon{}, repository.ErrNothingToRollback
		},
	}
	svc := newTestCouponService(store, "")

	_, err := svc.RollbackUsage(context.Background(), 3)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRollbackUsageReferral(t *testing.T) {
	var resetID uint64
	store := &fakeCouponStore{
		findByID: func(_ context.Context, _ uint64) (model.Coupon, error) {
			return model.Coupon{
				ID: 5, Code: "WELCOME", Type: model.CouponTypeReferral,
				Status: model.CouponStatusUsed,
			}, nil
		},
		resetReferral: func(_ context.Context, id uint64) (model.Coupon, error) {
			resetID = id
			return model.Coupon{ID: id, Status: model.CouponStatusAvailable}, nil
		},
	}
	svc := newTestCouponService(store, "")

	got, err := svc.RollbackUsage(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), resetID)
	assert.Equal(t, model.CouponStatusAvailable, got.Status)
}
