package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCouponIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, Coupon{ExpiresAt: &past}.IsExpired(now))
	assert.False(t, Coupon{ExpiresAt: &future}.IsExpired(now))
	// no expiry set means the coupon never expires
	assert.False(t, Coupon{}.IsExpired(now))
	// not strictly after: a coupon expiring exactly now is still good
	assert.False(t, Coupon{ExpiresAt: &now}.IsExpired(now))
}

func TestCouponUsedCount(t *testing.T) {
	used := int64(3)
	assert.Equal(t, int64(3), Coupon{Used: &used}.UsedCount())
	assert.Equal(t, int64(0), Coupon{}.UsedCount())
}

func TestExhaustionPolicyValues(t *testing.T) {
	assert.Equal(t, CouponStatusUsed, string(ExhaustToUsed))
	assert.Equal(t, CouponStatusExpired, string(ExhaustToExpired))
}

func TestEventHasStarted(t *testing.T) {
	start := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)
	ev := Event{StartsAt: start}

	assert.False(t, ev.HasStarted(start.Add(-time.Minute)))
	assert.True(t, ev.HasStarted(start))
	assert.True(t, ev.HasStarted(start.Add(time.Minute)))
}
