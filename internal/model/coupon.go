package model

import "time"

// Coupon types.  ORGANIZER coupons carry a redemption quota and belong
// to an organizer; REFERRAL coupons are single-use and belong to the
// user who received them at signup.
const (
	CouponTypeOrganizer = "ORGANIZER"
	CouponTypeReferral  = "REFERRAL"
)

// Coupon statuses.  A coupon starts AVAILABLE, becomes USED once
// consumed (or once an organizer quota is exhausted, depending on the
// configured ExhaustionPolicy) and EXPIRED when its expiry passes or
// the policy says so.  Expiry is checked lazily at redemption time;
// there is no background sweep.
const (
	CouponStatusAvailable = "AVAILABLE"
	CouponStatusUsed      = "USED"
	CouponStatusExpired   = "EXPIRED"
)

// ExhaustionPolicy selects the status an ORGANIZER coupon is moved to
// when its quota reaches zero.  The two policies exist because both
// behaviours are wanted by different deployments; pick one when
// constructing the coupon service.
type ExhaustionPolicy string

const (
	// ExhaustToUsed marks a depleted coupon USED.
	ExhaustToUsed ExhaustionPolicy = CouponStatusUsed
	// ExhaustToExpired marks a depleted coupon EXPIRED.
	ExhaustToExpired ExhaustionPolicy = CouponStatusExpired
)

// Coupon represents a row in the `coupons` table.  Exactly one of
// OrganizerID/UserID is set, matching the Type.  Quantity and Used are
// only meaningful for ORGANIZER coupons; both are nil on REFERRAL
// coupons.
//
// Fields:
//  ID          – primary key identifier.
//  Code        – unique redemption code.
//  Type        – ORGANIZER or REFERRAL.
//  DiscountIDR – flat discount applied to a transaction total.
//  Status      – AVAILABLE, USED or EXPIRED.
//  Quantity    – remaining redemptions for ORGANIZER coupons.
//  Used        – usage counter incremented when applied to a transaction.
//  OrganizerID – owning organizer for ORGANIZER coupons.
//  UserID      – owning user for REFERRAL coupons.
//  ExpiresAt   – optional expiry; nil means the coupon never expires.
//  UsedAt      – when a REFERRAL coupon was consumed.
//  CreatedAt   – timestamp of creation.
type Coupon struct {
	ID          uint64     `json:"id"`
	Code        string     `json:"code"`
	Type        string     `json:"type"`
	DiscountIDR int64      `json:"discount_idr"`
	Status      string     `json:"status"`
	Quantity    *int64     `json:"quantity,omitempty"`
	Used        *int64     `json:"used,omitempty"`
	OrganizerID *uint64    `json:"organizer_id,omitempty"`
	UserID      *uint64    `json:"user_id,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsExpired reports whether the coupon's expiry has passed.  Coupons
// without an expiry never expire.
func (c Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// UsedCount returns the usage counter, treating nil as zero.
func (c Coupon) UsedCount() int64 {
	if c.Used == nil {
		return 0
	}
	return *c.Used
}
