package model

import "time"

// Role names stored in users.role.  CUSTOMER buys tickets, ORGANIZER
// creates events and organizer coupons, ADMIN confirms or rejects
// payments.
const (
	RoleCustomer  = "CUSTOMER"
	RoleOrganizer = "ORGANIZER"
	RoleAdmin     = "ADMIN"
)

// User represents a row in the `users` table.  Points accumulate from
// referrals and can be burned against a ticket purchase.  ReferralCode
// is the short unique code other people enter at signup to credit this
// user.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of CUSTOMER, ORGANIZER, ADMIN.
//  Points       – spendable point balance, never negative.
//  ReferralCode – unique code handed out to invite other users.
//  ReferredBy   – user ID of the referrer (nil for organic signup).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Points       int64
	ReferralCode string
	ReferredBy   *uint64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
