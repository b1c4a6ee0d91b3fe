package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewReference returns an opaque reference for a transaction. Clients
// quote it in payment proofs and support requests.
func NewReference() string {
	return uuid.NewString()
}

// NewShortCode returns an 8-character uppercase code suitable for
// referral and coupon codes. It strips the hyphens from a UUID and
// keeps the first eight characters; uniqueness is ultimately enforced
// by the unique index on the column, and callers retry on collision.
func NewShortCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}
