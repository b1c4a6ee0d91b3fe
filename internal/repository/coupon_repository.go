package repository

import (
	"context"
	"database/sql"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// CouponRepo provides data access to the coupons table. Every mutation
// of the shared counters (quantity, used) and of the status is a single
// conditional UPDATE; concurrent redemptions of the same coupon race on
// the database row, not on application state, so a quota of N can never
// be consumed more than N times.
type CouponRepo struct{ db *sql.DB }

// NewCouponRepo returns a new CouponRepo bound to the given database.
func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

const couponColumns = `id, code, type, discount_idr, status, quantity, used,
	organizer_id, user_id, expires_at, used_at, created_at`

func scanCoupon(scan func(dest ...interface{}) error) (model.Coupon, error) {
	var c model.Coupon
	var quantity, used sql.NullInt64
	var organizerID, userID sql.NullInt64
	var expiresAt, usedAt sql.NullTime
	err := scan(&c.ID, &c.Code, &c.Type, &c.DiscountIDR, &c.Status,
		&quantity, &used, &organizerID, &userID, &expiresAt, &usedAt, &c.CreatedAt)
	if err != nil {
		return model.Coupon{}, err
	}
	if quantity.Valid {
		q := quantity.Int64
		c.Quantity = &q
	}
	if used.Valid {
		u := used.Int64
		c.Used = &u
	}
	if organizerID.Valid {
		o := uint64(organizerID.Int64)
		c.OrganizerID = &o
	}
	if userID.Valid {
		u := uint64(userID.Int64)
		c.UserID = &u
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	if usedAt.Valid {
		t := usedAt.Time
		c.UsedAt = &t
	}
	return c, nil
}

// Create inserts a coupon and populates its generated ID. Duplicate
// codes map to ErrCodeExists.
func (r *CouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO coupons (code, type, discount_idr, status, quantity, used,
		 organizer_id, user_id, expires_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		c.Code, c.Type, c.DiscountIDR, c.Status, c.Quantity, c.Used,
		c.OrganizerID, c.UserID, c.ExpiresAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrCodeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// FindByCode fetches a coupon by its unique code.
func (r *CouponRepo) FindByCode(ctx context.Context, code string) (model.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE code=? LIMIT 1", code).Scan)
	if err == sql.ErrNoRows {
		return model.Coupon{}, ErrNotFound
	}
	return c, err
}

// FindByID fetches a coupon by id.
func (r *CouponRepo) FindByID(ctx context.Context, id uint64) (model.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRowContext(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return model.Coupon{}, ErrNotFound
	}
	return c, err
}

// RedeemOrganizer atomically takes one redemption off an ORGANIZER
// coupon's quota. When the decrement empties the quota the status flips
// to exhaustedStatus (USED or EXPIRED depending on the engine's
// policy). Zero affected rows mean the coupon was absent, not
// AVAILABLE, or already depleted; the follow-up read distinguishes the
// cases.
func (r *CouponRepo) RedeemOrganizer(ctx context.Context, id uint64, exhaustedStatus string) (model.Coupon, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons
		 SET quantity = quantity - 1,
		     status = IF(quantity = 0, ?, status)
		 WHERE id=? AND type=? AND status=? AND quantity > 0`,
		exhaustedStatus, id, model.CouponTypeOrganizer, model.CouponStatusAvailable)
	if err != nil {
		return model.Coupon{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Coupon{}, err
	}
	if n == 0 {
		c, err := r.FindByID(ctx, id)
		if err != nil {
			return model.Coupon{}, err
		}
		if c.Status != model.CouponStatusAvailable {
			return model.Coupon{}, ErrCouponUnavailable
		}
		return model.Coupon{}, ErrCouponExhausted
	}
	return r.FindByID(ctx, id)
}

// MarkReferralUsed consumes a single-use REFERRAL coupon. The status
// condition makes a second redemption a no-op reported as
// ErrCouponUnavailable.
func (r *CouponRepo) MarkReferralUsed(ctx context.Context, id uint64) (model.Coupon, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET status=?, used_at=UTC_TIMESTAMP()
		 WHERE id=? AND type=? AND status=?`,
		model.CouponStatusUsed, id, model.CouponTypeReferral, model.CouponStatusAvailable)
	if err != nil {
		return model.Coupon{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Coupon{}, err
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return model.Coupon{}, err
		}
		return model.Coupon{}, ErrCouponUnavailable
	}
	return r.FindByID(ctx, id)
}

// IncrementUsage records that an ORGANIZER coupon was applied to a
// transaction. The used counter may never pass the quota; reaching it
// flips the status to USED in the same statement.
func (r *CouponRepo) IncrementUsage(ctx context.Context, id uint64) (model.Coupon, error) {
	// MySQL applies SET clauses left to right, so the IF sees the
	// already-incremented used value. Same trick in RedeemOrganizer.
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons
		 SET used = COALESCE(used,0) + 1,
		     status = IF(used >= quantity, ?, status)
		 WHERE id=? AND type=? AND quantity IS NOT NULL AND COALESCE(used,0) < quantity`,
		model.CouponStatusUsed, id, model.CouponTypeOrganizer)
	if err != nil {
		return model.Coupon{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Coupon{}, err
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return model.Coupon{}, err
		}
		return model.Coupon{}, ErrCouponExhausted
	}
	return r.FindByID(ctx, id)
}

// RollbackOrganizerUsage undoes one recorded usage after a canceled or
// rejected transaction, restoring AVAILABLE. Returns
// ErrNothingToRollback when no usage was recorded.
func (r *CouponRepo) RollbackOrganizerUsage(ctx context.Context, id uint64) (model.Coupon, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET used = used - 1, status=?
		 WHERE id=? AND type=? AND used > 0`,
		model.CouponStatusAvailable, id, model.CouponTypeOrganizer)
	if err != nil {
		return model.Coupon{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Coupon{}, err
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return model.Coupon{}, err
		}
		return model.Coupon{}, ErrNothingToRollback
	}
	return r.FindByID(ctx, id)
}

// ResetReferral returns a consumed REFERRAL coupon to AVAILABLE.
func (r *CouponRepo) ResetReferral(ctx context.Context, id uint64) (model.Coupon, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET status=?, used_at=NULL
		 WHERE id=? AND type=? AND status=?`,
		model.CouponStatusAvailable, id, model.CouponTypeReferral, model.CouponStatusUsed)
	if err != nil {
		return model.Coupon{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Coupon{}, err
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return model.Coupon{}, err
		}
		return model.Coupon{}, ErrNothingToRollback
	}
	return r.FindByID(ctx, id)
}

// OrganizerCoupon pairs a coupon with the number of transactions that
// applied it, for the organizer's coupon listing.
type OrganizerCoupon struct {
	model.Coupon
	TransactionCount int64 `json:"transaction_count"`
}

// ListByOrganizer returns all coupons created by an organizer together
// with a per-coupon count of transactions that applied them.
func (r *CouponRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]OrganizerCoupon, error) {
	const q = `SELECT c.id, c.code, c.type, c.discount_idr, c.status, c.quantity, c.used,
	                  c.organizer_id, c.user_id, c.expires_at, c.used_at, c.created_at,
	                  COUNT(t.id)
	           FROM coupons c
	           LEFT JOIN transactions t ON t.coupon_id = c.id
	           WHERE c.organizer_id = ?
	           GROUP BY c.id
	           ORDER BY c.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	coupons := make([]OrganizerCoupon, 0)
	for rows.Next() {
		var oc OrganizerCoupon
		var quantity, used, orgID, userID sql.NullInt64
		var expiresAt, usedAt sql.NullTime
		if err := rows.Scan(&oc.ID, &oc.Code, &oc.Type, &oc.DiscountIDR, &oc.Status,
			&quantity, &used, &orgID, &userID, &expiresAt, &usedAt, &oc.CreatedAt,
			&oc.TransactionCount); err != nil {
			return nil, err
		}
		if quantity.Valid {
			q := quantity.Int64
			oc.Quantity = &q
		}
		if used.Valid {
			u := used.Int64
			oc.Used = &u
		}
		if orgID.Valid {
			o := uint64(orgID.Int64)
			oc.OrganizerID = &o
		}
		if userID.Valid {
			u := uint64(userID.Int64)
			oc.UserID = &u
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			oc.ExpiresAt = &t
		}
		if usedAt.Valid {
			t := usedAt.Time
			oc.UsedAt = &t
		}
		coupons = append(coupons, oc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coupons, nil
}

// ListByUser returns the coupons owned by a user (referral coupons).
func (r *CouponRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Coupon, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	coupons := make([]model.Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows.Scan)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coupons, nil
}
