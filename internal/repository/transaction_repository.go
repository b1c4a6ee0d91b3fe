package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// TransactionRepo provides data access to the transactions table.
// Status changes go through UpdateStatus, a compare-and-set on the
// current status, so that two admins (or an admin racing a user's
// cancellation) cannot both move the same transaction.
type TransactionRepo struct{ db *sql.DB }

// NewTransactionRepo returns a new TransactionRepo bound to the given
// database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txColumns = `id, reference, user_id, event_id, coupon_id, status,
	points_used, total_idr, admin_notes, created_at, updated_at`

func scanTransaction(scan func(dest ...interface{}) error) (model.Transaction, error) {
	var t model.Transaction
	var couponID sql.NullInt64
	var notes sql.NullString
	err := scan(&t.ID, &t.Reference, &t.UserID, &t.EventID, &couponID,
		&t.Status, &t.PointsUsed, &t.TotalIDR, &notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Transaction{}, err
	}
	if couponID.Valid {
		cid := uint64(couponID.Int64)
		t.CouponID = &cid
	}
	if notes.Valid {
		n := notes.String
		t.AdminNotes = &n
	}
	return t, nil
}

// Create inserts a transaction and populates its generated ID.
func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (reference, user_id, event_id, coupon_id, status,
		 points_used, total_idr)
		 VALUES (?,?,?,?,?,?,?)`,
		t.Reference, t.UserID, t.EventID, t.CouponID, t.Status, t.PointsUsed, t.TotalIDR)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = "SELECT created_at, updated_at FROM transactions WHERE id=?"
	return r.db.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// UserSummary is the slice of user data embedded in a transaction
// detail response.
type UserSummary struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Points int64  `json:"points"`
}

// EventSummary is the slice of event data embedded in a transaction
// detail response.
type EventSummary struct {
	ID       uint64    `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Location string    `json:"location"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	PriceIDR int64     `json:"price_idr"`
	IsFree   bool      `json:"is_free"`
}

// CouponSummary is the slice of coupon data embedded in a transaction
// detail response.
type CouponSummary struct {
	ID          uint64 `json:"id"`
	Code        string `json:"code"`
	Type        string `json:"type"`
	DiscountIDR int64  `json:"discount_idr"`
}

// TransactionDetail joins a transaction with its buyer, event and
// optional coupon.
type TransactionDetail struct {
	model.Transaction
	User   UserSummary    `json:"user"`
	Event  EventSummary   `json:"event"`
	Coupon *CouponSummary `json:"coupon,omitempty"`
}

const detailQuery = `SELECT t.id, t.reference, t.user_id, t.event_id, t.coupon_id, t.status,
	       t.points_used, t.total_idr, t.admin_notes, t.created_at, t.updated_at,
	       u.id, u.name, u.email, u.points,
	       e.id, e.title, e.category, e.location, e.starts_at, e.ends_at, e.price_idr, e.is_free,
	       c.id, c.code, c.type, c.discount_idr
	FROM transactions t
	JOIN users u ON u.id = t.user_id
	JOIN events e ON e.id = t.event_id
	LEFT JOIN coupons c ON c.id = t.coupon_id`

func scanDetail(scan func(dest ...interface{}) error) (TransactionDetail, error) {
	var d TransactionDetail
	var couponID sql.NullInt64
	var notes sql.NullString
	var cID sql.NullInt64
	var cCode, cType sql.NullString
	var cDiscount sql.NullInt64
	err := scan(&d.ID, &d.Reference, &d.UserID, &d.EventID, &couponID, &d.Status,
		&d.PointsUsed, &d.TotalIDR, &notes, &d.CreatedAt, &d.UpdatedAt,
		&d.User.ID, &d.User.Name, &d.User.Email, &d.User.Points,
		&d.Event.ID, &d.Event.Title, &d.Event.Category, &d.Event.Location,
		&d.Event.StartsAt, &d.Event.EndsAt, &d.Event.PriceIDR, &d.Event.IsFree,
		&cID, &cCode, &cType, &cDiscount)
	if err != nil {
		return TransactionDetail{}, err
	}
	if couponID.Valid {
		cid := uint64(couponID.Int64)
		d.CouponID = &cid
	}
	if notes.Valid {
		n := notes.String
		d.AdminNotes = &n
	}
	if cID.Valid {
		d.Coupon = &CouponSummary{
			ID:          uint64(cID.Int64),
			Code:        cCode.String,
			Type:        cType.String,
			DiscountIDR: cDiscount.Int64,
		}
	}
	return d, nil
}

// GetByID fetches a transaction joined with its user, event and
// optional coupon. Returns ErrNotFound when absent.
func (r *TransactionRepo) GetByID(ctx context.Context, id uint64) (TransactionDetail, error) {
	d, err := scanDetail(r.db.QueryRowContext(ctx, detailQuery+" WHERE t.id=?", id).Scan)
	if err == sql.ErrNoRows {
		return TransactionDetail{}, ErrNotFound
	}
	return d, err
}

// TransactionFilter narrows List. Nil/zero fields mean "no filter".
type TransactionFilter struct {
	UserID      uint64
	EventID     uint64
	OrganizerID uint64
	Status      model.TransactionStatus
	DateFrom    *time.Time
	DateTo      *time.Time
	MinAmount   *int64
	MaxAmount   *int64
	Page        int
	Limit       int
}

// Pagination describes the page window of a List result.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// List returns transactions matching the filter, newest first, together
// with pagination info.
func (r *TransactionRepo) List(ctx context.Context, f TransactionFilter) ([]TransactionDetail, Pagination, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if f.UserID != 0 {
		where = append(where, "t.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.EventID != 0 {
		where = append(where, "t.event_id = ?")
		args = append(args, f.EventID)
	}
	if f.OrganizerID != 0 {
		where = append(where, "e.organizer_id = ?")
		args = append(args, f.OrganizerID)
	}
	if f.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, f.Status)
	}
	if f.DateFrom != nil {
		where = append(where, "t.created_at >= ?")
		args = append(args, f.DateFrom.UTC())
	}
	if f.DateTo != nil {
		where = append(where, "t.created_at <= ?")
		args = append(args, f.DateTo.UTC())
	}
	if f.MinAmount != nil {
		where = append(where, "t.total_idr >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		where = append(where, "t.total_idr <= ?")
		args = append(args, *f.MaxAmount)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQ := `SELECT COUNT(*) FROM transactions t JOIN events e ON e.id = t.event_id WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, Pagination{}, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	args = append(args, limit, (page-1)*limit)
	rows, err := r.db.QueryContext(ctx,
		detailQuery+" WHERE "+cond+" ORDER BY t.created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, Pagination{}, err
	}
	defer rows.Close()
	details := make([]TransactionDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, Pagination{}, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, Pagination{}, err
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return details, Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(page) < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// UpdateStatus moves a transaction from one status to another with an
// optional admin note. The WHERE clause pins the expected source
// status; when another request moved the row first, ErrStaleStatus is
// returned and no write happens.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.TransactionStatus, adminNotes *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET status=?, admin_notes=COALESCE(?, admin_notes)
		 WHERE id=? AND status=?`,
		to, adminNotes, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM transactions WHERE id=?", id).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return ErrStaleStatus
	}
	return nil
}

// StatusCount aggregates transactions by status.
type StatusCount struct {
	Status   model.TransactionStatus `json:"status"`
	Count    int64                   `json:"count"`
	TotalIDR int64                   `json:"total_idr"`
}

// Stats returns per-status counts and sums, optionally narrowed to a
// user and/or event.
func (r *TransactionRepo) Stats(ctx context.Context, userID, eventID uint64) ([]StatusCount, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if userID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, userID)
	}
	if eventID != 0 {
		where = append(where, "event_id = ?")
		args = append(args, eventID)
	}
	q := `SELECT status, COUNT(*), COALESCE(SUM(total_idr),0)
	      FROM transactions WHERE ` + strings.Join(where, " AND ") + ` GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stats := make([]StatusCount, 0)
	for rows.Next() {
		var s StatusCount
		if err := rows.Scan(&s.Status, &s.Count, &s.TotalIDR); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListExpiring returns the oldest transactions still waiting for
// payment; these are the next candidates for expiry.
func (r *TransactionRepo) ListExpiring(ctx context.Context, limit int) ([]TransactionDetail, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		detailQuery+" WHERE t.status=? ORDER BY t.created_at ASC LIMIT ?",
		model.StatusWaitingForPayment, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]TransactionDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// HasDoneTransaction reports whether the user holds a completed
// purchase for the event. Used to gate review creation.
func (r *TransactionRepo) HasDoneTransaction(ctx context.Context, userID, eventID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM transactions WHERE user_id=? AND event_id=? AND status=? LIMIT 1",
		userID, eventID, model.StatusDone).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
