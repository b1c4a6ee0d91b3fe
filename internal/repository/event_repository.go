package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// EventRepo provides data access to the events table. The seat counter
// (events.quantity) is only mutated through DecrementQuantity and
// IncrementQuantity so that the invariant quantity >= 0 is enforced by
// the database, not by application-level read-then-write sequences.
type EventRepo struct{ db *sql.DB }

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle for callers that need to open a
// transaction spanning several repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, organizer_id, title, category, location, description,
	quantity, price_idr, is_free, starts_at, ends_at, created_at, updated_at`

func scanEvent(scan func(dest ...interface{}) error) (model.Event, error) {
	var e model.Event
	err := scan(&e.ID, &e.OrganizerID, &e.Title, &e.Category, &e.Location,
		&e.Description, &e.Quantity, &e.PriceIDR, &e.IsFree, &e.StartsAt,
		&e.EndsAt, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Create inserts an event and returns the generated ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (organizer_id, title, category, location, description,
		 quantity, price_idr, is_free, starts_at, ends_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		e.OrganizerID, e.Title, e.Category, e.Location, e.Description,
		e.Quantity, e.PriceIDR, e.IsFree, e.StartsAt.UTC(), e.EndsAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// Update rewrites the descriptive fields of an event owned by the given
// organizer. Quantity is deliberately not part of this statement; seat
// counts change only through the conditional increment/decrement below.
func (r *EventRepo) Update(ctx context.Context, e *model.Event, organizerID uint64) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT organizer_id FROM events WHERE id=?", e.ID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != organizerID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE events SET title=?, category=?, location=?, description=?,
		 price_idr=?, is_free=?, starts_at=?, ends_at=? WHERE id=?`,
		e.Title, e.Category, e.Location, e.Description,
		e.PriceIDR, e.IsFree, e.StartsAt.UTC(), e.EndsAt.UTC(), e.ID)
	return err
}

// GetByID fetches a single event. Returns ErrNotFound when absent.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id=?", id).Scan)
	if err == sql.ErrNoRows {
		return model.Event{}, ErrNotFound
	}
	return e, err
}

// EventFilter narrows the public listing. Zero values mean "no filter".
type EventFilter struct {
	Category string
	Location string
	Search   string
	Page     int
	Limit    int
}

// List returns events matching the filter ordered by start time, newest
// listings first, plus the total match count for pagination.
func (r *EventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Location != "" {
		where = append(where, "location = ?")
		args = append(args, f.Location)
	}
	if f.Search != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
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
		"SELECT "+eventColumns+" FROM events WHERE "+cond+" ORDER BY starts_at DESC LIMIT ? OFFSET ?",
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListByOrganizer returns all events owned by an organizer.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE organizer_id=? ORDER BY starts_at DESC",
		organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// DecrementQuantity consumes one seat. The WHERE clause guarantees the
// counter never drops below zero even under concurrent purchases; when
// no row matches, the event is either absent (ErrNotFound) or sold out
// (ErrSoldOut).
func (r *EventRepo) DecrementQuantity(ctx context.Context, eventID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE events SET quantity = quantity - 1 WHERE id=? AND quantity > 0",
		eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	if err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM events WHERE id=?", eventID).Scan(&exists); err == sql.ErrNoRows {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return ErrSoldOut
}

// IncrementQuantity restores one seat after a rejection or
// cancellation.
func (r *EventRepo) IncrementQuantity(ctx context.Context, eventID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE events SET quantity = quantity + 1 WHERE id=?", eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
