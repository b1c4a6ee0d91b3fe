package repository

import (
	"context"
	"database/sql"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// ReviewRepo provides data access to the reviews table.
type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review and populates its generated ID. A user may
// review an event only once; duplicates map to ErrConflict.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (user_id, event_id, rating, comment) VALUES (?,?,?,?)",
		rv.UserID, rv.EventID, rv.Rating, rv.Comment)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// ReviewDetail joins a review with its author's display name.
type ReviewDetail struct {
	model.Review
	UserName string `json:"user_name"`
}

// ListByEvent returns reviews for an event, newest first.
func (r *ReviewRepo) ListByEvent(ctx context.Context, eventID uint64) ([]ReviewDetail, error) {
	const q = `SELECT r.id, r.user_id, r.event_id, r.rating, r.comment, r.created_at, u.name
	           FROM reviews r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.event_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := make([]ReviewDetail, 0)
	for rows.Next() {
		var d ReviewDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.EventID, &d.Rating, &d.Comment,
			&d.CreatedAt, &d.UserName); err != nil {
			return nil, err
		}
		reviews = append(reviews, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Delete removes a review owned by the given user. Returns ErrNotFound
// when the review does not exist and ErrForbidden when it belongs to
// someone else.
func (r *ReviewRepo) Delete(ctx context.Context, reviewID, userID uint64) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id FROM reviews WHERE id=?", reviewID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", reviewID)
	return err
}
