package repository

import (
	"context"
	"database/sql"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// DashboardRepo computes read-only aggregates for the organizer
// dashboard. It never mutates state.
type DashboardRepo struct{ db *sql.DB }

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{db: db} }

// OrganizerStats summarizes an organizer's activity.
type OrganizerStats struct {
	TotalEvents       int64         `json:"total_events"`
	TicketsSold       int64         `json:"tickets_sold"`
	GrossRevenueIDR   int64         `json:"gross_revenue_idr"`
	ActiveCoupons     int64         `json:"active_coupons"`
	TransactionCounts []StatusCount `json:"transaction_counts"`
}

// StatsForOrganizer aggregates events, confirmed ticket sales, revenue
// from DONE transactions and per-status transaction counts for one
// organizer.
func (r *DashboardRepo) StatsForOrganizer(ctx context.Context, organizerID uint64) (OrganizerStats, error) {
	var s OrganizerStats
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE organizer_id=?", organizerID).Scan(&s.TotalEvents); err != nil {
		return OrganizerStats{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(t.total_idr),0)
		 FROM transactions t
		 JOIN events e ON e.id = t.event_id
		 WHERE e.organizer_id=? AND t.status=?`,
		organizerID, model.StatusDone).Scan(&s.TicketsSold, &s.GrossRevenueIDR); err != nil {
		return OrganizerStats{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM coupons WHERE organizer_id=? AND status=?",
		organizerID, model.CouponStatusAvailable).Scan(&s.ActiveCoupons); err != nil {
		return OrganizerStats{}, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.status, COUNT(*), COALESCE(SUM(t.total_idr),0)
		 FROM transactions t
		 JOIN events e ON e.id = t.event_id
		 WHERE e.organizer_id=?
		 GROUP BY t.status`, organizerID)
	if err != nil {
		return OrganizerStats{}, err
	}
	defer rows.Close()
	s.TransactionCounts = make([]StatusCount, 0)
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count, &sc.TotalIDR); err != nil {
			return OrganizerStats{}, err
		}
		s.TransactionCounts = append(s.TransactionCounts, sc)
	}
	if err := rows.Err(); err != nil {
		return OrganizerStats{}, err
	}
	return s, nil
}
