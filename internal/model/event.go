package model

import "time"

// Event represents a row in the `events` table.  Quantity is the
// remaining purchasable ticket count; it is only ever mutated through
// the event repository's conditional increment/decrement statements so
// it can never go below zero.
//
// Fields:
//  ID          – primary key identifier.
//  OrganizerID – user (ORGANIZER role) who owns the event.
//  Title       – event title shown in listings.
//  Category    – free-form category label (e.g. MUSIC, WORKSHOP).
//  Location    – venue or city.
//  Description – longer description for the detail page.
//  Quantity    – remaining seats, always >= 0.
//  PriceIDR    – ticket price in Indonesian rupiah; ignored when IsFree.
//  IsFree      – true for free events; purchases always total 0.
//  StartsAt    – when the event begins; purchases close at this time.
//  EndsAt      – when the event ends.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Event struct {
	ID          uint64    `json:"id"`
	OrganizerID uint64    `json:"organizer_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Quantity    int64     `json:"quantity"`
	PriceIDR    int64     `json:"price_idr"`
	IsFree      bool      `json:"is_free"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasStarted reports whether ticket sales for the event are closed.
func (e Event) HasStarted(now time.Time) bool {
	return !now.Before(e.StartsAt)
}
