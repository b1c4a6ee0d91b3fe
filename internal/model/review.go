package model

import "time"

// Review is a rating left by a user who attended an event.  Reviews may
// only be created for events the user holds a DONE transaction for;
// that rule is enforced in the handler.
type Review struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	EventID   uint64    `json:"event_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
