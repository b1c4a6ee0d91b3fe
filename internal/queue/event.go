// Package queue defines message payloads exchanged over the message
// broker, plus the publisher and background consumer for them.
package queue

// NotificationEvent is published whenever the transaction engine wants
// to tell a user about a status change. It carries enough information
// for downstream consumers to render and send an email without
// querying the primary database. Delivery is best effort; the engine
// never fails a request because a notification could not be published.
type NotificationEvent struct {
	MessageID  string            `json:"message_id"`
	ToEmail    string            `json:"to_email"`
	Subject    string            `json:"subject"`
	Template   string            `json:"template"`
	Context    map[string]string `json:"context"`
	OccurredAt string            `json:"occurred_at"`
}
