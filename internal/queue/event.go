// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketIssuedEvent is published for every committed registration that
// still awaits ticket delivery.  It carries enough information for the
// delivery consumer to compose and send the email without querying the
// primary database.  The ticket PNG travels base64-encoded.
type TicketIssuedEvent struct {
	NotificationID uint64 `json:"notification_id"`
	RegistrationID uint64 `json:"registration_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	EventID        uint64 `json:"event_id"`
	EventName      string `json:"event_name"`
	EventDate      string `json:"event_date"`
	TicketPNG      string `json:"ticket_png"`
	IssuedAt       string `json:"issued_at"`
}
