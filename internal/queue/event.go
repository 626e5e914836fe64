// Package queue defines the reservation events exchanged over RabbitMQ,
// the publisher used by the reservation service and the consumer that
// appends them to an audit log.
package queue

import (
	"time"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

// Event types.
const (
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
)

// ReservationEvent is published after intake and after every status
// write.  It carries enough of the reservation for the audit log without a
// database lookup.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Guests        string `json:"guests"`
	Status        string `json:"status"`
	// Notification is the dispatch outcome for status changes.  Empty when
	// nothing was sent.
	Notification string `json:"notification,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}

// NewReservationEvent builds an event of type typ for r at the given time.
func NewReservationEvent(typ string, r model.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          typ,
		ReservationID: r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Date:          r.Date,
		Time:          r.Time,
		Guests:        r.Guests,
		Status:        string(r.Status),
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
