package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusAccepted  ReservationStatus = "accepted"
	StatusCancelled ReservationStatus = "cancelled"
)

// Valid reports whether s is one of the enumerated statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCancelled:
		return true
	}
	return false
}

// Notifies reports whether moving into s sends the guest a status email.
func (s ReservationStatus) Notifies() bool {
	return s == StatusAccepted || s == StatusCancelled
}

// Reservation is a guest's request for a table.  Date, Time and Guests are
// kept as the tokens the guest submitted ("2025-06-01", "19:00", "10+").
//
// Fields:
//  ID        – reservations.id, assigned on insert.
//  Email     – lower-cased at intake.
//  Message   – optional special requests (nullable).
//  Status    – pending | accepted | cancelled.
//  CreatedAt – set once at intake.
//  UpdatedAt – refreshed on every status write.
type Reservation struct {
	ID        uint64            `db:"id" json:"id"`
	Name      string            `db:"name" json:"name"`
	Email     string            `db:"email" json:"email"`
	Phone     string            `db:"phone" json:"phone"`
	Date      string            `db:"date" json:"date"`
	Time      string            `db:"time" json:"time"`
	Guests    string            `db:"guests" json:"guests"`
	Message   *string           `db:"message" json:"message"`
	Status    ReservationStatus `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time         `db:"updated_at" json:"updatedAt"`
}
