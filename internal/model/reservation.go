package model

import "strings"

// ReservationStatus is the raw status string reported by the backend.
// Use Kind to obtain the normalized value.
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusPending   ReservationStatus = "PENDING"
	StatusCanceled  ReservationStatus = "CANCELED"
	StatusUnknown   ReservationStatus = "UNKNOWN"
)

// Kind maps the raw status onto one of the known statuses.  Matching is
// case-insensitive and the backend's CANCELLED spelling is folded into
// StatusCanceled.  Anything else is StatusUnknown.
func (s ReservationStatus) Kind() ReservationStatus {
	switch strings.ToUpper(strings.TrimSpace(string(s))) {
	case "CONFIRMED":
		return StatusConfirmed
	case "PENDING":
		return StatusPending
	case "CANCELED", "CANCELLED":
		return StatusCanceled
	default:
		return StatusUnknown
	}
}

// Reservation is a booking of a seat count against an event.  It is
// created by the backend and read-only to the front end.
//
// Fields:
//  ID              – backend reservation identifier.
//  Event           – embedded event snapshot, when the backend includes it.
//  EventName       – event title, used when Event is absent.
//  NumberOfSeats   – booked seat count (> 0).
//  Status          – raw backend status (see Kind).
//  ReservationCode – opaque code shown to the user at check-in.
//  TotalPrice      – price charged by the backend.
//  ReservationDate – when the booking was made.
//  UserName        – booking owner's display name.
type Reservation struct {
	ID              int64             `json:"id"`
	Event           *Event            `json:"event,omitempty"`
	EventName       string            `json:"eventName,omitempty"`
	NumberOfSeats   int               `json:"numberOfSeats"`
	Status          ReservationStatus `json:"status"`
	ReservationCode string            `json:"reservationCode"`
	TotalPrice      float64           `json:"totalPrice"`
	ReservationDate Timestamp         `json:"reservationDate,omitzero"`
	UserName        string            `json:"userName,omitempty"`
}

// EventID returns the referenced event's id, or 0 when the backend did
// not embed the event.
func (r Reservation) EventID() int64 {
	if r.Event == nil {
		return 0
	}
	return r.Event.ID
}

// DisplayName returns the best available event title.
func (r Reservation) DisplayName() string {
	if r.Event != nil && r.Event.Name != "" {
		return r.Event.Name
	}
	if r.EventName != "" {
		return r.EventName
	}
	return "Event"
}

// CreateReservationRequest is the body of POST /api/reservations.  The
// backend books a seat count, not individual seats.
type CreateReservationRequest struct {
	EventID       int64 `json:"eventId"`
	NumberOfSeats int   `json:"numberOfSeats"`
}
