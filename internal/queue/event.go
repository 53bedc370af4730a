// Package queue carries reservation events over RabbitMQ: the BFF
// publishes one per confirmed reservation and a background consumer
// appends them to a log file.
package queue

import (
	"time"

	"github.com/iliyamo/event-reservation-web/internal/model"
)

// ReservationQueue is the durable queue both sides declare.
const ReservationQueue = "reservation.confirmed"

// ReservationConfirmedEvent is published after the backend accepted a
// reservation.  It is self-contained so consumers never call back.
type ReservationConfirmedEvent struct {
	ReservationID   int64   `json:"reservation_id"`
	ReservationCode string  `json:"reservation_code"`
	EventID         int64   `json:"event_id"`
	EventName       string  `json:"event_name"`
	UserID          string  `json:"user_id"`
	NumberOfSeats   int     `json:"number_of_seats"`
	TotalPrice      float64 `json:"total_price"`
	Status          string  `json:"status"`
	ConfirmedAt     string  `json:"confirmed_at"`
}

// NewReservationConfirmed builds the event for res.  eventID is used when
// the backend response does not embed the event.
func NewReservationConfirmed(res model.Reservation, eventID int64, userID string, at time.Time) ReservationConfirmedEvent {
	if id := res.EventID(); id != 0 {
		eventID = id
	}
	return ReservationConfirmedEvent{
		ReservationID:   res.ID,
		ReservationCode: res.ReservationCode,
		EventID:         eventID,
		EventName:       res.DisplayName(),
		UserID:          userID,
		NumberOfSeats:   res.NumberOfSeats,
		TotalPrice:      res.TotalPrice,
		Status:          string(res.Status.Kind()),
		ConfirmedAt:     at.UTC().Format(time.RFC3339),
	}
}
