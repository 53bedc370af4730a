package model

// Event is an immutable snapshot of a bookable event as returned by the
// backend.  The front end never mutates it; a fresh copy is fetched on
// every view.
//
// Fields:
//  ID             – backend event identifier.
//  Name           – display title.
//  Description    – free-form description (may be empty).
//  EventDate      – start of the event.
//  TotalSeats     – capacity.
//  AvailableSeats – seats still bookable (0 ≤ AvailableSeats ≤ TotalSeats).
//  Price          – price per seat, never negative.
//  Category       – grouping label used by the catalog filter.
//  ImageURL       – cover image, may be empty.
//  CreatedAt      – creation time on the backend.
type Event struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	EventDate      Timestamp `json:"eventDate"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	Price          float64   `json:"price"`
	Category       string    `json:"category"`
	ImageURL       string    `json:"imageUrl"`
	CreatedAt      Timestamp `json:"createdAt,omitzero"`
}

// EventRequest is the body of POST /api/events (admin only).
type EventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	EventDate   Timestamp `json:"eventDate"`
	TotalSeats  int       `json:"totalSeats"`
	Price       float64   `json:"price"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}
