package reservation

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// SeatCount is the number of seats drawn on the seat picker.
	SeatCount = 32
	// MaxSelection is the most seats one reservation may pick.
	MaxSelection = 4
)

// unavailableSeats are seat numbers that can never be picked.
var unavailableSeats = map[int]bool{3: true, 7: true, 12: true, 15: true, 22: true, 28: true}

// Seat is one cell of the seat picker.
type Seat struct {
	ID       string
	Number   int // 1-based
	Disabled bool
}

// SeatID returns the id of the 1-based seat number n.
func SeatID(n int) string { return fmt.Sprintf("seat-%d", n) }

// seatNumber parses a seat id, returning 0 for anything malformed or out
// of range.
func seatNumber(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "seat-"))
	if err != nil || !strings.HasPrefix(id, "seat-") || n < 1 || n > SeatCount {
		return 0
	}
	return n
}

// SeatDisabled reports whether id cannot be selected for an event with
// availableSeats seats left: it is in the fixed unavailable set, its
// ordinal is at or beyond availableSeats, or it is not a seat at all.
func SeatDisabled(id string, availableSeats int) bool {
	n := seatNumber(id)
	if n == 0 {
		return true
	}
	return unavailableSeats[n] || n-1 >= availableSeats
}

// Layout returns the seat picker for an event with availableSeats left.
func Layout(availableSeats int) []Seat {
	seats := make([]Seat, SeatCount)
	for i := range seats {
		id := SeatID(i + 1)
		seats[i] = Seat{ID: id, Number: i + 1, Disabled: SeatDisabled(id, availableSeats)}
	}
	return seats
}

// Selection is the set of seats picked so far, in pick order, bounded
// by MaxSelection.  The zero value is an empty selection.
type Selection struct {
	ids []string
}

// Toggle removes id when it is selected and adds it otherwise.  Adding
// beyond MaxSelection is silently ignored.  It reports whether id is
// selected afterwards.
func (s *Selection) Toggle(id string) bool {
	for i, cur := range s.ids {
		if cur == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return false
		}
	}
	if len(s.ids) >= MaxSelection {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	for _, cur := range s.ids {
		if cur == id {
			return true
		}
	}
	return false
}

// Len is the number of selected seats.
func (s *Selection) Len() int { return len(s.ids) }

// IDs returns a copy of the selected seat ids.
func (s *Selection) IDs() []string { return append([]string(nil), s.ids...) }

// Clear empties the selection.
func (s *Selection) Clear() { s.ids = nil }
