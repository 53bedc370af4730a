package reservation

import "math"

// ServiceFeePerSeat is charged on top of the ticket price for every seat.
const ServiceFeePerSeat = 9.99

const serviceFeeCents = 999

// Quote is the price breakdown for a seat count.  Amounts are computed in
// whole cents so that totals match what is displayed.
type Quote struct {
	Seats      int
	UnitPrice  float64
	Subtotal   float64 // UnitPrice × Seats
	ServiceFee float64 // ServiceFeePerSeat × Seats
	Total      float64 // Subtotal + ServiceFee
}

// NewQuote prices seats seats at price each.
func NewQuote(price float64, seats int) Quote {
	if seats < 0 {
		seats = 0
	}
	unit := int64(math.Round(price * 100))
	n := int64(seats)
	subtotal := unit * n
	fee := serviceFeeCents * n
	return Quote{
		Seats:      seats,
		UnitPrice:  fromCents(unit),
		Subtotal:   fromCents(subtotal),
		ServiceFee: fromCents(fee),
		Total:      fromCents(subtotal + fee),
	}
}

func fromCents(c int64) float64 { return float64(c) / 100 }
