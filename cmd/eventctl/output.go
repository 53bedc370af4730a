package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iliyamo/event-reservation-web/internal/model"
	"github.com/iliyamo/event-reservation-web/internal/reservation"
)

const dateLayout = "Jan 2, 2006"

func formatDate(t model.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func printEvents(w io.Writer, events []model.Event) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDATE\tSEATS LEFT\tPRICE")
	for _, e := range events {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t$%.2f\n",
			e.ID, e.Name, e.Category, formatDate(e.EventDate), e.AvailableSeats, e.Price)
	}
	_ = tw.Flush()
}

func printEvent(w io.Writer, e model.Event) {
	fmt.Fprintf(w, "%s\n", e.Name)
	if e.Description != "" {
		fmt.Fprintf(w, "%s\n", e.Description)
	}
	fmt.Fprintf(w, "Date: %s\nCategory: %s\nPrice: $%.2f\nAvailable: %d of %d\n",
		formatDate(e.EventDate), e.Category, e.Price, e.AvailableSeats, e.TotalSeats)
}

// printSeats draws the picker as rows of eight; taken seats show as xx.
func printSeats(w io.Writer, seats []reservation.Seat) {
	var b strings.Builder
	for i, s := range seats {
		if s.Disabled {
			b.WriteString(" xx")
		} else {
			fmt.Fprintf(&b, " %2d", s.Number)
		}
		if (i+1)%8 == 0 {
			b.WriteByte('\n')
		}
	}
	if len(seats)%8 != 0 {
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}

func printQuote(w io.Writer, q reservation.Quote) {
	fmt.Fprintf(w, "Tickets: %d x $%.2f = $%.2f\nService fee: $%.2f\nTotal: $%.2f\n",
		q.Seats, q.UnitPrice, q.Subtotal, q.ServiceFee, q.Total)
}

func printReservations(w io.Writer, list []model.Reservation) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tEVENT\tSEATS\tTOTAL\tSTATUS\tBOOKED")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t$%.2f\t%s\t%s\n",
			r.ReservationCode, r.DisplayName(), r.NumberOfSeats, r.TotalPrice, r.Status.Kind(), formatDate(r.ReservationDate))
	}
	_ = tw.Flush()
}
