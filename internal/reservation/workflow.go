// Package reservation turns a seat selection into a reservation request.
// Business rules (seat availability, the four-seat limit, the session
// requirement) are enforced here before any network round trip.
package reservation

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-web/internal/apiclient"
	"github.com/iliyamo/event-reservation-web/internal/model"
	"github.com/iliyamo/event-reservation-web/internal/scope"
)

// ReservationsLocation lists the user's reservations.
const ReservationsLocation = "/my-reservations"

// EventLocation is the detail page of event id.
func EventLocation(id int64) string { return fmt.Sprintf("/events/%d", id) }

// LoginLocation is the login page returning to back afterwards.
func LoginLocation(back string) string { return "/login?redirect=" + url.QueryEscape(back) }

// API is the subset of the backend client the workflow needs.
type API interface {
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	CreateReservation(ctx context.Context, eventID int64, numberOfSeats int) (*model.Reservation, error)
}

// Authenticator reports whether a session is present.
type Authenticator interface {
	IsAuthenticated() bool
}

// Navigator performs navigation side effects.
type Navigator interface {
	Navigate(location string)
}

// Variant is a notice's severity.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notice is a transient message for the user.
type Notice struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier shows notices.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Workflow is the state of one event's booking interaction.  Create one
// per event view and Close it when the view goes away.
type Workflow struct {
	api    API
	auth   Authenticator
	nav    Navigator
	notify Notifier
	log    *zap.Logger
	loads  scope.Scope

	mu         sync.Mutex
	event      *model.Event
	selection  Selection
	submitting bool
}

// NewWorkflow wires a workflow.  All collaborators are required except
// logger.
func NewWorkflow(api API, auth Authenticator, nav Navigator, notify Notifier, logger *zap.Logger) *Workflow {
	if api == nil || auth == nil || nav == nil || notify == nil {
		panic("nil dependency passed to NewWorkflow")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{api: api, auth: auth, nav: nav, notify: notify, log: logger}
}

// LoadEvent fetches event id and makes it current, discarding any
// selection.  Starting another load, or Close, cancels a load still in
// flight; a cancelled load leaves the workflow untouched.
func (w *Workflow) LoadEvent(ctx context.Context, id int64) error {
	ctx, done := w.loads.Begin(ctx)
	defer done()

	e, err := w.api.GetEvent(ctx, id)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		w.log.Warn("failed to load event", zap.Int64("event_id", id), zap.Error(err))
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.loads.Latest(ctx) {
		return context.Canceled
	}
	w.setEventLocked(*e)
	return nil
}

// SetEvent makes e current and clears the selection.
func (w *Workflow) SetEvent(e model.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setEventLocked(e)
}

func (w *Workflow) setEventLocked(e model.Event) {
	w.event = &e
	w.selection.Clear()
}

// Event returns the current event.
func (w *Workflow) Event() (model.Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.event == nil {
		return model.Event{}, false
	}
	return *w.event, true
}

// Seats returns the seat picker for the current event, or nil.
func (w *Workflow) Seats() []Seat {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.event == nil {
		return nil
	}
	return Layout(w.event.AvailableSeats)
}

// ToggleSeat flips seatID in the selection.  Disabled seats, and any
// seat while no event is loaded, are ignored.  It reports whether the
// seat is selected afterwards.
func (w *Workflow) ToggleSeat(seatID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.event == nil || SeatDisabled(seatID, w.event.AvailableSeats) {
		return false
	}
	return w.selection.Toggle(seatID)
}

// Selected returns the selected seat ids in pick order.
func (w *Workflow) Selected() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.IDs()
}

// Quote prices the current selection.  It is recomputed on every call.
func (w *Workflow) Quote() Quote {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.event == nil {
		return NewQuote(0, 0)
	}
	return NewQuote(w.event.Price, w.selection.Len())
}

// Submitting reports whether a reservation request is in flight.
func (w *Workflow) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Submit reserves the selected seat count for the current event.  It is a
// no-op without an event, without a selection, or while a previous
// submit is in flight.  Without a session it redirects to login and
// makes no network call.  Every outcome is reported through the
// notifier; the created reservation is returned on success, nil
// otherwise.
func (w *Workflow) Submit(ctx context.Context) *model.Reservation {
	w.mu.Lock()
	if w.event == nil || w.selection.Len() == 0 || w.submitting {
		w.mu.Unlock()
		return nil
	}
	eventID := w.event.ID
	seats := w.selection.Len()

	if !w.auth.IsAuthenticated() {
		w.mu.Unlock()
		w.notify.Notify(Notice{
			Title:       "Authentication required",
			Description: "Please log in to make a reservation",
			Variant:     VariantDestructive,
		})
		w.nav.Navigate(LoginLocation(EventLocation(eventID)))
		return nil
	}
	w.submitting = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	w.log.Info("sending reservation request", zap.Int64("event_id", eventID), zap.Int("seats", seats))
	res, err := w.api.CreateReservation(ctx, eventID, seats)
	if err != nil {
		w.log.Warn("reservation failed", zap.Int64("event_id", eventID), zap.Error(err))
		msg := err.Error()
		if apiclient.IsAuthFailure(err) {
			msg = "Your session has expired. Please log in again."
			w.nav.Navigate(LoginLocation(EventLocation(eventID)))
		}
		w.notify.Notify(Notice{Title: "Reservation failed", Description: msg, Variant: VariantDestructive})
		return nil
	}

	w.mu.Lock()
	w.selection.Clear()
	w.mu.Unlock()

	w.log.Info("reservation created", zap.Int64("reservation_id", res.ID), zap.String("code", res.ReservationCode))
	w.notify.Notify(Notice{
		Title:       "Reservation successful!",
		Description: fmt.Sprintf("You have reserved %d seats. Your reservation code is: %s", seats, res.ReservationCode),
		Variant:     VariantDefault,
	})
	w.nav.Navigate(ReservationsLocation)
	return res
}

// Close cancels any event load still in flight.
func (w *Workflow) Close() { w.loads.Close() }
