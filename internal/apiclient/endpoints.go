package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iliyamo/event-reservation-web/internal/model"
)

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, call{
		op:        "login",
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      model.LoginRequest{Email: email, Password: password},
		anonymous: true,
		fallback:  "Login failed",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its token and profile.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, call{
		op:        "register",
		method:    http.MethodPost,
		path:      "/auth/register",
		body:      req,
		anonymous: true,
		fallback:  "Registration failed",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEvents returns every event.
func (c *Client) ListEvents(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	err := c.do(ctx, call{
		op:       "list events",
		method:   http.MethodGet,
		path:     "/events",
		fallback: "Failed to fetch events",
	}, &out)
	return out, err
}

// ListUpcomingEvents returns events that have not started yet.
func (c *Client) ListUpcomingEvents(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	err := c.do(ctx, call{
		op:       "list upcoming events",
		method:   http.MethodGet,
		path:     "/events/upcoming",
		fallback: "Failed to fetch events",
	}, &out)
	return out, err
}

// GetEvent returns a single event.
func (c *Client) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	var out model.Event
	err := c.do(ctx, call{
		op:       "get event",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/events/%d", id),
		fallback: "Failed to fetch event",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateEvent publishes a new event.  The backend only accepts this from
// administrators.
func (c *Client) CreateEvent(ctx context.Context, req model.EventRequest) (*model.Event, error) {
	var out model.Event
	err := c.do(ctx, call{
		op:        "create event",
		method:    http.MethodPost,
		path:      "/events",
		body:      req,
		needsAuth: true,
		fallback:  "Failed to create event",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReservation books numberOfSeats seats for eventID.  It fails with
// ErrAuthenticationRequired before any network call when no token is
// available.
func (c *Client) CreateReservation(ctx context.Context, eventID int64, numberOfSeats int) (*model.Reservation, error) {
	var out model.Reservation
	err := c.do(ctx, call{
		op:        "create reservation",
		method:    http.MethodPost,
		path:      "/reservations",
		body:      model.CreateReservationRequest{EventID: eventID, NumberOfSeats: numberOfSeats},
		needsAuth: true,
		fallback:  "Failed to create reservation",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMyReservations returns the reservations of the session's user.
func (c *Client) ListMyReservations(ctx context.Context) ([]model.Reservation, error) {
	var out []model.Reservation
	err := c.do(ctx, call{
		op:        "list reservations",
		method:    http.MethodGet,
		path:      "/reservations/user",
		needsAuth: true,
		fallback:  "Failed to fetch reservations",
	}, &out)
	return out, err
}

// GetReservation looks a reservation up by its code.
func (c *Client) GetReservation(ctx context.Context, code string) (*model.Reservation, error) {
	var out model.Reservation
	err := c.do(ctx, call{
		op:        "get reservation",
		method:    http.MethodGet,
		path:      "/reservations/" + url.PathEscape(code),
		needsAuth: true,
		fallback:  "Failed to fetch reservation",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelReservation cancels the reservation identified by code.
func (c *Client) CancelReservation(ctx context.Context, code string) error {
	return c.do(ctx, call{
		op:        "cancel reservation",
		method:    http.MethodDelete,
		path:      "/reservations/" + url.PathEscape(code),
		needsAuth: true,
		fallback:  "Failed to cancel reservation",
	}, nil)
}
