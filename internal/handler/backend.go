// Package handler serves the BFF routes.  Each handler forwards to the
// backend through the API client and answers failures with a
// {"message": ...} body so the client error contract round-trips.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-web/internal/apiclient"
	"github.com/iliyamo/event-reservation-web/internal/model"
)

// Backend is what the handlers need from the API client.
type Backend interface {
	ListUpcomingEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	CreateEvent(ctx context.Context, req model.EventRequest) (*model.Event, error)
	CreateReservation(ctx context.Context, eventID int64, numberOfSeats int) (*model.Reservation, error)
	ListMyReservations(ctx context.Context) ([]model.Reservation, error)
	GetReservation(ctx context.Context, code string) (*model.Reservation, error)
	CancelReservation(ctx context.Context, code string) error
}

// BackendFor returns a Backend that sends token as the bearer.  An empty
// token yields an anonymous backend.
type BackendFor func(token string) Backend

// ClientBackend adapts an API client to BackendFor.
func ClientBackend(c *apiclient.Client) BackendFor {
	return func(token string) Backend {
		if token == "" {
			return c
		}
		return c.WithToken(token)
	}
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}

// replyError maps client errors onto the response: rejections keep the
// backend's status and message, a missing session is 401, an unreachable
// backend is 502.
func replyError(c echo.Context, log *zap.Logger, err error) error {
	log = orNop(log)
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		return message(c, apiErr.StatusCode, apiErr.Message)
	case errors.Is(err, apiclient.ErrAuthenticationRequired):
		return message(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, context.Canceled):
		// client went away
		return nil
	case apiclient.IsNetworkFailure(err):
		log.Warn("backend unreachable", zap.String("path", c.Path()), zap.Error(err))
		return message(c, http.StatusBadGateway, "Backend unavailable")
	default:
		log.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
		return message(c, http.StatusInternalServerError, "Internal error")
	}
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
