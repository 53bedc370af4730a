package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-web/internal/middleware"
	"github.com/iliyamo/event-reservation-web/internal/model"
	"github.com/iliyamo/event-reservation-web/internal/queue"
	"github.com/iliyamo/event-reservation-web/internal/reservation"
)

// ReservationHandler forwards the caller's bearer token to the backend.
// All routes sit behind middleware.RequireBearer.
type ReservationHandler struct {
	Backend   BackendFor
	Publisher queue.Publisher
	Log       *zap.Logger
	Now       func() time.Time
}

func (h *ReservationHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Create handles POST /api/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.EventID <= 0 {
		return message(c, http.StatusBadRequest, "eventId is required")
	}
	if req.NumberOfSeats < 1 || req.NumberOfSeats > reservation.MaxSelection {
		return message(c, http.StatusBadRequest, "numberOfSeats must be between 1 and 4")
	}

	ctx := c.Request().Context()
	res, err := h.Backend(middleware.Token(c)).CreateReservation(ctx, req.EventID, req.NumberOfSeats)
	if err != nil {
		return replyError(c, h.Log, err)
	}

	if res.Status.Kind() != model.StatusConfirmed {
		return c.JSON(http.StatusCreated, res)
	}
	ev := queue.NewReservationConfirmed(*res, req.EventID, middleware.UserID(c), h.now())
	// the reservation already exists, a lost event must not fail it
	if err := h.Publisher.PublishReservationConfirmed(context.WithoutCancel(ctx), ev); err != nil {
		orNop(h.Log).Warn("publish reservation event failed", zap.String("code", res.ReservationCode), zap.Error(err))
	}
	return c.JSON(http.StatusCreated, res)
}

// Mine handles GET /api/reservations/user.
func (h *ReservationHandler) Mine(c echo.Context) error {
	list, err := h.Backend(middleware.Token(c)).ListMyReservations(c.Request().Context())
	if err != nil {
		return replyError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /api/reservations/:code.
func (h *ReservationHandler) Get(c echo.Context) error {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return message(c, http.StatusBadRequest, "Invalid reservation code")
	}
	res, err := h.Backend(middleware.Token(c)).GetReservation(c.Request().Context(), code)
	if err != nil {
		return replyError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles DELETE /api/reservations/:code.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return message(c, http.StatusBadRequest, "Invalid reservation code")
	}
	if err := h.Backend(middleware.Token(c)).CancelReservation(c.Request().Context(), code); err != nil {
		return replyError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
