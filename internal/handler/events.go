package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-web/internal/catalog"
	"github.com/iliyamo/event-reservation-web/internal/middleware"
	"github.com/iliyamo/event-reservation-web/internal/model"
)

// CatalogSourceHeader tells the caller whether a listing came from the
// backend or from the demo set.
const CatalogSourceHeader = "X-Catalog-Source"

type EventHandler struct {
	Catalog *catalog.Source
	Backend BackendFor
	Log     *zap.Logger
}

// List handles GET /api/events?q=&category=&sort=.
func (h *EventHandler) List(c echo.Context) error {
	sortKey, err := catalog.ParseSort(c.QueryParam("sort"))
	if err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}
	res, err := h.Catalog.List(c.Request().Context())
	if err != nil {
		return replyError(c, h.Log, err)
	}

	source := "backend"
	if res.Fallback {
		source = "fallback"
		// demo data must not outlive the outage in any cache
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	}
	c.Response().Header().Set(CatalogSourceHeader, source)

	events := catalog.Apply(res.Events, catalog.Query{
		Search:   c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Sort:     sortKey,
	})
	return c.JSON(http.StatusOK, events)
}

// Upcoming handles GET /api/events/upcoming.
func (h *EventHandler) Upcoming(c echo.Context) error {
	events, err := h.Backend("").ListUpcomingEvents(c.Request().Context())
	if err != nil {
		return replyError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /api/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return message(c, http.StatusBadRequest, "Invalid event id")
	}
	e, err := h.Backend("").GetEvent(c.Request().Context(), id)
	if err != nil {
		return replyError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, e)
}

// Create handles POST /api/events for admins.
func (h *EventHandler) Create(c echo.Context) error {
	var req model.EventRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" || req.TotalSeats <= 0 || req.Price < 0 || req.EventDate.IsZero() {
		return message(c, http.StatusBadRequest, "name, eventDate, totalSeats and price are required")
	}
	e, err := h.Backend(middleware.Token(c)).CreateEvent(c.Request().Context(), req)
	if err != nil {
		return replyError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, e)
}
