// Package router mounts the BFF routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-web/internal/handler"
	"github.com/iliyamo/event-reservation-web/internal/middleware"
	"github.com/iliyamo/event-reservation-web/internal/model"
)

// Routes collects the handlers and the optional Redis-backed middleware.
// Nil middleware is skipped.
type Routes struct {
	Events       *handler.EventHandler
	Reservations *handler.ReservationHandler
	Cache        echo.MiddlewareFunc
	RateLimit    echo.MiddlewareFunc
}

func optional(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Register mounts /healthz and the /api tree.
func Register(e *echo.Echo, r Routes) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api", optional(r.RateLimit)...)

	// public catalog, cacheable
	events := api.Group("/events")
	cached := optional(r.Cache)
	events.GET("", r.Events.List, cached...)
	events.GET("/upcoming", r.Events.Upcoming, cached...)
	events.GET("/:id", r.Events.Get, cached...)
	events.POST("", r.Events.Create, middleware.RequireBearer(nil), middleware.RequireRole(model.RoleAdmin))

	res := api.Group("/reservations", middleware.RequireBearer(nil))
	res.POST("", r.Reservations.Create)
	res.GET("/user", r.Reservations.Mine)
	res.GET("/:code", r.Reservations.Get)
	res.DELETE("/:code", r.Reservations.Cancel)
}
