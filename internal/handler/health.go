package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports that the server is up.  It never calls the backend.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
