package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole lets a request through when its token carries one of roles.
// It must run after RequireBearer.  Opaque tokens cannot be read, so they
// are left for the backend to judge.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if opaque, _ := c.Get(ctxOpaque).(bool); opaque {
				return next(c)
			}
			for _, r := range Roles(c) {
				if allowed[r] {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden"})
		}
	}
}
