package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation-web/internal/utils"
)

// RequireBearer rejects requests without an "Authorization: Bearer" token
// and requests whose JWT has expired.  The signature is not checked: the
// backend does that when the token is forwarded.  Opaque tokens pass
// unread.  now may be nil.
func RequireBearer(now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if !strings.HasPrefix(auth, "Bearer ") || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
			}

			info, err := utils.InspectToken(raw)
			switch {
			case errors.Is(err, utils.ErrNotJWT):
				c.Set(ctxOpaque, true)
			case info.Expired(now()):
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token expired"})
			default:
				c.Set(ctxUserID, info.Subject)
				c.Set(ctxRoles, info.Roles)
			}
			c.Set(ctxToken, raw)
			return next(c)
		}
	}
}
