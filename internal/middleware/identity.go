package middleware

import "github.com/labstack/echo/v4"

// Context keys populated by RequireBearer.
const (
	ctxToken  = "bearer_token"
	ctxUserID = "user_id"
	ctxRoles  = "roles"
	ctxOpaque = "opaque_token"
)

// Token returns the bearer token accepted by RequireBearer, or "".
func Token(c echo.Context) string {
	s, _ := c.Get(ctxToken).(string)
	return s
}

// Roles returns the roles read from the bearer token.  Opaque tokens have
// none.
func Roles(c echo.Context) []string {
	r, _ := c.Get(ctxRoles).([]string)
	return r
}

// UserID returns the token subject, or "" when none was read.
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// userID identifies the caller for rate limiting.
func userID(c echo.Context) string {
	if s := UserID(c); s != "" {
		return s
	}
	return "guest"
}
