package utils // package utils provides helpers for inspecting and minting bearer tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for decoding and signing tokens
)

// ErrNotJWT is returned by InspectToken when the raw token is an opaque
// string rather than a JWT.  Opaque tokens are valid bearers; they simply
// carry no readable claims.
var ErrNotJWT = errors.New("token is not a JWT")

// TokenInfo holds the claims the front end cares about.  The signature is
// never checked here: only the backend can verify a token, the client
// merely reads it to decide whether it is worth sending.
type TokenInfo struct {
	Subject   string    // sub claim
	Roles     []string  // roles claim (string or array), may be empty
	ExpiresAt time.Time // zero when the token has no exp claim
}

// Expired reports whether the token carries an exp claim at or before now.
func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !t.ExpiresAt.After(now)
}

// HasRole reports whether role is among the token's roles.
func (t TokenInfo) HasRole(role string) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// InspectToken decodes the claims of raw without verifying its signature.
func InspectToken(raw string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, ErrNotJWT
	}
	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	switch v := claims["roles"].(type) {
	case string:
		info.Roles = []string{v}
	case []interface{}:
		for _, r := range v {
			if s, ok := r.(string); ok {
				info.Roles = append(info.Roles, s)
			}
		}
	}
	if role, ok := claims["role"].(string); ok && role != "" && !info.HasRole(role) {
		info.Roles = append(info.Roles, role)
	}
	return info, nil
}

// NewAccessToken builds and signs an HS256 JWT with the given subject,
// roles and lifetime.  A negative ttl yields an already-expired token.
// Used to stand in for backend-issued tokens in local tooling and tests.
func NewAccessToken(secret, subject string, roles []string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
