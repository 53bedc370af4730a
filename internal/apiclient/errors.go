package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthenticationRequired is returned, without any network I/O, when an
// operation that needs a bearer token is attempted while none is
// available.
var ErrAuthenticationRequired = errors.New("Authentication required")

// APIError is a non-2xx response from the backend.  Message is always a
// human-readable string: the backend's own message when it sent one,
// otherwise a fallback derived from the operation or the status text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// NetworkError wraps a transport failure or a 2xx body that could not be
// decoded.  Op names the failing operation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// IsAuthFailure reports whether err means the caller has no usable
// session: either no token was available locally or the backend rejected
// the one that was sent.
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrAuthenticationRequired) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsNetworkFailure reports whether err is a NetworkError.
func IsNetworkFailure(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
