package soracom

import (
	"errors"
	"fmt"
)

var (
	ErrAuth          = errors.New("authentication failed")
	ErrNotFound      = errors.New("subscriber not found")
	ErrActivation    = errors.New("subscriber activation failed")
	ErrRequest       = errors.New("subscriber directory request failed")
	ErrNotAuthorized = errors.New("client is not authenticated")
)

// APIError carries the HTTP status of a rejected call.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
	Kind       error
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}
