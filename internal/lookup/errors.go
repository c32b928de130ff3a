package lookup

import (
	"errors"
	"fmt"
)

var (
	// ErrDisabled is returned when a client has no API key configured.
	ErrDisabled = errors.New("lookup disabled")

	// ErrNoResult is returned when the upstream answered but had nothing to offer.
	ErrNoResult = errors.New("no result")
)

// HTTPError represents a non-2xx HTTP response from an upstream API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
