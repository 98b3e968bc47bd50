package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidURL is returned when the URL is not an absolute http or https URL.
	ErrInvalidURL = errors.New("invalid url: must be an absolute http or https url")

	// ErrInvalidProxyAddress is returned when the proxy address is not in "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
