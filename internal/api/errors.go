package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, msg)
}

// TimeoutError is returned when a request does not complete within the
// client's request timeout.
type TimeoutError struct {
	Method string
	Path   string
	After  time.Duration
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("api %s %s timed out after %s", e.Method, e.Path, e.After)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// NetworkError wraps transport failures such as refused connections or DNS
// errors.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api %s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SchemaError reports a payload that decoded but is missing required data.
type SchemaError struct {
	Type   string
	Field  string
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid %s payload: %s: %s", e.Type, e.Field, e.Detail)
	}
	return fmt.Sprintf("invalid %s payload: missing %s", e.Type, e.Field)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	return StatusCode(err) == status
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
