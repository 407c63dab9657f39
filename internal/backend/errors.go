package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable is returned while the circuit breaker refuses calls
	ErrUnavailable = errors.New("booking backend unavailable")
)

// APIError is a non-2xx answer from the backend. Message carries the
// backend's own text unchanged so it can be shown to the user.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsClientError reports whether the backend rejected the request itself
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// DecodeError reports a response body whose shape is not recognised
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unrecognized backend payload: %s: %v", e.Reason, e.Err)
	}
	return "unrecognized backend payload: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusFor maps an upstream failure onto the status and message the
// gateway answers with. ok is false when err did not come from the backend.
func StatusFor(err error) (status int, message string, ok bool) {
	var apiErr *APIError
	var decErr *DecodeError

	switch {
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= http.StatusInternalServerError {
			return http.StatusBadGateway, apiErr.Message, true
		}
		return apiErr.StatusCode, apiErr.Message, true
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "booking service is temporarily unavailable", true
	case errors.As(err, &decErr):
		return http.StatusBadGateway, "unexpected response from booking service", true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "booking service timed out", true
	}
	return 0, "", false
}
