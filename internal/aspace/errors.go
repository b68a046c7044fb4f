package aspace

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when an authenticated call is attempted before Login
var ErrNoSession = errors.New("not authenticated: call Login first")

// AuthError indicates that authentication against the API failed
type AuthError struct {
	Username string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %q: %s", e.Username, e.Reason)
}

// NotFoundError indicates the API returned 404 for a record
type NotFoundError struct {
	Type string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Type, e.ID)
}

// APIError indicates a non-2xx response other than 404
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API returned %d for %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("API returned %d for %s", e.StatusCode, e.URL)
}

// TransportError indicates the request never produced an HTTP response
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError indicates a 2xx response with an unparsable body
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
