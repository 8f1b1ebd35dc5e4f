package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrNavigation is returned when a page cannot be loaded: the browser
	// reported a network error, the navigation timed out, or the caller
	// rejected the response status.
	ErrNavigation = errors.New("navigation failed")

	// ErrSessionClosed is returned when a page is requested from a session
	// that has already been closed.
	ErrSessionClosed = errors.New("browser session is closed")
)

// StatusError reports a main-document response whose status is 400 or above.
// It matches ErrNavigation with errors.Is.
type StatusError struct {
	URL    string
	Status int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", ErrNavigation, e.URL, e.Status)
}

// Is reports whether target is ErrNavigation.
func (e *StatusError) Is(target error) bool {
	return target == ErrNavigation
}
