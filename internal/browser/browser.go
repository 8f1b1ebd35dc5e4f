package browser

import (
	"context"
	"fmt"
)

// Response describes the main-document response of a navigation.
type Response struct {
	// URL is the final URL after redirects.
	URL string

	// Status is the HTTP status code of the main document.
	Status int
}

// OK reports whether the response status is below 400.
func (r *Response) OK() bool {
	return r != nil && r.Status > 0 && r.Status < 400
}

// CheckStatus returns a *StatusError if the response status is 400 or above.
func (r *Response) CheckStatus() error {
	if r == nil {
		return fmt.Errorf("%w: no response", ErrNavigation)
	}
	if !r.OK() {
		return &StatusError{URL: r.URL, Status: r.Status}
	}
	return nil
}

// Page is a single browser tab. Every method honours ctx cancellation and
// deadlines.
type Page interface {
	// Navigate loads url and returns the main-document response.
	Navigate(ctx context.Context, url string) (*Response, error)

	// WaitReady blocks until an element matching the CSS selector exists.
	WaitReady(ctx context.Context, selector string) error

	// Title returns the document title.
	Title(ctx context.Context) (string, error)

	// URL returns the current document URL.
	URL(ctx context.Context) (string, error)

	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)

	// InnerText returns the rendered text of the document body.
	InnerText(ctx context.Context) (string, error)

	// Close closes the tab. It is safe to call more than once.
	Close() error
}

// Session is a running browser that hands out pages.
type Session interface {
	// NewPage opens a new tab.
	NewPage(ctx context.Context) (Page, error)

	// Close shuts the browser down and releases its resources. It is safe
	// to call more than once.
	Close() error
}

// Launcher starts browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}
