// Package browser defines the headless-browser contract used by the
// ingestion pipeline and implements it with chromedp.
//
// A Launcher starts a Session (one browser process). A Session opens Pages
// (tabs). The pipeline keeps one Session per batch of domains and one Page
// per domain, so every Page must be closed on every exit path and every
// Session must be closed when its batch ends.
//
// Navigation results carry the HTTP status of the main document. A status of
// 400 or above is not an error at this layer; callers decide what a bad
// status means. Transport errors and timeouts are returned wrapped in
// ErrNavigation.
//
// The browsertest sub-package provides in-memory fakes for tests.
package browser
