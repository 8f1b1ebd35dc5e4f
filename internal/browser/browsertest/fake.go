// Package browsertest provides in-memory implementations of the browser
// interfaces for tests.
package browsertest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/nao1215/domainscan/internal/browser"
)

// Site is the canned result of navigating to one URL.
type Site struct {
	// Status is the main-document status. Zero means 200.
	Status int

	// FinalURL is the URL after redirects. Empty means the requested URL.
	FinalURL string

	// Title is the document title.
	Title string

	// HTML is the serialized document.
	HTML string

	// Text is the rendered body text returned by InnerText.
	Text string

	// Err makes navigation fail with this error wrapped in ErrNavigation.
	Err error
}

// Web maps URLs to sites. Unknown URLs behave like a DNS failure.
type Web map[string]Site

// ErrUnknownHost is returned for URLs missing from a Web.
var ErrUnknownHost = errors.New("net::ERR_NAME_NOT_RESOLVED")

// Launcher is a fake browser.Launcher serving a fixed Web.
type Launcher struct {
	Web Web

	// LaunchErr makes Launch fail.
	LaunchErr error

	launched atomic.Int64
	mu       sync.Mutex
	sessions []*Session
}

// NewLauncher returns a Launcher serving web.
func NewLauncher(web Web) *Launcher {
	return &Launcher{Web: web}
}

// Launch implements browser.Launcher.
func (l *Launcher) Launch(ctx context.Context) (browser.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	l.launched.Add(1)
	s := &Session{web: l.Web}
	l.mu.Lock()
	l.sessions = append(l.sessions, s)
	l.mu.Unlock()
	return s, nil
}

// Launched returns the number of sessions started.
func (l *Launcher) Launched() int {
	return int(l.launched.Load())
}

// Sessions returns every session started so far.
func (l *Launcher) Sessions() []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Session, len(l.sessions))
	copy(out, l.sessions)
	return out
}

// OpenSessions returns the number of sessions not yet closed.
func (l *Launcher) OpenSessions() int {
	n := 0
	for _, s := range l.Sessions() {
		if !s.Closed() {
			n++
		}
	}
	return n
}

// OpenPages returns the number of pages not yet closed across all sessions.
func (l *Launcher) OpenPages() int {
	n := 0
	for _, s := range l.Sessions() {
		n += s.OpenPages()
	}
	return n
}

// Session is a fake browser.Session.
type Session struct {
	web Web

	mu     sync.Mutex
	closed bool
	pages  []*Page
}

// NewSession returns a standalone session serving web.
func NewSession(web Web) *Session {
	return &Session{web: web}
}

// NewPage implements browser.Session.
func (s *Session) NewPage(ctx context.Context) (browser.Page, error) {
	return s.Open(ctx)
}

// Open is NewPage returning the concrete fake.
func (s *Session) Open(ctx context.Context) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, browser.ErrSessionClosed
	}
	p := &Page{web: s.web}
	s.pages = append(s.pages, p)
	return p, nil
}

// Close implements browser.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Pages returns every page opened in this session.
func (s *Session) Pages() []*Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// OpenPages returns the number of pages of this session not yet closed.
func (s *Session) OpenPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.pages {
		if !p.Closed() {
			n++
		}
	}
	return n
}

// Page is a fake browser.Page.
type Page struct {
	web Web

	mu      sync.Mutex
	current *Site
	url     string
	visited []string
	closed  bool
}

// NewPage returns a standalone page serving web.
func NewPage(web Web) *Page {
	return &Page{web: web}
}

// Navigate implements browser.Page.
func (p *Page) Navigate(ctx context.Context, url string) (*browser.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(browser.ErrNavigation, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visited = append(p.visited, url)

	site, ok := p.web[url]
	if !ok {
		p.current = nil
		return nil, errors.Join(browser.ErrNavigation, ErrUnknownHost)
	}
	if site.Err != nil {
		p.current = nil
		return nil, errors.Join(browser.ErrNavigation, site.Err)
	}

	p.current = &site
	p.url = url
	if site.FinalURL != "" {
		p.url = site.FinalURL
	}
	status := site.Status
	if status == 0 {
		status = 200
	}
	return &browser.Response{URL: p.url, Status: status}, nil
}

func (p *Page) site() (*Site, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, errors.New("no document loaded")
	}
	return p.current, nil
}

// WaitReady implements browser.Page. Only "body" and "html" are known to
// exist in every loaded document.
func (p *Page) WaitReady(ctx context.Context, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.site()
	return err
}

// Title implements browser.Page.
func (p *Page) Title(context.Context) (string, error) {
	s, err := p.site()
	if err != nil {
		return "", err
	}
	return s.Title, nil
}

// URL implements browser.Page.
func (p *Page) URL(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

// HTML implements browser.Page.
func (p *Page) HTML(context.Context) (string, error) {
	s, err := p.site()
	if err != nil {
		return "", err
	}
	return s.HTML, nil
}

// InnerText implements browser.Page.
func (p *Page) InnerText(context.Context) (string, error) {
	s, err := p.site()
	if err != nil {
		return "", err
	}
	return s.Text, nil
}

// Close implements browser.Page.
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Visited returns the URLs passed to Navigate, in order.
func (p *Page) Visited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.visited))
	copy(out, p.visited)
	return out
}
