package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromeLauncher starts Chrome or Chromium through chromedp.
type ChromeLauncher struct {
	// headless runs the browser without a window.
	headless bool

	// userAgent overrides the browser user agent when non-empty.
	userAgent string

	// execPath is the browser executable. Empty lets chromedp find it.
	execPath string

	// logf receives chromedp's own log output.
	logf func(string, ...any)
}

// ChromeOption configures a ChromeLauncher.
type ChromeOption func(*ChromeLauncher)

// WithHeadless sets whether the browser runs without a window.
func WithHeadless(headless bool) ChromeOption {
	return func(l *ChromeLauncher) {
		l.headless = headless
	}
}

// WithUserAgent sets a custom user agent. Empty keeps the browser default.
func WithUserAgent(ua string) ChromeOption {
	return func(l *ChromeLauncher) {
		l.userAgent = ua
	}
}

// WithExecPath sets the browser executable path.
func WithExecPath(path string) ChromeOption {
	return func(l *ChromeLauncher) {
		l.execPath = path
	}
}

// WithLogf sets the sink for chromedp log output. The default discards it.
func WithLogf(logf func(string, ...any)) ChromeOption {
	return func(l *ChromeLauncher) {
		if logf != nil {
			l.logf = logf
		}
	}
}

// NewChromeLauncher creates a launcher for headless Chrome.
func NewChromeLauncher(opts ...ChromeOption) *ChromeLauncher {
	l := &ChromeLauncher{
		headless: true,
		logf:     func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// allocatorOptions builds the exec allocator flags for this launcher.
func (l *ChromeLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := make([]chromedp.ExecAllocatorOption, 0, len(chromedp.DefaultExecAllocatorOptions)+6)
	opts = append(opts, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", l.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if l.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.userAgent))
	}
	if l.execPath != "" {
		opts = append(opts, chromedp.ExecPath(l.execPath))
	}
	return opts
}

// Launch starts a browser process. The process outlives ctx and is stopped
// only by Session.Close.
func (l *ChromeLauncher) Launch(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := context.WithoutCancel(ctx)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(base, l.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(l.logf),
		chromedp.WithErrorf(l.logf),
	)

	// The first Run starts the process. It must use browserCtx itself:
	// a derived context with a deadline would kill the browser when it expires.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &chromeSession{
		ctx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}, nil
}

type chromeSession struct {
	ctx    context.Context //nolint:containedctx // chromedp keeps the browser handle in a context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewPage opens a new tab in the running browser.
func (s *chromeSession) NewPage(ctx context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(s.ctx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return &chromePage{ctx: tabCtx, cancel: cancelTab}, nil
}

// Close shuts the browser down.
func (s *chromeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	return nil
}

type chromePage struct {
	ctx       context.Context //nolint:containedctx // chromedp keeps the tab handle in a context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// bind derives a context from the tab context that is also cancelled when
// ctx is done and carries ctx's deadline. Cancelling it does not close the tab.
func (p *chromePage) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(p.ctx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		parentCancel := cancel
		cancel = func() {
			cancelDeadline()
			parentCancel()
		}
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := p.bind(ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and returns the main-document response.
func (p *chromePage) Navigate(ctx context.Context, url string) (*Response, error) {
	runCtx, cancel := p.bind(ctx)
	defer cancel()

	var resp *network.Response
	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}

	out := &Response{URL: url}
	if resp != nil {
		out.Status = int(resp.Status)
		if resp.URL != "" {
			out.URL = resp.URL
		}
	}

	var location string
	if err := chromedp.Run(runCtx, chromedp.Location(&location)); err == nil && location != "" {
		out.URL = location
	}
	return out, nil
}

// WaitReady blocks until an element matching selector exists.
func (p *chromePage) WaitReady(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// Title returns the document title.
func (p *chromePage) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, chromedp.Title(&title))
	return title, err
}

// URL returns the current document URL.
func (p *chromePage) URL(ctx context.Context) (string, error) {
	var location string
	err := p.run(ctx, chromedp.Location(&location))
	return location, err
}

// HTML returns the serialized document.
func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// InnerText returns the rendered text of the document body.
func (p *chromePage) InnerText(ctx context.Context) (string, error) {
	var text string
	err := p.run(ctx, chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text))
	return text, err
}

// Close closes the tab.
func (p *chromePage) Close() error {
	p.closeOnce.Do(p.cancel)
	return nil
}
