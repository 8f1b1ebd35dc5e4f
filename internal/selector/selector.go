package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/nao1215/domainscan/internal/browser"
	"github.com/nao1215/domainscan/internal/config"
	"github.com/nao1215/domainscan/internal/model"
)

// minAboutTextLength is the body text length an about page must exceed.
const minAboutTextLength = 100

// Extractor turns the document currently loaded in a page into content.
type Extractor interface {
	Extract(ctx context.Context, page browser.Page) (*model.ExtractedContent, error)
}

// Selection is the content chosen for one domain.
type Selection struct {
	// Primary is the content the classification is based on.
	Primary *model.ExtractedContent

	// Supplementary is the about-page content under homepage-primary, if any.
	Supplementary *model.ExtractedContent

	// HasAboutPage reports whether a valid about page was found.
	HasAboutPage bool

	// AboutURL is the final URL of the valid about page.
	AboutURL string
}

// Selector loads the pages of a domain according to a PageStrategy.
type Selector struct {
	extractor    Extractor
	strategy     config.PageStrategy
	aboutPaths   []string
	navTimeout   time.Duration
	probeTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithStrategy sets the page-selection strategy.
func WithStrategy(strategy config.PageStrategy) Option {
	return func(s *Selector) {
		s.strategy = strategy
	}
}

// WithAboutPaths sets the about-page candidates, probed in order.
func WithAboutPaths(paths []string) Option {
	return func(s *Selector) {
		if len(paths) > 0 {
			s.aboutPaths = paths
		}
	}
}

// WithNavigationTimeout bounds homepage navigation.
func WithNavigationTimeout(d time.Duration) Option {
	return func(s *Selector) {
		s.navTimeout = d
	}
}

// WithProbeTimeout bounds each about-candidate navigation.
func WithProbeTimeout(d time.Duration) Option {
	return func(s *Selector) {
		s.probeTimeout = d
	}
}

// WithLogger sets the logger used for candidate diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Selector using extractor for every chosen page.
func New(extractor Extractor, opts ...Option) *Selector {
	s := &Selector{
		extractor:    extractor,
		strategy:     config.StrategyAboutPrimary,
		aboutPaths:   config.DefaultAboutPaths(),
		navTimeout:   config.DefaultNavigationTimeout,
		probeTimeout: config.DefaultAboutProbeTimeout,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig creates a Selector from the run configuration.
func NewFromConfig(cfg *config.Config, extractor Extractor, logger *slog.Logger) *Selector {
	return New(extractor,
		WithStrategy(cfg.Strategy),
		WithAboutPaths(cfg.AboutPaths),
		WithNavigationTimeout(cfg.NavigationTimeout),
		WithProbeTimeout(cfg.AboutProbeTimeout),
		WithLogger(logger),
	)
}

// Select loads and extracts the pages of domain using page.
func (s *Selector) Select(ctx context.Context, page browser.Page, domain string) (*Selection, error) {
	switch s.strategy {
	case config.StrategyHomepagePrimary:
		return s.homepagePrimary(ctx, page, domain)
	case config.StrategyAboutPrimary, "":
		return s.aboutPrimary(ctx, page, domain)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidStrategy, s.strategy)
	}
}

func (s *Selector) aboutPrimary(ctx context.Context, page browser.Page, domain string) (*Selection, error) {
	sel := &Selection{}

	for _, candidate := range s.candidates(domain) {
		finalURL, ok := s.probe(ctx, page, domain, candidate)
		if !ok {
			continue
		}
		sel.HasAboutPage = true
		sel.AboutURL = finalURL

		content, err := s.extractor.Extract(ctx, page)
		if err == nil {
			sel.Primary = content
			return sel, nil
		}
		s.logger.Debug("about page extraction failed, using homepage",
			"domain", domain, "url", finalURL, "error", err)
		break
	}

	content, err := s.loadHomepage(ctx, page, domain)
	if err != nil {
		return nil, err
	}
	sel.Primary = content
	return sel, nil
}

func (s *Selector) homepagePrimary(ctx context.Context, page browser.Page, domain string) (*Selection, error) {
	content, err := s.loadHomepage(ctx, page, domain)
	if err != nil {
		return nil, err
	}
	sel := &Selection{Primary: content}

	for _, candidate := range s.candidates(domain) {
		finalURL, ok := s.probe(ctx, page, domain, candidate)
		if !ok {
			continue
		}
		sel.HasAboutPage = true
		sel.AboutURL = finalURL

		about, err := s.extractor.Extract(ctx, page)
		if err != nil {
			s.logger.Debug("supplementary about page extraction failed",
				"domain", domain, "url", finalURL, "error", err)
			break
		}
		sel.Supplementary = about
		break
	}
	return sel, nil
}

// loadHomepage navigates to the homepage and extracts it. Navigation errors
// and bad statuses are returned as browser.ErrNavigation.
func (s *Selector) loadHomepage(ctx context.Context, page browser.Page, domain string) (*model.ExtractedContent, error) {
	url := model.HomepageURL(domain)

	navCtx, cancel := context.WithTimeout(ctx, s.navTimeout)
	resp, err := page.Navigate(navCtx, url)
	cancel()
	if err != nil {
		if errors.Is(err, browser.ErrNavigation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", browser.ErrNavigation, url, err)
	}
	if err := resp.CheckStatus(); err != nil {
		return nil, err
	}

	return s.extractor.Extract(ctx, page)
}

// candidates returns the absolute about-page URLs of domain.
func (s *Selector) candidates(domain string) []string {
	home := model.HomepageURL(domain)
	out := make([]string, 0, len(s.aboutPaths))
	for _, p := range s.aboutPaths {
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, home+p)
	}
	return out
}

// probe navigates to candidate and reports whether it is a valid about page,
// returning the final URL. Every failure is logged and reported as invalid.
func (s *Selector) probe(ctx context.Context, page browser.Page, domain, candidate string) (string, bool) {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	resp, err := page.Navigate(probeCtx, candidate)
	if err != nil {
		s.logger.Debug("about candidate failed", "domain", domain, "url", candidate, "error", err)
		return "", false
	}
	if !resp.OK() {
		s.logger.Debug("about candidate rejected", "domain", domain, "url", candidate, "status", resp.Status)
		return "", false
	}

	finalURL := resp.URL
	if current, err := page.URL(probeCtx); err == nil && current != "" {
		finalURL = current
	}
	if token := pathToken(candidate); token != "" && !strings.Contains(strings.ToLower(finalURL), token) {
		s.logger.Debug("about candidate redirected away", "domain", domain, "url", candidate, "final_url", finalURL)
		return "", false
	}

	text, err := page.InnerText(probeCtx)
	if err != nil {
		s.logger.Debug("about candidate text unavailable", "domain", domain, "url", candidate, "error", err)
		return "", false
	}
	if len([]rune(strings.TrimSpace(text))) <= minAboutTextLength {
		s.logger.Debug("about candidate too short", "domain", domain, "url", candidate)
		return "", false
	}
	return finalURL, true
}

// pathToken returns the word a final URL must contain for candidate to count
// as reached: the leading letters and digits of its last path segment,
// lower-cased. "/about-us" and "/about.html" give "about", "/company" gives
// "company". An empty result disables the check.
func pathToken(candidate string) string {
	p := candidate
	if u, err := url.Parse(candidate); err == nil {
		p = u.Path
	}
	segment := strings.ToLower(path.Base(strings.TrimRight(p, "/")))
	end := strings.IndexFunc(segment, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if end >= 0 {
		segment = segment[:end]
	}
	return segment
}
