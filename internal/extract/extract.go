package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/domainscan/internal/browser"
	"github.com/nao1215/domainscan/internal/config"
	"github.com/nao1215/domainscan/internal/model"
	"github.com/nao1215/domainscan/internal/tokens"
)

const (
	// MinContentLength is the minimum number of characters of cleaned text.
	MinContentLength = 50

	// DefaultDigestWords is the word budget of the metadata digest.
	DefaultDigestWords = 60
)

// Extractor reads the current document of a page and normalizes it.
type Extractor struct {
	tokens      tokens.Extractor
	language    LanguageDetector
	maxTokens   int
	digestWords int
	bodyTimeout time.Duration
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTokenExtractor replaces the token cascade.
func WithTokenExtractor(t tokens.Extractor) Option {
	return func(e *Extractor) {
		if t != nil {
			e.tokens = t
		}
	}
}

// WithLanguageDetector replaces the text-based language detector.
// A nil detector disables detection.
func WithLanguageDetector(d LanguageDetector) Option {
	return func(e *Extractor) {
		e.language = d
	}
}

// WithMaxTokens caps the number of tokens per page.
func WithMaxTokens(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithDigestWords sets the word budget of the metadata digest.
func WithDigestWords(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.digestWords = n
		}
	}
}

// WithBodyTimeout bounds the wait for the document body.
func WithBodyTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.bodyTimeout = d
		}
	}
}

// New creates an Extractor with the token cascade and lingua detection.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		maxTokens:   config.DefaultMaxTokens,
		digestWords: DefaultDigestWords,
		bodyTimeout: config.DefaultBodyWaitTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tokens == nil {
		e.tokens = tokens.NewCascade()
	}
	return e
}

// NewFromConfig creates an Extractor from the run configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) *Extractor {
	base := []Option{
		WithMaxTokens(cfg.MaxTokens),
		WithBodyTimeout(cfg.BodyWaitTimeout),
		WithLanguageDetector(NewLinguaDetector()),
	}
	return New(append(base, opts...)...)
}

// Extract waits for the body of the loaded document and extracts it.
func (e *Extractor) Extract(ctx context.Context, page browser.Page) (*model.ExtractedContent, error) {
	waitCtx, cancel := context.WithTimeout(ctx, e.bodyTimeout)
	err := page.WaitReady(waitCtx, "body")
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: body not ready: %w", browser.ErrNavigation, err)
	}

	title, err := page.Title(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read title: %w", err)
	}
	url, err := page.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read url: %w", err)
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return e.FromHTML(url, title, html)
}

// FromHTML extracts content from a serialized document. It does no I/O.
func (e *Extractor) FromHTML(pageURL, title, html string) (*model.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	// Meta tags and the lang attribute live outside the removed elements, but
	// read them first so nothing below can disturb them.
	declared := declaredLanguage(doc)
	digest := metadataDigest(doc, declared, e.digestWords)

	text := CleanText(mainText(doc, html, pageURL))
	if n := len([]rune(text)); n < MinContentLength {
		return nil, fmt.Errorf("%w: %d characters", ErrContentTooShort, n)
	}

	lang := declared
	if lang == "" && e.language != nil {
		lang = e.language.Detect(text)
	}

	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return &model.ExtractedContent{
		Title:          strings.TrimSpace(title),
		URL:            pageURL,
		CleanedText:    text,
		Tokens:         e.tokens.Extract(text, e.maxTokens),
		MetadataDigest: digest,
		Language:       lang,
		HasComments:    HasComments(html),
	}, nil
}
