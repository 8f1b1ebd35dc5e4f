package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// RunMode bounds the total number of loop iterations.
type RunMode string

// Supported run modes.
const (
	// ModeDevelopment caps a run at DevelopmentCrawlLimit domains.
	ModeDevelopment RunMode = "development"

	// ModeProduction runs until the queue is empty or CrawlLimit is reached.
	ModeProduction RunMode = "production"
)

// PageStrategy selects which page of a domain is treated as primary content.
type PageStrategy string

// Supported page strategies.
const (
	// StrategyAboutPrimary probes about-page candidates first and falls back
	// to the homepage when none validates.
	StrategyAboutPrimary PageStrategy = "about-primary"

	// StrategyHomepagePrimary always classifies the homepage and keeps a valid
	// about page as supplementary content only.
	StrategyHomepagePrimary PageStrategy = "homepage-primary"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Default configuration values.
const (
	// Unlimited is the CrawlLimit value that disables the limit.
	Unlimited = -1

	// DevelopmentCrawlLimit is the maximum number of domains a development run claims.
	DevelopmentCrawlLimit = 10

	// DefaultBatchSize is the number of domains processed per browser session
	// before the session is recycled.
	DefaultBatchSize = 20

	// DefaultWorkers is the number of independent ingestion loops per process.
	DefaultWorkers = 1

	// DefaultNavigationTimeout bounds homepage navigation.
	DefaultNavigationTimeout = 15 * time.Second

	// DefaultAboutProbeTimeout bounds each about-page candidate navigation.
	DefaultAboutProbeTimeout = 10 * time.Second

	// DefaultBodyWaitTimeout bounds the wait for the document body.
	DefaultBodyWaitTimeout = 10 * time.Second

	// DefaultClassifyTimeout bounds one classification call.
	DefaultClassifyTimeout = 60 * time.Second

	// DefaultClassifyAttempts is the number of classification calls per domain.
	DefaultClassifyAttempts = 1

	// DefaultMaxTokens caps the number of content tokens per page.
	DefaultMaxTokens = 500

	// DefaultModel is the classification model.
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultMaxResponseTokens caps the classifier response length.
	DefaultMaxResponseTokens = 1024

	// DefaultTemperature keeps classifier output close to deterministic.
	DefaultTemperature = 0.1

	// DefaultUserAgent is sent by the browser session. Empty keeps the browser default.
	DefaultUserAgent = ""

	// AppName is the application name used for XDG directory paths.
	AppName = "domainscan"
)

// DefaultAboutPaths are the about-page candidates probed in order.
func DefaultAboutPaths() []string {
	return []string{"/about", "/about-us", "/about.html"}
}

// Config holds all configuration options for domainscan.
// It is populated from defaults, the config file, the environment and CLI
// flags (in that order) and passed explicitly to every component.
type Config struct {
	// Mode bounds the total number of loop iterations.
	Mode RunMode

	// CrawlLimit is the maximum number of domains to claim. Unlimited (-1)
	// disables the limit. In development mode the effective limit is at most
	// DevelopmentCrawlLimit.
	CrawlLimit int

	// BatchSize is the number of domains processed per browser session.
	BatchSize int

	// Workers is the number of independent ingestion loops in this process.
	// Each worker owns its own browser session and coordinates with others
	// only through the queue claim.
	Workers int

	// Strategy selects the page-selection policy.
	Strategy PageStrategy

	// AboutPaths are the about-page candidates, probed in order.
	AboutPaths []string

	// NavigationTimeout bounds homepage navigation.
	NavigationTimeout time.Duration

	// AboutProbeTimeout bounds each about-page candidate navigation.
	AboutProbeTimeout time.Duration

	// BodyWaitTimeout bounds the wait for the document body.
	BodyWaitTimeout time.Duration

	// ClassifyTimeout bounds one classification call.
	ClassifyTimeout time.Duration

	// ClassifyAttempts is the number of classification calls made for one
	// domain before it is recorded as failed.
	ClassifyAttempts int

	// MaxTokens caps the number of content tokens extracted per page.
	MaxTokens int

	// Backend is the storage backend: postgres or sqlite.
	Backend string

	// DSN is the PostgreSQL connection string.
	DSN string

	// DBDir is the directory of the SQLite database file.
	DBDir string

	// Headless runs the browser without a window.
	Headless bool

	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string

	// BrowserPath is the path of the Chrome/Chromium executable. Empty lets
	// chromedp locate it.
	BrowserPath string

	// Model is the classification model name.
	Model string

	// APIKey authenticates classification calls.
	APIKey string

	// MaxResponseTokens caps the classifier response length.
	MaxResponseTokens int

	// Temperature is the classifier sampling temperature.
	Temperature float64

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is json or text.
	LogFormat string

	// ConfigFilePath is the path of the YAML configuration file, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Mode:              ModeDevelopment,
		CrawlLimit:        Unlimited,
		BatchSize:         DefaultBatchSize,
		Workers:           DefaultWorkers,
		Strategy:          StrategyAboutPrimary,
		AboutPaths:        DefaultAboutPaths(),
		NavigationTimeout: DefaultNavigationTimeout,
		AboutProbeTimeout: DefaultAboutProbeTimeout,
		BodyWaitTimeout:   DefaultBodyWaitTimeout,
		ClassifyTimeout:   DefaultClassifyTimeout,
		ClassifyAttempts:  DefaultClassifyAttempts,
		MaxTokens:         DefaultMaxTokens,
		Backend:           BackendPostgres,
		DBDir:             XDGDataDir(),
		Headless:          true,
		UserAgent:         DefaultUserAgent,
		Model:             DefaultModel,
		MaxResponseTokens: DefaultMaxResponseTokens,
		Temperature:       DefaultTemperature,
		LogFormat:         LogFormatJSON,
	}
}

// EffectiveLimit returns the number of domains a run may claim, or Unlimited.
// Development mode caps the configured limit at DevelopmentCrawlLimit.
func (c *Config) EffectiveLimit() int {
	if c.Mode != ModeDevelopment {
		return c.CrawlLimit
	}
	if c.CrawlLimit == Unlimited || c.CrawlLimit > DevelopmentCrawlLimit {
		return DevelopmentCrawlLimit
	}
	return c.CrawlLimit
}

// XDGDataDir returns the XDG data directory for domainscan.
// On Linux: ~/.local/share/domainscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for domainscan.
// On Linux: ~/.config/domainscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package sentinel errors.
func (c *Config) Validate() error {
	if c.Mode != ModeDevelopment && c.Mode != ModeProduction {
		return ErrInvalidRunMode
	}

	if c.CrawlLimit < Unlimited {
		return ErrInvalidCrawlLimit
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Strategy != StrategyAboutPrimary && c.Strategy != StrategyHomepagePrimary {
		return ErrInvalidStrategy
	}

	if len(c.AboutPaths) == 0 || slices.Contains(c.AboutPaths, "") {
		return ErrNoAboutPaths
	}

	for _, d := range []time.Duration{
		c.NavigationTimeout, c.AboutProbeTimeout, c.BodyWaitTimeout, c.ClassifyTimeout,
	} {
		if d <= 0 {
			return ErrInvalidTimeout
		}
	}

	if c.ClassifyAttempts <= 0 {
		return ErrInvalidClassifyAttempts
	}

	if c.MaxTokens <= 0 {
		return ErrInvalidMaxTokens
	}

	switch c.Backend {
	case BackendPostgres:
		if c.DSN == "" {
			return ErrMissingDSN
		}
	case BackendSQLite:
	default:
		return ErrInvalidBackend
	}

	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatText {
		return ErrInvalidLogFormat
	}

	return nil
}
