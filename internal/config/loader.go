package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".domainscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Environment variable names read by ApplyEnv.
const (
	EnvPostgresURL = "POSTGRES_URL"
	EnvEnvironment = "ENVIRONMENT"
	EnvAPIKey      = "ANTHROPIC_API_KEY"
	EnvCrawlLimit  = "DOMAINSCAN_CRAWL_LIMIT"
	EnvBatchSize   = "DOMAINSCAN_BATCH_SIZE"
	EnvStrategy    = "DOMAINSCAN_STRATEGY"
	EnvBackend     = "DOMAINSCAN_BACKEND"
	EnvModel       = "DOMAINSCAN_MODEL"
	EnvLogFormat   = "DOMAINSCAN_LOG_FORMAT"
)

// File represents the structure of the YAML configuration file.
// Zero values mean "not set" and leave the current configuration untouched.
type File struct {
	Mode       string   `yaml:"mode,omitempty"`
	CrawlLimit *int     `yaml:"crawlLimit,omitempty"`
	BatchSize  int      `yaml:"batchSize,omitempty"`
	Workers    int      `yaml:"workers,omitempty"`
	Strategy   string   `yaml:"strategy,omitempty"`
	AboutPaths []string `yaml:"aboutPaths,omitempty"`
	MaxTokens  int      `yaml:"maxTokens,omitempty"`

	Timeouts TimeoutsFile `yaml:"timeouts,omitempty"`
	Storage  StorageFile  `yaml:"storage,omitempty"`
	Browser  BrowserFile  `yaml:"browser,omitempty"`
	Classify ClassifyFile `yaml:"classifier,omitempty"`
	Log      LogFile      `yaml:"log,omitempty"`
}

// TimeoutsFile holds per-step timeouts as Go duration strings.
type TimeoutsFile struct {
	Navigation string `yaml:"navigation,omitempty"`
	AboutProbe string `yaml:"aboutProbe,omitempty"`
	BodyWait   string `yaml:"bodyWait,omitempty"`
	Classify   string `yaml:"classify,omitempty"`
}

// StorageFile selects and configures the storage backend.
type StorageFile struct {
	Backend string `yaml:"backend,omitempty"`
	DSN     string `yaml:"dsn,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// BrowserFile configures the browser session.
type BrowserFile struct {
	Headless  *bool  `yaml:"headless,omitempty"`
	UserAgent string `yaml:"userAgent,omitempty"`
	Path      string `yaml:"path,omitempty"`
}

// ClassifyFile configures the classification collaborator.
type ClassifyFile struct {
	Model             string   `yaml:"model,omitempty"`
	MaxResponseTokens int      `yaml:"maxResponseTokens,omitempty"`
	Temperature       *float64 `yaml:"temperature,omitempty"`
	Attempts          int      `yaml:"attempts,omitempty"`
}

// LogFile configures logging.
type LogFile struct {
	Format  string `yaml:"format,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .domainscan in the current directory
// 3. config.yaml in the XDG config directory
// 4. .domainscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// ApplyFile overlays the non-zero values of f onto c.
func (c *Config) ApplyFile(f *File) error {
	if f == nil {
		return nil
	}

	if f.Mode != "" {
		c.Mode = RunMode(strings.ToLower(f.Mode))
	}
	if f.CrawlLimit != nil {
		c.CrawlLimit = *f.CrawlLimit
	}
	if f.BatchSize != 0 {
		c.BatchSize = f.BatchSize
	}
	if f.Workers != 0 {
		c.Workers = f.Workers
	}
	if f.Strategy != "" {
		c.Strategy = PageStrategy(strings.ToLower(f.Strategy))
	}
	if len(f.AboutPaths) > 0 {
		c.AboutPaths = f.AboutPaths
	}
	if f.MaxTokens != 0 {
		c.MaxTokens = f.MaxTokens
	}

	timeouts := []struct {
		raw string
		dst *time.Duration
	}{
		{f.Timeouts.Navigation, &c.NavigationTimeout},
		{f.Timeouts.AboutProbe, &c.AboutProbeTimeout},
		{f.Timeouts.BodyWait, &c.BodyWaitTimeout},
		{f.Timeouts.Classify, &c.ClassifyTimeout},
	}
	for _, t := range timeouts {
		if t.raw == "" {
			continue
		}
		d, err := time.ParseDuration(t.raw)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", t.raw, err)
		}
		*t.dst = d
	}

	if f.Storage.Backend != "" {
		c.Backend = strings.ToLower(f.Storage.Backend)
	}
	if f.Storage.DSN != "" {
		c.DSN = f.Storage.DSN
	}
	if f.Storage.Dir != "" {
		c.DBDir = f.Storage.Dir
	}

	if f.Browser.Headless != nil {
		c.Headless = *f.Browser.Headless
	}
	if f.Browser.UserAgent != "" {
		c.UserAgent = f.Browser.UserAgent
	}
	if f.Browser.Path != "" {
		c.BrowserPath = f.Browser.Path
	}

	if f.Classify.Model != "" {
		c.Model = f.Classify.Model
	}
	if f.Classify.MaxResponseTokens != 0 {
		c.MaxResponseTokens = f.Classify.MaxResponseTokens
	}
	if f.Classify.Temperature != nil {
		c.Temperature = *f.Classify.Temperature
	}
	if f.Classify.Attempts != 0 {
		c.ClassifyAttempts = f.Classify.Attempts
	}

	if f.Log.Format != "" {
		c.LogFormat = strings.ToLower(f.Log.Format)
	}
	if f.Log.Verbose {
		c.Verbose = true
	}

	return nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. lookup is usually
// os.LookupEnv; tests pass a map-backed function.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPostgresURL); ok && v != "" {
		c.DSN = v
	}
	if v, ok := lookup(EnvEnvironment); ok && v != "" {
		if strings.EqualFold(v, string(ModeProduction)) {
			c.Mode = ModeProduction
		} else {
			c.Mode = ModeDevelopment
		}
	}
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.APIKey = v
	}
	if v, ok := lookup(EnvCrawlLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCrawlLimit, err)
		}
		c.CrawlLimit = n
	}
	if v, ok := lookup(EnvBatchSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBatchSize, err)
		}
		c.BatchSize = n
	}
	if v, ok := lookup(EnvStrategy); ok && v != "" {
		c.Strategy = PageStrategy(strings.ToLower(v))
	}
	if v, ok := lookup(EnvBackend); ok && v != "" {
		c.Backend = strings.ToLower(v)
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Model = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	return nil
}
