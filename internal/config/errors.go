package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with errors.Is.
var (
	// ErrInvalidRunMode is returned when the run mode is neither development nor production.
	ErrInvalidRunMode = errors.New("invalid run mode: must be development or production")

	// ErrInvalidCrawlLimit is returned when the crawl limit is below -1.
	// -1 means unlimited, 0 means claim nothing.
	ErrInvalidCrawlLimit = errors.New("invalid crawl limit: must be -1 (unlimited) or non-negative")

	// ErrInvalidBatchSize is returned when the session recycle batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidWorkers is returned when the number of workers is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidTimeout is returned when any per-step timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidStrategy is returned for an unknown page-selection strategy.
	ErrInvalidStrategy = errors.New("invalid page strategy: must be about-primary or homepage-primary")

	// ErrInvalidBackend is returned for an unknown storage backend.
	ErrInvalidBackend = errors.New("invalid backend: must be postgres or sqlite")

	// ErrMissingDSN is returned when the postgres backend has no connection string.
	ErrMissingDSN = errors.New("missing postgres connection string: set POSTGRES_URL or --dsn")

	// ErrInvalidMaxTokens is returned when the content token cap is not positive.
	ErrInvalidMaxTokens = errors.New("invalid max tokens: must be positive")

	// ErrInvalidClassifyAttempts is returned when classify attempts is not positive.
	ErrInvalidClassifyAttempts = errors.New("invalid classify attempts: must be positive")

	// ErrNoAboutPaths is returned when the about-page candidate list is empty.
	ErrNoAboutPaths = errors.New("no about-page paths configured")

	// ErrInvalidLogFormat is returned for an unknown log format.
	ErrInvalidLogFormat = errors.New("invalid log format: must be json or text")
)
