package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/domainscan/internal/browser"
	"github.com/nao1215/domainscan/internal/classify"
	"github.com/nao1215/domainscan/internal/config"
	"github.com/nao1215/domainscan/internal/database"
	"github.com/nao1215/domainscan/internal/extract"
	"github.com/nao1215/domainscan/internal/pipeline"
	"github.com/nao1215/domainscan/internal/selector"
)

// errMissingAPIKey is returned by run when no classifier credentials are set.
var errMissingAPIKey = errors.New("missing classifier API key: set ANTHROPIC_API_KEY")

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Classify queued domains",
		Long: `Run claims domains from the ingestion queue one at a time, loads each
domain in a headless browser, classifies its content and stores the result.

The loop stops when the queue is empty or the crawl limit is reached.
Development mode (the default unless ENVIRONMENT=production) claims at most
10 domains. A failing domain is recorded and never stops the run.

Examples:
  # Process up to 100 domains in production mode
  domainscan run --mode production --limit 100

  # Classify the homepage and use the about page only as context
  domainscan run --strategy homepage-primary

  # Four workers against a local SQLite queue
  domainscan run --backend sqlite --workers 4`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	flags := cmd.Flags()
	flags.IntP("limit", "l", config.Unlimited, "Maximum number of domains to claim (-1 for unlimited)")
	flags.String("mode", string(config.ModeDevelopment), "Run mode: development or production")
	flags.IntP("batch-size", "b", config.DefaultBatchSize, "Domains per browser session before it is recycled")
	flags.IntP("workers", "w", config.DefaultWorkers, "Number of concurrent ingestion loops")
	flags.StringP("strategy", "s", string(config.StrategyAboutPrimary),
		"Page strategy: about-primary or homepage-primary")
	flags.StringSlice("about-path", config.DefaultAboutPaths(), "About-page candidate paths, probed in order")
	flags.Bool("headless", true, "Run the browser without a window")
	flags.String("user-agent", config.DefaultUserAgent, "Browser user agent (default: browser default)")
	flags.String("browser-path", "", "Chrome/Chromium executable (default: auto-detect)")
	flags.Duration("nav-timeout", config.DefaultNavigationTimeout, "Homepage navigation timeout")
	flags.Duration("about-timeout", config.DefaultAboutProbeTimeout, "Timeout per about-page candidate")
	flags.Duration("body-timeout", config.DefaultBodyWaitTimeout, "Timeout waiting for the document body")
	flags.Duration("classify-timeout", config.DefaultClassifyTimeout, "Timeout per classification call")
	flags.Int("attempts", config.DefaultClassifyAttempts, "Classification calls per domain before it fails")
	flags.Int("max-tokens", config.DefaultMaxTokens, "Maximum content tokens extracted per page")
	flags.String("model", config.DefaultModel, "Classification model")

	return cmd
}

// applyRunFlags overlays the run flags the user set onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	ints := []struct {
		name string
		dst  *int
	}{
		{"limit", &cfg.CrawlLimit},
		{"batch-size", &cfg.BatchSize},
		{"workers", &cfg.Workers},
		{"attempts", &cfg.ClassifyAttempts},
		{"max-tokens", &cfg.MaxTokens},
	}
	for _, f := range ints {
		if changed(cmd, f.name) {
			if *f.dst, err = flags.GetInt(f.name); err != nil {
				return err
			}
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"nav-timeout", &cfg.NavigationTimeout},
		{"about-timeout", &cfg.AboutProbeTimeout},
		{"body-timeout", &cfg.BodyWaitTimeout},
		{"classify-timeout", &cfg.ClassifyTimeout},
	}
	for _, f := range durations {
		if changed(cmd, f.name) {
			if *f.dst, err = flags.GetDuration(f.name); err != nil {
				return err
			}
		}
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"user-agent", &cfg.UserAgent},
		{"browser-path", &cfg.BrowserPath},
		{"model", &cfg.Model},
	}
	for _, f := range strs {
		if changed(cmd, f.name) {
			if *f.dst, err = flags.GetString(f.name); err != nil {
				return err
			}
		}
	}

	if changed(cmd, "mode") {
		mode, err := flags.GetString("mode")
		if err != nil {
			return err
		}
		cfg.Mode = config.RunMode(strings.ToLower(mode))
	}
	if changed(cmd, "strategy") {
		strategy, err := flags.GetString("strategy")
		if err != nil {
			return err
		}
		cfg.Strategy = config.PageStrategy(strings.ToLower(strategy))
	}
	if changed(cmd, "about-path") {
		if cfg.AboutPaths, err = flags.GetStringSlice("about-path"); err != nil {
			return err
		}
	}
	if changed(cmd, "headless") {
		if cfg.Headless, err = flags.GetBool("headless"); err != nil {
			return err
		}
	}
	return nil
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.APIKey == "" {
		return errMissingAPIKey
	}

	logger := newLogger(cmd, cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	logger.Info("starting run",
		"mode", cfg.Mode,
		"limit", cfg.EffectiveLimit(),
		"strategy", cfg.Strategy,
		"backend", cfg.Backend,
		"dsn", cfg.DSN,
		"config_file", cfg.ConfigFilePath,
	)

	stats, err := pipeline.RunWorkers(ctx, cfg.Workers, cfg.EffectiveLimit(), newWorkerFactory(cfg, store, logger), logger)
	fmt.Fprintf(cmd.OutOrStdout(), "Claimed %d domain(s): %d classified, %d failed (%d browser session(s))\n",
		stats.Claimed, stats.Succeeded, stats.Failed, stats.SessionsOpened)

	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		logger.Warn("run interrupted; claimed domains stay locked until released")
		return nil
	}
	return err
}

// newWorkerFactory builds one orchestrator per worker. Workers share the
// store, the extractor and the classifier; each owns its browser.
func newWorkerFactory(cfg *config.Config, store database.Store, logger *slog.Logger) pipeline.WorkerFactory {
	ext := extract.NewFromConfig(cfg)
	classifier := classify.NewClassifierFromConfig(cfg, logger)
	chromeLog := logger.With("component", "chromedp")

	return func(id int) (*pipeline.Orchestrator, error) {
		wlog := logger.With("worker", id)
		launcher := browser.NewChromeLauncher(
			browser.WithHeadless(cfg.Headless),
			browser.WithUserAgent(cfg.UserAgent),
			browser.WithExecPath(cfg.BrowserPath),
			browser.WithLogf(func(format string, args ...any) {
				chromeLog.Debug(fmt.Sprintf(format, args...), "worker", id)
			}),
		)

		sel := selector.NewFromConfig(cfg, ext, wlog)
		p := pipeline.NewDomainPipeline(sel, classifier, store, cfg.ClassifyAttempts, wlog)
		sessions := pipeline.NewSessionManager(launcher, cfg.BatchSize, wlog)
		return pipeline.NewOrchestrator(store, store, sessions, p, pipeline.WithOrchestratorLogger(logger)), nil
	}
}
