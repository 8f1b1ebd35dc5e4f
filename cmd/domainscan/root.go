package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/domainscan/internal/config"
	"github.com/nao1215/domainscan/internal/database"
	"github.com/nao1215/domainscan/internal/log"
)

// NewRootCmd creates the root command for domainscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domainscan",
		Short: "Classify the content of discovered domains",
		Long: `domainscan drains a shared queue of discovered domain names. For every
domain it loads the homepage (and about page) in a headless browser, extracts
the main text, asks a language model for a structured classification, and
stores the result.

Configuration is read from defaults, the config file (.domainscan), .env and
the environment (POSTGRES_URL, ENVIRONMENT, ANTHROPIC_API_KEY, DOMAINSCAN_*),
and finally command-line flags. Later sources win.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.StringP("config", "c", "",
		"Configuration file path (default: .domainscan in current, XDG config or home directory)")
	flags.String("env-file", ".env", "Dotenv file loaded into the environment if it exists")
	flags.String("log-format", config.LogFormatJSON, "Log format: json or text")
	flags.String("backend", config.BackendPostgres, "Storage backend: postgres or sqlite")
	flags.String("dsn", "", "PostgreSQL connection string (default: $POSTGRES_URL)")
	flags.String("db-dir", config.XDGDataDir(), "Directory of the SQLite database")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewReleaseCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// changed reports whether the user set flag name on the command line.
func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// stringFlag returns the value of a string flag, or "" if it is not defined.
func stringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	return cmd.Flags().GetString(name)
}

// loadConfig builds the configuration of cmd: defaults, then the config
// file, then .env and the environment, then the global flags.
// Command-specific flags are applied by the command itself.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	path, err := stringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	found := config.FindConfigFile(path)
	switch {
	case found != "":
		f, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := cfg.ApplyFile(f); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", found, err)
		}
		cfg.ConfigFilePath = found
	case path != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
	}

	envFile, err := stringFlag(cmd, "env-file")
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if changed(cmd, "verbose") {
		if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
			return nil, err
		}
	}
	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"log-format", &cfg.LogFormat},
		{"backend", &cfg.Backend},
		{"dsn", &cfg.DSN},
		{"db-dir", &cfg.DBDir},
	}
	for _, f := range stringFlags {
		if !changed(cmd, f.name) {
			continue
		}
		if *f.dst, err = cmd.Flags().GetString(f.name); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// newLogger creates the secure logger of cfg writing to the command's stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogFormat)
}

// errStorageConfig marks configuration problems of the storage commands.
var errStorageConfig = errors.New("storage configuration error")

// openStore loads the configuration of cmd and opens its store. The
// storage commands only need the storage settings to be valid.
func openStore(ctx context.Context, cmd *cobra.Command) (database.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	switch cfg.Backend {
	case config.BackendPostgres:
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("%w: %w", errStorageConfig, config.ErrMissingDSN)
		}
	case config.BackendSQLite:
	default:
		return nil, nil, fmt.Errorf("%w: %w", errStorageConfig, config.ErrInvalidBackend)
	}

	store, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}
