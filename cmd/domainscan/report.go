package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/domainscan/internal/model"
	"github.com/nao1215/domainscan/internal/report"
)

// Report formats.
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// defaultReportLimit is the number of domains and failures listed by default.
const defaultReportLimit = 100

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render classified domains and failures",
		Long: `Report renders the queue counters, the most recently classified domains and
the most recent failures as text, Markdown or JSON.

Examples:
  domainscan report
  domainscan report --format markdown -o reports/latest.md
  domainscan report --format json --limit 0 > all.json`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("format", "F", formatText, "Output format: text, markdown or json")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file (creates directories if needed)")
	cmd.Flags().IntP("limit", "n", defaultReportLimit, "Maximum domains and failures listed (0 for all)")
	cmd.Flags().Bool("details", false, "Include the classifier's summary of every domain")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	format, err := flags.GetString("format")
	if err != nil {
		return err
	}
	output, err := flags.GetString("output")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	details, err := flags.GetBool("details")
	if err != nil {
		return err
	}

	writerFor, err := reportWriter(strings.ToLower(format), details)
	if err != nil {
		return err
	}

	store, _, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		stats    *model.QueueStats
		domains  []*model.DomainRecord
		failures []*model.FailureRecord
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() (err error) {
		stats, err = store.Stats(ctx)
		return err
	})
	g.Go(func() (err error) {
		domains, err = store.ListDomains(ctx, limit)
		return err
	})
	g.Go(func() (err error) {
		failures, err = store.ListFailures(ctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	summary := report.NewSummary(*stats, domains, failures, time.Now())
	return writeReport(cmd.OutOrStdout(), output, func(w io.Writer) error {
		_, err := writerFor(w).Write(summary)
		return err
	})
}

// reportWriter returns a constructor of the writer for format.
func reportWriter(format string, details bool) (func(io.Writer) report.Writer, error) {
	switch format {
	case formatText:
		return func(w io.Writer) report.Writer {
			return report.NewSimpleWriter(w, report.WithVerbose(details))
		}, nil
	case formatMarkdown:
		return func(w io.Writer) report.Writer {
			return report.NewMarkdownWriter(w, report.WithMarkdownDetails(details))
		}, nil
	case formatJSON:
		return func(w io.Writer) report.Writer {
			return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
		}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q: must be text, markdown or json", format)
	}
}

// writeReport runs write against path, or against stdout when path is empty.
func writeReport(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-provided output path
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
