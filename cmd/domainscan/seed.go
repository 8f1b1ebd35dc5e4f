package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/publicsuffix"

	"github.com/nao1215/domainscan/internal/model"
)

// NewSeedCmd creates the seed command.
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [domain...]",
		Short: "Add domains to the ingestion queue",
		Long: `Seed inserts domains into the ingestion queue. Domains already queued are
left untouched. Values may be bare host names or URLs; they are reduced to a
lower-case host name. Public suffixes themselves (e.g. "co.uk") are rejected.

Examples:
  domainscan seed example.com https://www.example.org/about

  # One domain per line; blank lines and lines starting with # are skipped
  domainscan seed --file domains.txt
  cat domains.txt | domainscan seed --file -`,
		Args: cobra.ArbitraryArgs,
		RunE: runSeedCmd,
	}

	cmd.Flags().StringP("file", "f", "", `File with one domain per line ("-" for stdin)`)
	return cmd
}

// runSeedCmd executes the seed command.
func runSeedCmd(cmd *cobra.Command, args []string) error {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}

	raw := append([]string{}, args...)
	if file != "" {
		lines, err := readDomainFile(cmd, file)
		if err != nil {
			return err
		}
		raw = append(raw, lines...)
	}
	if len(raw) == 0 {
		return errors.New("no domains provided (pass them as arguments or with --file)")
	}

	items, rejected := buildItems(raw, time.Now().UTC())
	for _, r := range rejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipping %q: %v\n", r.value, r.err)
	}
	if len(items) == 0 {
		return errors.New("no valid domains to queue")
	}

	store, _, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Enqueue(cmd.Context(), items...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Queued %d new domain(s), %d already queued\n", n, len(items)-n)
	return nil
}

// readDomainFile reads domains from path, or from stdin when path is "-".
func readDomainFile(cmd *cobra.Command, path string) ([]string, error) {
	if path == "-" {
		return readDomains(cmd.InOrStdin())
	}
	f, err := os.Open(path) //nolint:gosec // user-provided input file
	if err != nil {
		return nil, fmt.Errorf("failed to open domain file: %w", err)
	}
	defer f.Close()
	return readDomains(f)
}

// readDomains returns the non-empty, non-comment lines of r.
func readDomains(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read domains: %w", err)
	}
	return out, nil
}

type rejectedDomain struct {
	value string
	err   error
}

var errNotRegistrable = errors.New("not a registrable domain")

// buildItems normalizes raw values into ingestion items discovered at now.
// Duplicates after normalization are dropped.
func buildItems(raw []string, now time.Time) ([]model.IngestionItem, []rejectedDomain) {
	seen := make(map[string]struct{}, len(raw))
	items := make([]model.IngestionItem, 0, len(raw))
	var rejected []rejectedDomain

	for _, value := range raw {
		name := model.NormalizeDomain(value)
		if name == "" || !strings.Contains(name, ".") {
			rejected = append(rejected, rejectedDomain{value, errNotRegistrable})
			continue
		}
		if _, err := publicsuffix.EffectiveTLDPlusOne(name); err != nil {
			rejected = append(rejected, rejectedDomain{value, fmt.Errorf("%w: %w", errNotRegistrable, err)})
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		suffix, _ := publicsuffix.PublicSuffix(name)
		items = append(items, model.IngestionItem{
			DomainName:   name,
			PublicSuffix: suffix,
			DiscoveredAt: now,
		})
	}
	return items, rejected
}
