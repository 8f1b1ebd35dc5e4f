package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs plain-text summaries for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have nothing to list.
	showEmpty bool

	// verbose adds the classifier's summary of each domain.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables per-domain summaries.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary as plain text.
func (w *SimpleWriter) Write(s *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, s)
	w.writeQueue(&sb, s)
	w.writeBreakdown(&sb, s)
	w.writeDomains(&sb, s)
	w.writeFailures(&sb, s)
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *Summary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    DOMAIN CLASSIFICATION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
	fmt.Fprintf(sb, "Generated: %s\n\n", s.GeneratedAt.Format(dateLayout))
}

func (w *SimpleWriter) writeQueue(sb *strings.Builder, s *Summary) {
	section(sb, "QUEUE")
	fmt.Fprintf(sb, "  PENDING:    %d\n", s.Queue.Pending)
	fmt.Fprintf(sb, "  LOCKED:     %d\n", s.Queue.Locked)
	fmt.Fprintf(sb, "  CLASSIFIED: %d\n", s.Queue.Classified)
	fmt.Fprintf(sb, "  FAILED:     %d\n", s.Queue.Failed)
	sb.WriteString("\n")
}

// writeBreakdown writes the content-type and language counts of the listed
// domains.
func (w *SimpleWriter) writeBreakdown(sb *strings.Builder, s *Summary) {
	if len(s.Domains) == 0 && !w.showEmpty {
		return
	}
	section(sb, "BREAKDOWN")

	sb.WriteString("  Content types:\n")
	for _, c := range s.ContentTypes() {
		fmt.Fprintf(sb, "    %-14s %d\n", c.Label, c.Count)
	}
	sb.WriteString("  Languages:\n")
	for _, c := range s.Languages() {
		fmt.Fprintf(sb, "    %-14s %d\n", c.Label, c.Count)
	}
	fmt.Fprintf(sb, "  About page:     %.0f%%\n\n", s.AboutPageRatio()*100)
}

func (w *SimpleWriter) writeDomains(sb *strings.Builder, s *Summary) {
	if len(s.Domains) == 0 && !w.showEmpty {
		return
	}
	section(sb, "CLASSIFIED DOMAINS")

	if len(s.Domains) == 0 {
		sb.WriteString("  No classified domains\n\n")
		return
	}
	for _, d := range s.Domains {
		c := d.Classification
		about := ""
		if d.HasAboutPage {
			about = " [about]"
		}
		fmt.Fprintf(sb, "  [+] %s  %s / %s (%.2f)%s\n",
			d.DomainName, orDash(c.ContentType), orDash(c.PrimaryTopic), c.QualityScore, about)
		if w.verbose && c.Summary != "" {
			fmt.Fprintf(sb, "      %s\n", c.Summary)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, s *Summary) {
	if len(s.Failures) == 0 && !w.showEmpty {
		return
	}
	section(sb, "FAILURES")

	if len(s.Failures) == 0 {
		sb.WriteString("  No failures\n\n")
		return
	}
	for _, f := range s.Failures {
		fmt.Fprintf(sb, "  [!] %s  %s\n", f.DomainName, f.ErrorText)
	}
	sb.WriteString("\n")
}
