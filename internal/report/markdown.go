package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs summaries as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter

	// verbose adds a collapsible natural-language summary per domain.
	verbose bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownDetails adds the classifier's summary of each domain.
func WithMarkdownDetails(enabled bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.verbose = enabled
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(s *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeQueue(md, s)
	w.writeDomains(md, s)
	w.writeFailures(md, s)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("Domain Classification Report")
	md.PlainText("")
	md.PlainTextf("Generated %s", s.GeneratedAt.Format(dateLayout))
	md.PlainText("")
}

// writeQueue writes the queue counters and an alert about the run's state.
func (w *MarkdownWriter) writeQueue(md *markdown.Markdown, s *Summary) {
	md.H2("Queue")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"State", "Count"},
		Rows: [][]string{
			{"Pending", strconv.Itoa(s.Queue.Pending)},
			{"Locked", strconv.Itoa(s.Queue.Locked)},
			{"Classified", strconv.Itoa(s.Queue.Classified)},
			{"Failed", strconv.Itoa(s.Queue.Failed)},
		},
	})
	md.PlainText("")

	switch {
	case s.Queue.Locked > 0 && s.Queue.Pending == 0:
		md.Warningf("%d domain(s) are still locked. Run `release` if no worker is running.", s.Queue.Locked)
	case s.HasFailures():
		md.Importantf("%d domain(s) failed. See the failures section for the recorded errors.", s.Queue.Failed)
	case s.Queue.Classified == 0:
		md.Note("No domain has been classified yet.")
	default:
		md.Tip("Every processed domain was classified.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, s *Summary) {
	md.H2("Classified Domains")
	md.PlainText("")

	if len(s.Domains) == 0 {
		md.PlainText("No classified domains.")
		md.PlainText("")
		return
	}

	w.writePieChart(md, s)
	md.PlainTextf("About page found for %.0f%% of listed domains.", s.AboutPageRatio()*100)
	md.PlainText("")

	rows := make([][]string, len(s.Domains))
	for i, d := range s.Domains {
		c := d.Classification
		rows[i] = []string{
			"`" + d.DomainName + "`",
			orDash(c.ContentType),
			truncateString(orDash(c.PrimaryTopic), 40),
			orDash(c.Language),
			strconv.FormatFloat(c.QualityScore, 'f', 2, 64),
			yesNo(d.HasAboutPage),
			d.ProcessedAt.Format(dateLayout),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Type", "Topic", "Language", "Quality", "About", "Processed"},
		Rows:   rows,
	})
	md.PlainText("")

	if !w.verbose {
		return
	}
	for _, d := range s.Domains {
		if d.Classification.Summary != "" {
			md.Details(d.DomainName, d.Classification.Summary)
		}
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the content-type distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Content Types"),
		piechart.WithShowData(true),
	)
	for _, c := range s.ContentTypes() {
		chart.LabelAndIntValue(c.Label, uint64(c.Count)) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, s *Summary) {
	md.H2("Failures")
	md.PlainText("")

	if len(s.Failures) == 0 {
		md.PlainText("No failures recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(s.Failures))
	for i, f := range s.Failures {
		rows[i] = []string{
			"`" + f.DomainName + "`",
			truncateString(orDash(f.ErrorText), 80),
			f.FailedAt.Format(dateLayout),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Error", "Failed"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [domainscan](https://github.com/nao1215/domainscan)*")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
