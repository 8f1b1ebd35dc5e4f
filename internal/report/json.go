package report

import (
	"encoding/json"
	"io"
)

// JSONWriter outputs summaries as JSON for other tools.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary as JSON.
func (w *JSONWriter) Write(s *Summary) (int, error) {
	return w.writeJSON(s)
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps a Summary with the version of the tool and the derived
// breakdowns.
//
// Design decision: The breakdowns are computed once and embedded rather than
// left to consumers, so the JSON output carries the same counts as the text
// and Markdown reports.
type JSONReport struct {
	Version      string   `json:"version"`
	Summary      *Summary `json:"summary"`
	ContentTypes []Count  `json:"content_types"`
	Languages    []Count  `json:"languages"`
}

// NewJSONReport creates a JSONReport for s.
func NewJSONReport(s *Summary, version string) *JSONReport {
	return &JSONReport{
		Version:      version,
		Summary:      s,
		ContentTypes: s.ContentTypes(),
		Languages:    s.Languages(),
	}
}

// FullJSONWriter outputs summaries wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for summaries with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the wrapped summary.
func (w *FullJSONWriter) Write(s *Summary) (int, error) {
	return w.writeJSON(NewJSONReport(s, w.version))
}
