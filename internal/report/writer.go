package report

import (
	"io"
	"unicode/utf8"
)

// Writer renders a Summary to its destination.
type Writer interface {
	// Write outputs the summary and returns the number of bytes written.
	Write(s *Summary) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// Our Writer writes summaries, not bytes, so io.MultiWriter does not apply.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to every Writer and returns the total bytes
// written. It stops on the first error.
func (m *MultiWriter) Write(s *Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(s)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// dateLayout formats timestamps in every report.
const dateLayout = "2006-01-02 15:04:05 MST"

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
