// Package report renders the state of a classification run.
//
// A Summary collects the queue counters, the classified domains and the
// recorded failures. Writers render it:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: structured JSON for other tools
//   - MarkdownWriter: a shareable document with tables and a content-type chart
//
// Writers implement the Writer interface and can be combined with MultiWriter.
package report
