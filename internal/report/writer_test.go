package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/domainscan/internal/model"
)

var testTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// createTestSummary creates a summary with sample data for testing.
func createTestSummary() *Summary {
	blog := model.NewDomainRecord("garden.example", model.Classification{
		ContentType:  "blog",
		PrimaryTopic: "urban gardening",
		Language:     "en",
		QualityScore: 0.82,
		Summary:      "A personal blog about growing vegetables on a balcony.",
	}, true)
	blog.ProcessedAt = testTime

	shop := model.NewDomainRecord("mugs.example", model.Classification{
		ContentType:  "ecommerce",
		PrimaryTopic: "ceramics",
		Language:     "de",
		QualityScore: 0.5,
	}, false)
	shop.ProcessedAt = testTime

	news := model.NewDomainRecord("daily.example", model.Classification{
		ContentType: "blog",
		Language:    "en",
	}, false)
	news.ProcessedAt = testTime

	failure := model.NewFailureRecord("down.example", "select: navigation failed: net::ERR_NAME_NOT_RESOLVED")
	failure.FailedAt = testTime

	return NewSummary(
		model.QueueStats{Pending: 4, Locked: 1, Classified: 3, Failed: 1},
		[]*model.DomainRecord{blog, shop, news},
		[]*model.FailureRecord{failure},
		testTime,
	)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	t.Run("content types are sorted by count then label", func(t *testing.T) {
		t.Parallel()

		got := createTestSummary().ContentTypes()
		want := []Count{{"blog", 2}, {"ecommerce", 1}}
		if len(got) != len(want) {
			t.Fatalf("ContentTypes() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ContentTypes()[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("empty labels count as unknown", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(model.QueueStats{}, []*model.DomainRecord{
			model.NewDomainRecord("a.example", model.Classification{ContentType: "blog"}, false),
		}, nil, testTime)
		got := s.Languages()
		if len(got) != 1 || got[0] != (Count{"unknown", 1}) {
			t.Errorf("Languages() = %v", got)
		}
	})

	t.Run("about page ratio", func(t *testing.T) {
		t.Parallel()

		if got := createTestSummary().AboutPageRatio(); got < 0.33 || got > 0.34 {
			t.Errorf("AboutPageRatio() = %v", got)
		}
		if got := NewSummary(model.QueueStats{}, nil, nil, testTime).AboutPageRatio(); got != 0 {
			t.Errorf("AboutPageRatio() of empty summary = %v", got)
		}
	})

	t.Run("nil slices become empty", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(model.QueueStats{}, nil, nil, testTime)
		if s.Domains == nil || s.Failures == nil {
			t.Error("expected empty slices")
		}
		if s.HasFailures() {
			t.Error("empty summary has no failures")
		}
	})
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes every section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("Write() returned %d, buffer holds %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"DOMAIN CLASSIFICATION REPORT",
			"CLASSIFIED: 3",
			"LOCKED:     1",
			"[+] garden.example  blog / urban gardening (0.82) [about]",
			"[+] daily.example  blog / - (0.00)",
			"[!] down.example  select: navigation failed",
			"About page:     33%",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "balcony.") {
			t.Error("summaries are only shown in verbose mode")
		}
	})

	t.Run("verbose mode includes summaries", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "growing vegetables on a balcony") {
			t.Error("expected verbose output to contain summaries")
		}
	})

	t.Run("empty sections are hidden by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewSummary(model.QueueStats{Pending: 10}, nil, nil, testTime)
		if _, err := NewSimpleWriter(&buf).Write(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if strings.Contains(output, "FAILURES") || strings.Contains(output, "CLASSIFIED DOMAINS") {
			t.Error("empty sections must be hidden")
		}
		if !strings.Contains(output, "PENDING:    10") {
			t.Error("queue counters are always shown")
		}
	})

	t.Run("show empty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewSummary(model.QueueStats{}, nil, nil, testTime)
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "No classified domains") || !strings.Contains(output, "No failures") {
			t.Error("expected empty sections to be shown")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if strings.Count(output, "\n") != 1 || !strings.HasSuffix(output, "\n") {
			t.Error("compact output must be a single line")
		}

		var decoded Summary
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Queue.Classified != 3 || len(decoded.Domains) != 3 || len(decoded.Failures) != 1 {
			t.Errorf("unexpected decoded summary %+v", decoded)
		}
		if decoded.Domains[0].Classification.ContentType != "blog" {
			t.Errorf("unexpected first domain %+v", decoded.Domains[0])
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"queue\": {") {
			t.Error("expected two-space indentation")
		}
	})

	t.Run("custom indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent(">", "\t")).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n>\t\"queue\"") {
			t.Error("expected prefix and tab indentation")
		}
	})

	t.Run("empty summary has arrays", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(NewSummary(model.QueueStats{}, nil, nil, testTime)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"domains":[]`) || !strings.Contains(buf.String(), `"failures":[]`) {
			t.Errorf("expected empty arrays, got %s", buf.String())
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "1.2.3").Write(createTestSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != "1.2.3" {
		t.Errorf("Version = %q", decoded.Version)
	}
	if decoded.Summary == nil || decoded.Summary.Queue.Failed != 1 {
		t.Errorf("unexpected summary %+v", decoded.Summary)
	}
	if len(decoded.ContentTypes) != 2 || decoded.ContentTypes[0] != (Count{"blog", 2}) {
		t.Errorf("unexpected content types %v", decoded.ContentTypes)
	}
	if len(decoded.Languages) != 2 || decoded.Languages[0] != (Count{"en", 2}) {
		t.Errorf("unexpected languages %v", decoded.Languages)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes every section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Domain Classification Report",
			"## Queue",
			"## Classified Domains",
			"## Failures",
			"`garden.example`",
			"urban gardening",
			"`down.example`",
			"```mermaid",
			"Content Types",
			"About page found for 33% of listed domains.",
			"domainscan",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "<details>") {
			t.Error("details are only written when enabled")
		}
	})

	t.Run("details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, WithMarkdownDetails(true)).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "growing vegetables on a balcony") {
			t.Error("expected domain summaries")
		}
	})

	t.Run("alerts", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			stats model.QueueStats
			want  string
		}{
			{"stale locks", model.QueueStats{Locked: 2}, "[!WARNING]"},
			{"failures", model.QueueStats{Pending: 1, Classified: 1, Failed: 1}, "[!IMPORTANT]"},
			{"nothing classified", model.QueueStats{Pending: 3}, "[!NOTE]"},
			{"clean run", model.QueueStats{Classified: 3}, "[!TIP]"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				var buf bytes.Buffer
				s := NewSummary(tt.stats, nil, nil, testTime)
				if _, err := NewMarkdownWriter(&buf).Write(s); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !strings.Contains(buf.String(), tt.want) {
					t.Errorf("expected %s alert in:\n%s", tt.want, buf.String())
				}
			})
		}
	})

	t.Run("empty summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(NewSummary(model.QueueStats{}, nil, nil, testTime)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "No classified domains.") || !strings.Contains(output, "No failures recorded.") {
			t.Error("expected empty section notices")
		}
		if strings.Contains(output, "mermaid") {
			t.Error("no chart without domains")
		}
	})
}

type failingWriter struct{ err error }

func (w failingWriter) Write(*Summary) (int, error) { return 0, w.err }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		n, err := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js)).Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected output in both writers")
		}
		if n != text.Len()+js.Len() {
			t.Errorf("Write() returned %d, want %d", n, text.Len()+js.Len())
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("disk full")
		var after bytes.Buffer
		_, err := NewMultiWriter(failingWriter{sentinel}, NewSimpleWriter(&after)).Write(createTestSummary())
		if !errors.Is(err, sentinel) {
			t.Errorf("expected sentinel error, got %v", err)
		}
		if after.Len() != 0 {
			t.Error("writers after a failure must not run")
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"multibyte", "über kaffee", 6, "übe..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
