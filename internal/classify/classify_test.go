package classify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/domainscan/internal/model"
)

const validAnswer = `{
  "semantic_content_type_text": "Blog",
  "semantic_primary_topic_text": "gardening",
  "semantic_keywords_text_array": ["tomatoes", "balcony", "Tomatoes"],
  "semantic_language_primary_text": "en",
  "semantic_communication_goal_text": "share",
  "semantic_author_type_text": "individual",
  "semantic_audience_type_text": "beginner",
  "semantic_tone_text": "positive",
  "semantic_formality_text": "informal",
  "semantic_vibe_text": "personal",
  "semantic_site_type_text": "multi-page",
  "semantic_is_commercial_bool": false,
  "semantic_is_spammy_bool": false,
  "semantic_is_politically_loaded_bool": false,
  "semantic_quality_score_float": 0.72,
  "natural_language_summary_text": "A personal blog about {growing} vegetables."
}`

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		answer  string
		wantErr bool
	}{
		{"plain JSON", validAnswer, false},
		{"wrapped in prose", "Sure! " + validAnswer + " thanks!", false},
		{"code fence", "```json\n" + validAnswer + "\n```", false},
		{"prose with stray brace first", "Result {see below}: " + validAnswer, false},
		{"no brace", "I cannot classify this site.", true},
		{"broken JSON", `{"semantic_content_type_text": "blog",`, true},
		{"missing content type", `{"semantic_primary_topic_text": "art"}`, true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.answer)
			if tt.wantErr {
				if !errors.Is(err, ErrClassification) {
					t.Fatalf("expected ErrClassification, got %v", err)
				}
				if got != nil {
					t.Errorf("no classification may be returned on error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.ContentType != "blog" || got.PrimaryTopic != "gardening" {
				t.Errorf("unexpected classification %+v", got)
			}
			if len(got.Keywords) != 2 {
				t.Errorf("Keywords = %v, want case-insensitive dedupe", got.Keywords)
			}
			if got.Summary != "A personal blog about {growing} vegetables." {
				t.Errorf("Summary = %q", got.Summary)
			}
		})
	}
}

func TestParse_MissingContentTypeWrapsModelError(t *testing.T) {
	t.Parallel()

	_, err := Parse(`{"semantic_content_type_text": "  "}`)
	if !errors.Is(err, model.ErrMissingContentType) {
		t.Errorf("expected ErrMissingContentType, got %v", err)
	}
}

func TestParse_ClampsQualityScore(t *testing.T) {
	t.Parallel()

	got, err := Parse(`{"semantic_content_type_text": "news", "semantic_quality_score_float": 1.7}`)
	if err != nil {
		t.Fatal(err)
	}
	if got.QualityScore != 1.0 {
		t.Errorf("QualityScore = %v, want 1.0", got.QualityScore)
	}
}

func TestParse_LegacyVibeKey(t *testing.T) {
	t.Parallel()

	got, err := Parse(`{"semantic_content_type_text": "docs", "semantic_content_vibe_text": "Technical"}`)
	if err != nil {
		t.Fatal(err)
	}
	if got.Vibe != "technical" {
		t.Errorf("Vibe = %q, want technical", got.Vibe)
	}
}

func TestFirstBalancedObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{`x {"a": 1} y {"b": 2}`, `{"a": 1}`, true},
		{`{"a": "}"}`, `{"a": "}"}`, true},
		{`{"a": "\"}"}`, `{"a": "\"}"}`, true},
		{`{oops} {"a": {"b": 1}}`, `{"a": {"b": 1}}`, true},
		{`{"a": 1`, "", false},
		{`no braces`, "", false},
	}
	for _, tt := range tests {
		got, ok := firstBalancedObject(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("firstBalancedObject(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	t.Run("homepage only", func(t *testing.T) {
		t.Parallel()

		p := BuildPrompt(Input{
			Domain:         "example.com",
			Title:          "Example",
			URL:            "https://example.com",
			Tokens:         []string{"gardening", "tomatoes"},
			MetadataDigest: "description: a garden blog",
			HasComments:    true,
		})
		for _, want := range []string{
			"Title: Example",
			"URL: https://example.com",
			"Content: gardening tomatoes",
			"Metadata: description: a garden blog",
			"Has Comments: true",
			`"semantic_content_type_text": "blog|forum|docs|`,
			`"semantic_quality_score_float": 0.0-1.0`,
		} {
			if !strings.Contains(p, want) {
				t.Errorf("prompt is missing %q", want)
			}
		}
		if strings.Contains(p, "authoritative") || strings.Contains(p, "About Page Content") {
			t.Error("about-page instructions must only appear with about content")
		}
	})

	t.Run("homepage and about page", func(t *testing.T) {
		t.Parallel()

		p := BuildPrompt(Input{Tokens: []string{"home"}, AboutTokens: []string{"team"}})
		if !strings.Contains(p, "About Page Content: team") || !strings.Contains(p, "homepage content is authoritative") {
			t.Errorf("prompt does not rank homepage over about page:\n%s", p)
		}
	})

	t.Run("content is capped", func(t *testing.T) {
		t.Parallel()

		tokens := make([]string, 1000)
		for i := range tokens {
			tokens[i] = "token"
		}
		p := BuildPrompt(Input{Tokens: tokens})
		line := p[strings.Index(p, "Content: "):]
		line = line[:strings.IndexByte(line, '\n')]
		if got := len(strings.TrimPrefix(line, "Content: ")); got != maxContentChars {
			t.Errorf("content length = %d, want %d", got, maxContentChars)
		}
	})
}

func TestNewInput(t *testing.T) {
	t.Parallel()

	primary := &model.ExtractedContent{Title: "Home", URL: "https://example.com", Tokens: []string{"a"}}
	about := &model.ExtractedContent{Tokens: []string{"b"}, MetadataDigest: "author: x", HasComments: true}

	in := NewInput("Example.com", primary, about)
	if in.Domain != "example.com" || in.Title != "Home" || in.AboutTokens[0] != "b" {
		t.Errorf("unexpected input %+v", in)
	}
	if !in.HasComments || in.MetadataDigest != "author: x" {
		t.Errorf("about page signals must fill gaps, got %+v", in)
	}
}

type fakeCompleter struct {
	answer string
	err    error

	system, prompt string
	deadline       bool
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.system, f.prompt = system, prompt
	_, f.deadline = ctx.Deadline()
	return f.answer, f.err
}

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		fc := &fakeCompleter{answer: "Here you go: " + validAnswer}
		got, err := NewClassifier(fc, time.Minute, nil).Classify(context.Background(), Input{Title: "Garden"})
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if got.ContentType != "blog" {
			t.Errorf("ContentType = %q", got.ContentType)
		}
		if fc.system != SystemPrompt || !strings.Contains(fc.prompt, "Title: Garden") {
			t.Errorf("unexpected call system=%q", fc.system)
		}
		if !fc.deadline {
			t.Error("expected the call to carry a deadline")
		}
	})

	t.Run("completer error", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("rate limited")
		_, err := NewClassifier(&fakeCompleter{err: sentinel}, 0, nil).Classify(context.Background(), Input{})
		if !errors.Is(err, ErrClassification) || !errors.Is(err, sentinel) {
			t.Errorf("expected ErrClassification wrapping the cause, got %v", err)
		}
	})

	t.Run("garbage answer", func(t *testing.T) {
		t.Parallel()

		_, err := NewClassifier(&fakeCompleter{answer: "no idea"}, 0, nil).Classify(context.Background(), Input{})
		if !errors.Is(err, ErrClassification) {
			t.Errorf("expected ErrClassification, got %v", err)
		}
	})
}

func TestAnthropicCompleter_Complete(t *testing.T) {
	t.Parallel()

	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		System      []struct {
			Text string `json:"text"`
		} `json:"system"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "sk-ant-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [
				{"type": "text", "text": "{\"semantic_content_type_text\": "},
				{"type": "text", "text": "\"news\"}"}
			],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`)
	}))
	t.Cleanup(srv.Close)

	c := NewAnthropicCompleter("sk-ant-test",
		WithBaseURL(srv.URL),
		WithModel("test-model"),
		WithMaxTokens(256),
		WithTemperature(0.1),
	)
	answer, err := c.Complete(context.Background(), SystemPrompt, "classify this")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != `{"semantic_content_type_text": "news"}` {
		t.Errorf("answer = %q", answer)
	}
	if got.Model != "test-model" || got.MaxTokens != 256 || got.Temperature != 0.1 {
		t.Errorf("unexpected request %+v", got)
	}
	if len(got.System) != 1 || got.System[0].Text != SystemPrompt {
		t.Errorf("unexpected system prompt %+v", got.System)
	}
}

func TestAnthropicCompleter_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
	}))
	t.Cleanup(srv.Close)

	_, err := NewAnthropicCompleter("sk-ant-test", WithBaseURL(srv.URL)).
		Complete(context.Background(), SystemPrompt, "x")
	if err == nil {
		t.Fatal("expected an error")
	}
}
