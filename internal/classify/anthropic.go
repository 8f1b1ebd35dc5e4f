package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nao1215/domainscan/internal/config"
)

// AnthropicCompleter implements Completer with the Anthropic Messages API.
type AnthropicCompleter struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// AnthropicOption configures an AnthropicCompleter.
type AnthropicOption func(*anthropicSettings)

type anthropicSettings struct {
	model       string
	maxTokens   int
	temperature float64
	baseURL     string
}

// WithModel sets the model name.
func WithModel(model string) AnthropicOption {
	return func(s *anthropicSettings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithMaxTokens caps the length of the answer.
func WithMaxTokens(n int) AnthropicOption {
	return func(s *anthropicSettings) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) AnthropicOption {
	return func(s *anthropicSettings) {
		s.temperature = t
	}
}

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(url string) AnthropicOption {
	return func(s *anthropicSettings) {
		s.baseURL = url
	}
}

// NewAnthropicCompleter creates a completer authenticated with apiKey.
// The SDK's transport retries are disabled; a failed call fails the domain.
func NewAnthropicCompleter(apiKey string, opts ...AnthropicOption) *AnthropicCompleter {
	s := &anthropicSettings{
		model:       config.DefaultModel,
		maxTokens:   config.DefaultMaxResponseTokens,
		temperature: config.DefaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}

	return &AnthropicCompleter{
		client:      anthropic.NewClient(reqOpts...),
		model:       s.model,
		maxTokens:   int64(s.maxTokens),
		temperature: s.temperature,
	}
}

// Complete implements Completer. The text blocks of the answer are joined.
func (a *AnthropicCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("model returned no text (stop reason %q)", msg.StopReason)
	}
	return b.String(), nil
}
