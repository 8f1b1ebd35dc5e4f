package classify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/domainscan/internal/config"
	"github.com/nao1215/domainscan/internal/model"
)

// Completer sends one prompt to a language model and returns its text answer.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Classifier turns extracted content into a classification with one model call.
type Classifier struct {
	completer Completer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewClassifier creates a Classifier. A zero timeout disables the per-call
// deadline.
func NewClassifier(completer Completer, timeout time.Duration, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{completer: completer, timeout: timeout, logger: logger}
}

// NewClassifierFromConfig creates a Classifier backed by the Anthropic API.
func NewClassifierFromConfig(cfg *config.Config, logger *slog.Logger) *Classifier {
	completer := NewAnthropicCompleter(cfg.APIKey,
		WithModel(cfg.Model),
		WithMaxTokens(cfg.MaxResponseTokens),
		WithTemperature(cfg.Temperature),
	)
	return NewClassifier(completer, cfg.ClassifyTimeout, logger)
}

// Classify makes one model call for in and parses the answer. It never
// retries and never returns a default classification.
func (c *Classifier) Classify(ctx context.Context, in Input) (*model.Classification, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	answer, err := c.completer.Complete(ctx, SystemPrompt, BuildPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	cls, err := Parse(answer)
	if err != nil {
		c.logger.Debug("unparseable classification answer", "domain", in.Domain, "answer", truncate(answer, 500))
		return nil, err
	}
	return cls, nil
}
