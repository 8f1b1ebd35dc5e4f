package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/domainscan/internal/browser"
	"github.com/nao1215/domainscan/internal/classify"
	"github.com/nao1215/domainscan/internal/model"
	"github.com/nao1215/domainscan/internal/selector"
)

// Step names.
const (
	StepSelect   = "select"
	StepClassify = "classify"
	StepPersist  = "persist"
)

// PageSelector loads the page of a domain that is classified.
type PageSelector interface {
	Select(ctx context.Context, page browser.Page, domain string) (*selector.Selection, error)
}

// Classifier labels extracted content.
type Classifier interface {
	Classify(ctx context.Context, in classify.Input) (*model.Classification, error)
}

// ResultStore persists the terminal state of a domain. Both methods also
// complete the domain's queue item.
type ResultStore interface {
	Upsert(ctx context.Context, rec *model.DomainRecord) error
	RecordFailure(ctx context.Context, rec *model.FailureRecord) error
}

// WorkQueue hands out claimed domains.
type WorkQueue interface {
	Claim(ctx context.Context) (*model.IngestionItem, error)
}

// SelectStep loads the domain and extracts the content to classify.
type SelectStep struct {
	selector PageSelector
}

// NewSelectStep creates a select step.
func NewSelectStep(s PageSelector) *SelectStep {
	return &SelectStep{selector: s}
}

// Name returns the step name.
func (s *SelectStep) Name() string {
	return StepSelect
}

// Do executes the select step.
func (s *SelectStep) Do(ctx context.Context, job *Job) error {
	sel, err := s.selector.Select(ctx, job.Page, job.Domain)
	if err != nil {
		return err
	}
	if sel == nil || sel.Primary == nil {
		return fmt.Errorf("%w: no content selected", browser.ErrNavigation)
	}
	job.Selection = sel
	return nil
}

// ClassifyStep classifies the selected content.
type ClassifyStep struct {
	classifier Classifier

	// attempts is the number of classification calls before giving up.
	attempts int

	logger *slog.Logger
}

// ClassifyStepOption configures a ClassifyStep.
type ClassifyStepOption func(*ClassifyStep)

// WithAttempts sets the number of classification calls per domain.
func WithAttempts(n int) ClassifyStepOption {
	return func(s *ClassifyStep) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithClassifyLogger sets a custom logger for the classify step.
func WithClassifyLogger(logger *slog.Logger) ClassifyStepOption {
	return func(s *ClassifyStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewClassifyStep creates a classify step making one call per domain.
func NewClassifyStep(c Classifier, opts ...ClassifyStepOption) *ClassifyStep {
	s := &ClassifyStep{
		classifier: c,
		attempts:   1,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return StepClassify
}

// Do executes the classify step.
func (s *ClassifyStep) Do(ctx context.Context, job *Job) error {
	if job.Selection == nil {
		return errors.New("classify step needs a selection")
	}
	in := classify.NewInput(job.Domain, job.Selection.Primary, job.Selection.Supplementary)

	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		var cls *model.Classification
		cls, err = s.classifier.Classify(ctx, in)
		if err == nil {
			job.Classification = cls
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < s.attempts {
			s.logger.Debug("classification attempt failed",
				"domain", job.Domain,
				"attempt", attempt,
				"error", err,
			)
		}
	}
	return err
}

// PersistStep writes the classification and completes the queue item.
type PersistStep struct {
	store ResultStore
}

// NewPersistStep creates a persist step.
func NewPersistStep(store ResultStore) *PersistStep {
	return &PersistStep{store: store}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return StepPersist
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, job *Job) error {
	if job.Classification == nil {
		return errors.New("persist step needs a classification")
	}
	hasAbout := job.Selection != nil && job.Selection.HasAboutPage
	rec := model.NewDomainRecord(job.Domain, *job.Classification, hasAbout)
	if job.Item != nil {
		rec.QueueKey = job.Item.DomainName
	}
	if err := s.store.Upsert(ctx, rec); err != nil {
		return err
	}
	job.Record = rec
	return nil
}

// NewDomainPipeline builds the select, classify and persist pipeline.
func NewDomainPipeline(sel PageSelector, c Classifier, store ResultStore, attempts int, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewSelectStep(sel),
		NewClassifyStep(c, WithAttempts(attempts), WithClassifyLogger(logger)),
		NewPersistStep(store),
	)
	return p
}
