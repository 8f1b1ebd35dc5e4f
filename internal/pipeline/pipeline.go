package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/domainscan/internal/browser"
	"github.com/nao1215/domainscan/internal/model"
	"github.com/nao1215/domainscan/internal/selector"
)

// Job carries one claimed domain through the pipeline. Steps read what
// earlier steps left and fill in their own part.
type Job struct {
	// Item is the claimed queue item.
	Item *model.IngestionItem

	// Domain is the normalized domain name.
	Domain string

	// Page is the browser tab the domain is loaded in.
	Page browser.Page

	// Selection is set by the select step.
	Selection *selector.Selection

	// Classification is set by the classify step.
	Classification *model.Classification

	// Record is set by the persist step.
	Record *model.DomainRecord

	// PerformedSteps lists the steps that completed, in order.
	PerformedSteps []string
}

// NewJob creates a Job for a claimed item.
func NewJob(item *model.IngestionItem, page browser.Page) *Job {
	return &Job{
		Item:   item,
		Domain: model.NormalizeDomain(item.DomainName),
		Page:   page,
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the job the previous
// steps worked on.
type Step interface {
	// Do executes the step. Any error fails the domain.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes an ordered list of steps for one domain and stops at the
// first failing step.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence. Cancellation is checked before each
// step; steps handle their own timeouts. The first step error is returned as
// a *StepError.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"domain", job.Domain,
				"reason", err,
			)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"domain", job.Domain,
		)

		if err := step.Do(ctx, job); err != nil {
			return &StepError{Step: step.Name(), Err: err}
		}

		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
