package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/domainscan/internal/config"
	"github.com/nao1215/domainscan/internal/database"
	"github.com/nao1215/domainscan/internal/model"
)

// Stats counts what one run did.
type Stats struct {
	Claimed        int `json:"claimed"`
	Succeeded      int `json:"succeeded"`
	Failed         int `json:"failed"`
	SessionsOpened int `json:"sessions_opened"`
	Recycles       int `json:"recycles"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Claimed += other.Claimed
	s.Succeeded += other.Succeeded
	s.Failed += other.Failed
	s.SessionsOpened += other.SessionsOpened
	s.Recycles += other.Recycles
}

// Orchestrator runs the claim, process, record loop of one worker.
type Orchestrator struct {
	queue    WorkQueue
	store    ResultStore
	sessions *SessionManager
	pipeline *Pipeline
	budget   *Budget
	logger   *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithBudget shares a crawl budget with other orchestrators.
func WithBudget(b *Budget) OrchestratorOption {
	return func(o *Orchestrator) {
		if b != nil {
			o.budget = b
		}
	}
}

// WithOrchestratorLogger sets a custom logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an orchestrator without a crawl limit.
func NewOrchestrator(queue WorkQueue, store ResultStore, sessions *SessionManager, p *Pipeline, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		queue:    queue,
		store:    store,
		sessions: sessions,
		pipeline: p,
		budget:   NewBudget(config.Unlimited),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run claims and processes domains until the queue is empty, the budget is
// spent or ctx is cancelled. Domain failures never stop the loop; they are
// recorded and counted. Run returns an error only for cancellation, a claim
// error or a browser that cannot be launched.
func (o *Orchestrator) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	defer func() {
		_ = o.sessions.Close() //nolint:errcheck // Close never fails
	}()

	err := o.loop(ctx, &stats)
	stats.SessionsOpened = o.sessions.Opened()
	stats.Recycles = o.sessions.Recycles()
	return stats, err
}

func (o *Orchestrator) loop(ctx context.Context, stats *Stats) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !o.budget.Take() {
			o.logger.Info("crawl limit reached", "claimed", stats.Claimed)
			return nil
		}

		item, err := o.queue.Claim(ctx)
		if errors.Is(err, database.ErrQueueEmpty) {
			o.budget.Refund()
			o.logger.Info("queue is empty", "claimed", stats.Claimed)
			return nil
		}
		if err != nil {
			o.budget.Refund()
			return fmt.Errorf("failed to claim next domain: %w", err)
		}
		stats.Claimed++

		ok, err := o.process(ctx, item)
		if !ok && (err == nil || errors.Is(err, ErrLaunch)) {
			stats.Failed++
		}
		if err != nil {
			return err
		}
		if ok {
			stats.Succeeded++
		}
	}
}

// process runs the pipeline for one claimed item. It reports whether the
// domain succeeded; a non-nil error stops the run. Every outcome except
// cancellation leaves the item terminal.
func (o *Orchestrator) process(ctx context.Context, item *model.IngestionItem) (bool, error) {
	domain := model.NormalizeDomain(item.DomainName)
	start := time.Now()
	o.logger.Info("processing domain", "domain", domain)

	session, err := o.sessions.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		// The claimed item is finished before the run stops.
		o.fail(ctx, item, err)
		return false, err
	}
	defer o.sessions.Done()

	page, err := session.NewPage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		o.sessions.Reset()
		o.fail(ctx, item, fmt.Errorf("failed to open page: %w", err))
		return false, nil
	}
	defer func() {
		if err := page.Close(); err != nil {
			o.logger.Debug("failed to close page", "domain", domain, "error", err)
		}
	}()

	job := NewJob(item, page)
	if err := o.pipeline.Execute(ctx, job); err != nil {
		if ctx.Err() != nil {
			// The item stays claimed; release recovers it.
			return false, ctx.Err()
		}
		o.fail(ctx, item, err)
		return false, nil
	}

	attrs := []any{"domain", domain, "elapsed", time.Since(start)}
	if job.Classification != nil {
		attrs = append(attrs,
			"content_type", job.Classification.ContentType,
			"topic", job.Classification.PrimaryTopic,
		)
	}
	if job.Selection != nil {
		attrs = append(attrs, "has_about_page", job.Selection.HasAboutPage)
	}
	o.logger.Info("domain classified", attrs...)
	return true, nil
}

// fail records a failure for the claimed item and logs it. A failure record
// that cannot be written is logged; the item then stays claimed.
func (o *Orchestrator) fail(ctx context.Context, item *model.IngestionItem, cause error) {
	domain := model.NormalizeDomain(item.DomainName)
	o.logger.Warn("domain failed",
		"domain", domain,
		"step", stepName(cause),
		"error", cause,
	)

	rec := model.NewFailureRecord(domain, cause.Error())
	rec.QueueKey = item.DomainName
	if err := o.store.RecordFailure(ctx, rec); err != nil {
		o.logger.Error("failed to record failure",
			"domain", domain,
			"error", err,
		)
	}
}
