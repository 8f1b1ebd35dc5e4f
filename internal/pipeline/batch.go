package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/domainscan/internal/config"
)

// Budget is a crawl limit shared by the orchestrators of one process.
//
// Design decision: A unit is taken before Claim and refunded when the queue
// turns out to be empty or the claim fails. Counting after a successful
// claim would let n workers overshoot the limit by up to n-1 items, and
// every claimed item must be processed once it is locked.
type Budget struct {
	unlimited bool
	remaining atomic.Int64
}

// NewBudget creates a budget of limit claims. config.Unlimited disables it.
func NewBudget(limit int) *Budget {
	b := &Budget{unlimited: limit == config.Unlimited}
	if !b.unlimited {
		b.remaining.Store(int64(max(limit, 0)))
	}
	return b
}

// Take reserves one claim. It returns false when the budget is spent.
func (b *Budget) Take() bool {
	if b.unlimited {
		return true
	}
	for {
		n := b.remaining.Load()
		if n <= 0 {
			return false
		}
		if b.remaining.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// Refund returns a reserved claim that was not used.
func (b *Budget) Refund() {
	if !b.unlimited {
		b.remaining.Add(1)
	}
}

// Remaining returns the number of claims left, or config.Unlimited.
func (b *Budget) Remaining() int {
	if b.unlimited {
		return config.Unlimited
	}
	return int(b.remaining.Load())
}

// WorkerFactory builds the orchestrator of worker id. Every worker must get
// its own SessionManager.
type WorkerFactory func(id int) (*Orchestrator, error)

// RunWorkers runs n orchestrators concurrently, sharing a budget of limit
// claims. The queue claim is their only other coordination point.
//
// A worker error cancels the others; the stats of every worker are summed
// regardless.
func RunWorkers(ctx context.Context, n, limit int, factory WorkerFactory, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if n <= 0 {
		n = 1
	}

	budget := NewBudget(limit)
	logger.Info("starting ingestion",
		"workers", n,
		"limit", limit,
	)
	startTime := time.Now()

	var (
		total Stats
		mu    sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	for id := range n {
		g.Go(func() error {
			o, err := factory(id)
			if err != nil {
				return err
			}
			o.budget = budget
			o.logger = o.logger.With("worker", id)

			stats, err := o.Run(ctx)

			mu.Lock()
			total.Add(stats)
			mu.Unlock()

			return err
		})
	}

	err := g.Wait()

	logger.Info("ingestion finished",
		"claimed", total.Claimed,
		"succeeded", total.Succeeded,
		"failed", total.Failed,
		"sessions", total.SessionsOpened,
		"recycles", total.Recycles,
		"elapsed", time.Since(startTime),
	)

	return total, err
}
