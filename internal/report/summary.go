package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/nao1215/domainscan/internal/model"
)

// Summary is the input of every report writer.
type Summary struct {
	// GeneratedAt is when the summary was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Queue holds the queue and result table counters.
	Queue model.QueueStats `json:"queue"`

	// Domains are classified domains, most recently processed first.
	Domains []*model.DomainRecord `json:"domains"`

	// Failures are failed domains, most recent first.
	Failures []*model.FailureRecord `json:"failures"`
}

// NewSummary builds a Summary. Nil slices are replaced with empty ones so
// that JSON output always carries arrays.
func NewSummary(stats model.QueueStats, domains []*model.DomainRecord, failures []*model.FailureRecord, now time.Time) *Summary {
	if domains == nil {
		domains = []*model.DomainRecord{}
	}
	if failures == nil {
		failures = []*model.FailureRecord{}
	}
	return &Summary{
		GeneratedAt: now,
		Queue:       stats,
		Domains:     domains,
		Failures:    failures,
	}
}

// Count is a label with the number of domains carrying it.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ContentTypes counts the listed domains per content type, largest first.
func (s *Summary) ContentTypes() []Count {
	return countBy(s.Domains, func(r *model.DomainRecord) string { return r.Classification.ContentType })
}

// Languages counts the listed domains per primary language, largest first.
func (s *Summary) Languages() []Count {
	return countBy(s.Domains, func(r *model.DomainRecord) string { return r.Classification.Language })
}

// AboutPageRatio returns the share of listed domains with a valid about page.
func (s *Summary) AboutPageRatio() float64 {
	if len(s.Domains) == 0 {
		return 0
	}
	n := 0
	for _, d := range s.Domains {
		if d.HasAboutPage {
			n++
		}
	}
	return float64(n) / float64(len(s.Domains))
}

// HasFailures reports whether any failure was recorded.
func (s *Summary) HasFailures() bool {
	return s.Queue.Failed > 0 || len(s.Failures) > 0
}

func countBy(domains []*model.DomainRecord, key func(*model.DomainRecord) string) []Count {
	counts := map[string]int{}
	for _, d := range domains {
		label := key(d)
		if label == "" {
			label = "unknown"
		}
		counts[label]++
	}

	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
