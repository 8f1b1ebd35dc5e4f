package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nao1215/domainscan/internal/browser"
	"github.com/nao1215/domainscan/internal/classify"
	"github.com/nao1215/domainscan/internal/database"
	"github.com/nao1215/domainscan/internal/model"
	"github.com/nao1215/domainscan/internal/selector"
)

var discard = slog.New(slog.DiscardHandler)

// fakeQueue hands out items in order and counts Claim calls.
type fakeQueue struct {
	mu     sync.Mutex
	items  []*model.IngestionItem
	claims int
	err    error
}

func newFakeQueue(domains ...string) *fakeQueue {
	q := &fakeQueue{}
	for _, d := range domains {
		q.items = append(q.items, &model.IngestionItem{DomainName: d})
	}
	return q
}

func numberedDomains(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("site-%03d.example", i)
	}
	return out
}

func (q *fakeQueue) Claim(context.Context) (*model.IngestionItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.claims++
	if q.err != nil {
		return nil, q.err
	}
	if len(q.items) == 0 {
		return nil, database.ErrQueueEmpty
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

func (q *fakeQueue) Claims() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.claims
}

// fakeStore keeps terminal records in memory.
type fakeStore struct {
	mu         sync.Mutex
	domains    map[string]*model.DomainRecord
	failures   map[string]*model.FailureRecord
	upsertErr  error
	failureErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		domains:  make(map[string]*model.DomainRecord),
		failures: make(map[string]*model.FailureRecord),
	}
}

func (s *fakeStore) Upsert(_ context.Context, rec *model.DomainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return fmt.Errorf("%w: %w", database.ErrPersistence, s.upsertErr)
	}
	s.domains[rec.DomainName] = rec
	return nil
}

func (s *fakeStore) RecordFailure(_ context.Context, rec *model.FailureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failureErr != nil {
		return s.failureErr
	}
	s.failures[rec.DomainName] = rec
	return nil
}

func (s *fakeStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.domains), len(s.failures)
}

// fakeSelector returns the domain as primary content unless the domain is
// listed in fail.
type fakeSelector struct {
	fail  map[string]error
	about bool

	mu    sync.Mutex
	pages []browser.Page
}

func (s *fakeSelector) Select(_ context.Context, page browser.Page, domain string) (*selector.Selection, error) {
	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()
	if err := s.fail[domain]; err != nil {
		return nil, err
	}
	return &selector.Selection{
		Primary:      &model.ExtractedContent{Title: domain, URL: model.HomepageURL(domain), Tokens: []string{domain}},
		HasAboutPage: s.about,
	}, nil
}

// fakeClassifier labels everything as a blog unless told to fail.
type fakeClassifier struct {
	fail map[string]error

	mu sync.Mutex
	// failFirst makes the first n calls fail.
	failFirst int
	calls     int
}

func (c *fakeClassifier) Classify(_ context.Context, in classify.Input) (*model.Classification, error) {
	c.mu.Lock()
	c.calls++
	calls := c.calls
	c.mu.Unlock()

	if calls <= c.failFirst {
		return nil, fmt.Errorf("%w: transient", classify.ErrClassification)
	}
	if err := c.fail[in.Domain]; err != nil {
		return nil, err
	}
	return &model.Classification{ContentType: "blog", PrimaryTopic: in.Title}, nil
}

// brokenSession fails to open pages.
type brokenSession struct {
	closed bool
}

func (s *brokenSession) NewPage(context.Context) (browser.Page, error) {
	return nil, errors.New("target closed")
}

func (s *brokenSession) Close() error {
	s.closed = true
	return nil
}

type brokenLauncher struct {
	sessions []*brokenSession
}

func (l *brokenLauncher) Launch(context.Context) (browser.Session, error) {
	s := &brokenSession{}
	l.sessions = append(l.sessions, s)
	return s, nil
}
