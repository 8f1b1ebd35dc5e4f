package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/domainscan/internal/config"
	"github.com/nao1215/domainscan/internal/model"
)

// Store is the work queue and result store used by the ingestion loop.
// Implementations must be safe for concurrent use by several workers.
type Store interface {
	// Claim atomically locks and returns the oldest unlocked ingestion item.
	// It returns ErrQueueEmpty when no unlocked item remains.
	Claim(ctx context.Context) (*model.IngestionItem, error)

	// Complete removes the ingestion item of domainName.
	Complete(ctx context.Context, domainName string) error

	// Upsert writes the classification of a domain and completes its
	// ingestion item in the same transaction.
	Upsert(ctx context.Context, rec *model.DomainRecord) error

	// RecordFailure writes the failure record of a domain and completes its
	// ingestion item in the same transaction.
	RecordFailure(ctx context.Context, rec *model.FailureRecord) error

	// Enqueue inserts new ingestion items. Names that are already queued are
	// left untouched. It returns the number of inserted items.
	Enqueue(ctx context.Context, items ...model.IngestionItem) (int, error)

	// ReleaseStale unlocks items that were claimed more than olderThan ago
	// and never reached a terminal state. It returns the number of released items.
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int, error)

	// Stats counts pending, locked, classified and failed domains.
	Stats(ctx context.Context) (*model.QueueStats, error)

	// ListDomains returns up to limit classified domains, most recently
	// processed first. A limit <= 0 returns every row.
	ListDomains(ctx context.Context, limit int) ([]*model.DomainRecord, error)

	// ListFailures returns up to limit failure records, most recent first.
	// A limit <= 0 returns every row.
	ListFailures(ctx context.Context, limit int) ([]*model.FailureRecord, error)

	// Migrate applies pending schema migrations and returns the schema version.
	Migrate(ctx context.Context) (uint, error)

	// Close releases the underlying connections.
	Close() error
}

// Open opens the store selected by cfg.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.DBDir, DefaultOptions())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// dialect holds what differs between the PostgreSQL and SQLite backends.
// Queries are written with ? placeholders and rebound by sqlx.
type dialect interface {
	// claimQuery locks the oldest unlocked item in one statement and returns
	// its name, suffix, discovered and locked timestamps. It takes the lock
	// time as its only argument.
	claimQuery() string

	// bindTime converts t into the driver's timestamp representation.
	bindTime(t time.Time) any

	// bindKeywords converts keywords into the driver's array representation.
	bindKeywords(keywords []string) (any, error)

	// migrate applies the embedded migrations for this backend.
	migrate(db *sql.DB) (uint, error)
}

// SQLStore implements Store on top of a sqlx connection pool.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect

	// now is replaced in tests.
	now func() time.Time
}

func newSQLStore(db *sqlx.DB, d dialect) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: d,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Migrate applies pending schema migrations and returns the schema version.
func (s *SQLStore) Migrate(_ context.Context) (uint, error) {
	return s.dialect.migrate(s.db.DB)
}

// Claim atomically locks and returns the oldest unlocked ingestion item.
func (s *SQLStore) Claim(ctx context.Context) (*model.IngestionItem, error) {
	var (
		item         model.IngestionItem
		discoveredAt string
		lockedAt     sql.NullString
	)

	row := s.db.QueryRowxContext(ctx, s.db.Rebind(s.dialect.claimQuery()), s.dialect.bindTime(s.now()))
	err := row.Scan(&item.DomainName, &item.PublicSuffix, &discoveredAt, &lockedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim ingestion item: %w", err)
	}

	item.DiscoveredAt = parseTimestamp(discoveredAt)
	if lockedAt.Valid {
		t := parseTimestamp(lockedAt.String)
		item.LockedAt = &t
	}
	return &item, nil
}

// Complete removes the ingestion item of domainName.
func (s *SQLStore) Complete(ctx context.Context, domainName string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(deleteIngestionQuery), domainName); err != nil {
		return persistenceError("complete "+domainName, err)
	}
	return nil
}

const deleteIngestionQuery = `DELETE FROM domain_ingestion WHERE domain_name_text = ?`

// completeInTx deletes the ingestion row of a terminal write. A claimed
// queueKey must match exactly one row. Without one the normalized name is
// used and a missing row is accepted, so replays stay idempotent.
func completeInTx(ctx context.Context, tx *sqlx.Tx, queueKey, domainName string) error {
	if queueKey == "" {
		_, err := tx.ExecContext(ctx, tx.Rebind(deleteIngestionQuery), domainName)
		return err
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(deleteIngestionQuery), queueKey)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotQueued, queueKey)
	}
	return nil
}

// upsertColumns are the columns bound by Upsert, in order.
const upsertColumns = `
	domain_id, domain_name_text,
	semantic_content_type_text, semantic_primary_topic_text, semantic_keywords_text_array,
	semantic_language_primary_text, semantic_communication_goal_text, semantic_author_type_text,
	semantic_audience_type_text, semantic_tone_text, semantic_formality_text, semantic_vibe_text,
	semantic_site_type_text, semantic_is_commercial_bool, semantic_is_spammy_bool,
	semantic_is_politically_loaded_bool, semantic_quality_score_float, semantic_summary_text,
	semantic_prior_knowledge_text, crawl_has_about_bool,
	semantic_exported_to_weaviate_bool, crawl_status_text,
	crawl_first_seen_at_ts, crawl_last_attempt_at_ts, crawl_processed_at_ts,
	audit_created_at_ts, audit_updated_at_ts`

// upsertAssignments overwrites every classification column on conflict.
// First-seen and created timestamps keep their original values.
const upsertAssignments = `
	semantic_content_type_text = excluded.semantic_content_type_text,
	semantic_primary_topic_text = excluded.semantic_primary_topic_text,
	semantic_keywords_text_array = excluded.semantic_keywords_text_array,
	semantic_language_primary_text = excluded.semantic_language_primary_text,
	semantic_communication_goal_text = excluded.semantic_communication_goal_text,
	semantic_author_type_text = excluded.semantic_author_type_text,
	semantic_audience_type_text = excluded.semantic_audience_type_text,
	semantic_tone_text = excluded.semantic_tone_text,
	semantic_formality_text = excluded.semantic_formality_text,
	semantic_vibe_text = excluded.semantic_vibe_text,
	semantic_site_type_text = excluded.semantic_site_type_text,
	semantic_is_commercial_bool = excluded.semantic_is_commercial_bool,
	semantic_is_spammy_bool = excluded.semantic_is_spammy_bool,
	semantic_is_politically_loaded_bool = excluded.semantic_is_politically_loaded_bool,
	semantic_quality_score_float = excluded.semantic_quality_score_float,
	semantic_summary_text = excluded.semantic_summary_text,
	semantic_prior_knowledge_text = excluded.semantic_prior_knowledge_text,
	semantic_exported_to_weaviate_bool = excluded.semantic_exported_to_weaviate_bool,
	crawl_status_text = excluded.crawl_status_text,
	crawl_has_about_bool = excluded.crawl_has_about_bool,
	crawl_last_attempt_at_ts = excluded.crawl_last_attempt_at_ts,
	crawl_processed_at_ts = excluded.crawl_processed_at_ts,
	audit_updated_at_ts = excluded.audit_updated_at_ts`

const upsertDomainQuery = `
	INSERT INTO domain (` + upsertColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (domain_id) DO UPDATE SET` + upsertAssignments

// Upsert writes the classification of a domain and completes its ingestion
// item in the same transaction. Replaying the same call leaves one row with
// the latest values.
func (s *SQLStore) Upsert(ctx context.Context, rec *model.DomainRecord) error {
	if err := prepareRecord(rec); err != nil {
		return persistenceError("upsert", err)
	}

	keywords, err := s.dialect.bindKeywords(rec.Classification.Keywords)
	if err != nil {
		return persistenceError("upsert "+rec.DomainName, err)
	}

	now := s.now()
	c := &rec.Classification
	ts := s.dialect.bindTime(now)
	args := []any{
		rec.ID.String(), rec.DomainName,
		c.ContentType, c.PrimaryTopic, keywords,
		c.Language, c.CommunicationGoal, c.AuthorType,
		c.AudienceType, c.Tone, c.Formality, c.Vibe,
		c.SiteType, c.IsCommercial, c.IsSpammy,
		c.IsPoliticallyLoaded, c.QualityScore, c.Summary,
		c.PriorKnowledge, rec.HasAboutPage,
		false, rec.CrawlStatus,
		ts, ts, ts,
		ts, ts,
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(upsertDomainQuery), args...); err != nil {
			return err
		}
		return completeInTx(ctx, tx, rec.QueueKey, rec.DomainName)
	})
	if err != nil {
		return persistenceError("upsert "+rec.DomainName, err)
	}

	rec.Exported = false
	rec.LastAttemptAt = now
	rec.ProcessedAt = now
	rec.UpdatedAt = now
	if rec.FirstSeenAt.IsZero() {
		rec.FirstSeenAt = now
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	return nil
}

const upsertFailureQuery = `
	INSERT INTO domain_failure (domain_id, domain_name_text, error_text, failed_at_ts)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (domain_id) DO UPDATE SET
		error_text = excluded.error_text,
		failed_at_ts = excluded.failed_at_ts`

// RecordFailure writes the failure record of a domain and completes its
// ingestion item in the same transaction. It never touches the domain table.
func (s *SQLStore) RecordFailure(ctx context.Context, rec *model.FailureRecord) error {
	if rec == nil || rec.DomainName == "" {
		return persistenceError("record failure", errors.New("failure record has no domain name"))
	}
	if rec.ID == uuid.Nil {
		rec.ID = model.DomainID(rec.DomainName)
	}
	if rec.FailedAt.IsZero() {
		rec.FailedAt = s.now()
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(upsertFailureQuery),
			rec.ID.String(), rec.DomainName, rec.ErrorText, s.dialect.bindTime(rec.FailedAt))
		if err != nil {
			return err
		}
		return completeInTx(ctx, tx, rec.QueueKey, rec.DomainName)
	})
	if err != nil {
		return persistenceError("record failure "+rec.DomainName, err)
	}
	return nil
}

const enqueueQuery = `
	INSERT INTO domain_ingestion (domain_name_text, public_suffix_text, discovered_at_ts)
	VALUES (?, ?, ?)
	ON CONFLICT (domain_name_text) DO NOTHING`

// Enqueue inserts new ingestion items, ignoring names that are already queued.
func (s *SQLStore) Enqueue(ctx context.Context, items ...model.IngestionItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(enqueueQuery)
		for _, item := range items {
			name := model.NormalizeDomain(item.DomainName)
			if name == "" {
				continue
			}
			discovered := item.DiscoveredAt
			if discovered.IsZero() {
				discovered = s.now()
			}
			res, err := tx.ExecContext(ctx, query, name, item.PublicSuffix, s.dialect.bindTime(discovered.UTC()))
			if err != nil {
				return fmt.Errorf("enqueue %s: %w", name, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, persistenceError("enqueue", err)
	}
	return inserted, nil
}

const releaseStaleQuery = `
	UPDATE domain_ingestion SET locked_at_ts = NULL
	WHERE locked_at_ts IS NOT NULL AND locked_at_ts < ?`

// ReleaseStale unlocks items claimed before now-olderThan.
func (s *SQLStore) ReleaseStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, s.db.Rebind(releaseStaleQuery), s.dialect.bindTime(cutoff))
	if err != nil {
		return 0, persistenceError("release stale claims", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, persistenceError("release stale claims", err)
	}
	return int(n), nil
}

// Stats counts pending, locked, classified and failed domains. The four
// counts run concurrently.
func (s *SQLStore) Stats(ctx context.Context) (*model.QueueStats, error) {
	var stats model.QueueStats

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM domain_ingestion WHERE locked_at_ts IS NULL`, &stats.Pending},
		{`SELECT COUNT(*) FROM domain_ingestion WHERE locked_at_ts IS NOT NULL`, &stats.Locked},
		{`SELECT COUNT(*) FROM domain`, &stats.Classified},
		{`SELECT COUNT(*) FROM domain_failure`, &stats.Failed},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counts {
		g.Go(func() error {
			if err := s.db.GetContext(gctx, c.dst, c.query); err != nil {
				return fmt.Errorf("failed to count rows: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// domainColumns is the column list of every domain SELECT.
const domainColumns = upsertColumns

// ListDomains returns classified domains, most recently processed first.
func (s *SQLStore) ListDomains(ctx context.Context, limit int) ([]*model.DomainRecord, error) {
	query := `SELECT ` + domainColumns + ` FROM domain ORDER BY crawl_processed_at_ts DESC, domain_name_text`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var results []*model.DomainRecord
	for rows.Next() {
		rec, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// ListFailures returns failure records, most recent first.
func (s *SQLStore) ListFailures(ctx context.Context, limit int) ([]*model.FailureRecord, error) {
	query := `SELECT domain_id, domain_name_text, error_text, failed_at_ts
		FROM domain_failure ORDER BY failed_at_ts DESC, domain_name_text`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list failures: %w", err)
	}
	defer rows.Close()

	var results []*model.FailureRecord
	for rows.Next() {
		var (
			rec      model.FailureRecord
			id       string
			failedAt string
		)
		if err := rows.Scan(&id, &rec.DomainName, &rec.ErrorText, &failedAt); err != nil {
			return nil, fmt.Errorf("failed to scan failure record: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid failure id %q: %w", id, err)
		}
		rec.FailedAt = parseTimestamp(failedAt)
		results = append(results, &rec)
	}
	return results, rows.Err()
}

// rowScanner is satisfied by *sql.Row, *sql.Rows and their sqlx variants.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDomain(row rowScanner) (*model.DomainRecord, error) {
	var (
		rec      model.DomainRecord
		id       string
		keywords keywordList

		firstSeen, lastAttempt, processed, created, updated string
	)
	c := &rec.Classification

	err := row.Scan(
		&id, &rec.DomainName,
		&c.ContentType, &c.PrimaryTopic, &keywords,
		&c.Language, &c.CommunicationGoal, &c.AuthorType,
		&c.AudienceType, &c.Tone, &c.Formality, &c.Vibe,
		&c.SiteType, &c.IsCommercial, &c.IsSpammy,
		&c.IsPoliticallyLoaded, &c.QualityScore, &c.Summary,
		&c.PriorKnowledge, &rec.HasAboutPage,
		&rec.Exported, &rec.CrawlStatus,
		&firstSeen, &lastAttempt, &processed,
		&created, &updated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan domain record: %w", err)
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid domain id %q: %w", id, err)
	}
	c.Keywords = []string(keywords)
	rec.FirstSeenAt = parseTimestamp(firstSeen)
	rec.LastAttemptAt = parseTimestamp(lastAttempt)
	rec.ProcessedAt = parseTimestamp(processed)
	rec.CreatedAt = parseTimestamp(created)
	rec.UpdatedAt = parseTimestamp(updated)
	return &rec, nil
}

// inTx runs fn inside a transaction, committing on success.
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// prepareRecord normalizes the classification before it is written.
func prepareRecord(rec *model.DomainRecord) error {
	if rec == nil || rec.DomainName == "" {
		return errors.New("domain record has no domain name")
	}
	rec.Classification.Normalize()
	if err := rec.Classification.Validate(); err != nil {
		return err
	}
	if rec.ID == uuid.Nil {
		rec.ID = model.DomainID(rec.DomainName)
	}
	if rec.CrawlStatus == "" {
		rec.CrawlStatus = model.CrawlStatusSuccess
	}
	return nil
}

// keywordList scans the keywords column of either backend: a PostgreSQL
// text array ("{a,b}") or a JSON array ("[\"a\",\"b\"]") stored by SQLite.
type keywordList []string

// Scan implements sql.Scanner.
func (k *keywordList) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*k = []string{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported keywords type %T", src)
	}

	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return fmt.Errorf("failed to parse keywords: %w", err)
		}
		*k = out
		return nil
	}

	var arr pq.StringArray
	if err := arr.Scan(raw); err != nil {
		return fmt.Errorf("failed to parse keywords: %w", err)
	}
	*k = []string(arr)
	return nil
}
