package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// OpenPostgres connects to PostgreSQL using dsn and verifies the connection.
// It does not apply migrations; call Migrate for that.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return NewPostgresStore(db), nil
}

// NewPostgresStore wraps an existing PostgreSQL connection pool.
func NewPostgresStore(db *sqlx.DB) *SQLStore {
	return newSQLStore(db, postgresDialect{})
}

type postgresDialect struct{}

// claimQuery locks the oldest unlocked row and skips rows locked by
// concurrent claimants instead of waiting for them.
func (postgresDialect) claimQuery() string {
	return `
	WITH next AS (
		SELECT domain_name_text
		FROM domain_ingestion
		WHERE locked_at_ts IS NULL
		ORDER BY discovered_at_ts, domain_name_text
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	)
	UPDATE domain_ingestion AS di
	SET locked_at_ts = ?
	FROM next
	WHERE di.domain_name_text = next.domain_name_text
	RETURNING di.domain_name_text, di.public_suffix_text, di.discovered_at_ts, di.locked_at_ts`
}

func (postgresDialect) bindTime(t time.Time) any {
	return t
}

func (postgresDialect) bindKeywords(keywords []string) (any, error) {
	if keywords == nil {
		keywords = []string{}
	}
	return pq.Array(keywords), nil
}

func (postgresDialect) migrate(db *sql.DB) (uint, error) {
	return migratePostgres(db)
}
