package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteFileName is the database file created in the data directory.
const SQLiteFileName = "domainscan.db"

// Options configures SQLite behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers do not block the writer.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// OpenSQLite opens or creates the SQLite store in dbDir and applies the
// embedded migrations.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func OpenSQLite(ctx context.Context, dbDir string, opts Options) (*SQLStore, error) {
	dbPath := filepath.Join(dbDir, SQLiteFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer. A single connection also makes every
	// claim statement run alone, which is what keeps claims exclusive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := newSQLStore(db, sqliteDialect{})
	if _, err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

type sqliteDialect struct{}

// claimQuery is a single statement; SQLite serializes writers, so there is
// no row lock to skip.
func (sqliteDialect) claimQuery() string {
	return `
	UPDATE domain_ingestion
	SET locked_at_ts = ?
	WHERE domain_name_text = (
		SELECT domain_name_text
		FROM domain_ingestion
		WHERE locked_at_ts IS NULL
		ORDER BY discovered_at_ts, domain_name_text
		LIMIT 1
	)
	RETURNING domain_name_text, public_suffix_text, discovered_at_ts, locked_at_ts`
}

// bindTime stores timestamps as fixed-width UTC text so that string order
// equals time order.
func (sqliteDialect) bindTime(t time.Time) any {
	return formatTimestamp(t)
}

func (sqliteDialect) bindKeywords(keywords []string) (any, error) {
	if keywords == nil {
		keywords = []string{}
	}
	b, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize keywords: %w", err)
	}
	return string(b), nil
}

func (sqliteDialect) migrate(db *sql.DB) (uint, error) {
	return migrateSQLite(db)
}

// sqliteTimestampFormat is the fixed-width layout written by bindTime.
const sqliteTimestampFormat = "2006-01-02 15:04:05.000000000"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(sqliteTimestampFormat)
}

// timestampFormats contains the timestamp formats either backend may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	sqliteTimestampFormat,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",  // ISO 8601 without timezone
	time.RFC3339Nano,       // RFC3339 with nanoseconds
	time.RFC3339,           // Full RFC3339 format
	"2006-01-02 15:04:05.999999999-07:00",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
