// Package database provides the work queue and result store of domainscan.
//
// Two backends implement Store:
//   - PostgresStore (github.com/jmoiron/sqlx + github.com/lib/pq) is the
//     production backend shared by every ingestion instance. Claims use
//     FOR UPDATE SKIP LOCKED so concurrent claimants never block on, or
//     receive, each other's rows.
//   - SQLiteStore (modernc.org/sqlite) is a single-file backend for
//     single-host runs and tests. SQLite serializes writers, so a claim is a
//     single UPDATE ... RETURNING statement on a single connection.
//
// Both backends share one schema, applied by embedded golang-migrate
// migrations:
//
//	domain_ingestion  pending work, one row per domain name
//	domain            one classification per domain, keyed by a UUIDv5 of the name
//	domain_failure    one failure record per domain, same key
//
// Persisting an outcome (Upsert or RecordFailure) deletes the ingestion row
// in the same transaction, so a processed domain can never be claimed again.
package database
