package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"sniff/internal/registry"
)

// Repo implements registry.Repository for SQLite.
//
// Key design points vs Postgres:
//   - SQLite has no native TIMESTAMPTZ type; modernc.org/sqlite stores
//     timestamps with TEXT affinity. DetectedAt is therefore stored as an
//     RFC3339Nano string for reliable round-trip behavior and easy
//     debugging.
//   - Upserts rely on ON CONFLICT over the hash primary key.
type Repo struct {
	db *sql.DB
}

func init() {
	registry.Register("sqlite", New)
}

func New(ctx context.Context, cfg registry.Config) (registry.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createTableSQL())
	return err
}

func (r *Repo) Save(ctx context.Context, rec registry.Record) error {
	_, err := r.db.ExecContext(ctx, upsertSQL(),
		rec.Hash,
		rec.Delimiter,
		rec.Quote,
		rec.Escape,
		rec.Score,
		rec.RuleVersion,
		rec.DetectedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (r *Repo) Lookup(ctx context.Context, hash string) (registry.Record, bool, error) {
	var rec registry.Record
	var detectedAt string

	row := r.db.QueryRowContext(ctx, lookupSQL(), hash)
	err := row.Scan(&rec.Hash, &rec.Delimiter, &rec.Quote, &rec.Escape, &rec.Score, &rec.RuleVersion, &detectedAt)
	if err == sql.ErrNoRows {
		return registry.Record{}, false, nil
	}
	if err != nil {
		return registry.Record{}, false, err
	}

	ts, err := time.Parse(time.RFC3339Nano, detectedAt)
	if err != nil {
		return registry.Record{}, false, err
	}
	rec.DetectedAt = ts
	return rec, true, nil
}

// ---- SQL builders (pure, tested without a database) ----

func createTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS ` + registry.TableName + ` (
  hash TEXT PRIMARY KEY,
  delimiter TEXT NOT NULL,
  quote TEXT NOT NULL,
  "escape" TEXT NOT NULL,
  score REAL NOT NULL,
  rule_version INTEGER NOT NULL,
  detected_at TEXT NOT NULL
)`
}

func upsertSQL() string {
	return `INSERT INTO ` + registry.TableName + ` (hash, delimiter, quote, "escape", score, rule_version, detected_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
  delimiter = excluded.delimiter,
  quote = excluded.quote,
  "escape" = excluded."escape",
  score = excluded.score,
  rule_version = excluded.rule_version,
  detected_at = excluded.detected_at`
}

func lookupSQL() string {
	return `SELECT hash, delimiter, quote, "escape", score, rule_version, detected_at
FROM ` + registry.TableName + ` WHERE hash = ?`
}
