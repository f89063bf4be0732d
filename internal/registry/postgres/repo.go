package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sniff/internal/registry"
)

// Repo implements registry.Repository for Postgres.
//
// Upserts use INSERT ... ON CONFLICT (hash) DO UPDATE so reprocessing the
// same input is idempotent, matching the SQLite and MSSQL backends.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	registry.Register("postgres", New)
}

// New creates a Postgres-backed Repo.
//
// pgxpool defers establishing connections, so DSN problems may only surface
// on the first query rather than here.
func New(ctx context.Context, cfg registry.Config) (registry.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

// Close closes the connection pool.
func (r *Repo) Close() {
	r.pool.Close()
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, createTableSQL())
	return err
}

func (r *Repo) Save(ctx context.Context, rec registry.Record) error {
	_, err := r.pool.Exec(ctx, upsertSQL(),
		rec.Hash,
		rec.Delimiter,
		rec.Quote,
		rec.Escape,
		rec.Score,
		rec.RuleVersion,
		rec.DetectedAt.UTC(),
	)
	return err
}

func (r *Repo) Lookup(ctx context.Context, hash string) (registry.Record, bool, error) {
	var rec registry.Record

	row := r.pool.QueryRow(ctx, lookupSQL(), hash)
	err := row.Scan(&rec.Hash, &rec.Delimiter, &rec.Quote, &rec.Escape, &rec.Score, &rec.RuleVersion, &rec.DetectedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return registry.Record{}, false, nil
	}
	if err != nil {
		return registry.Record{}, false, err
	}
	return rec, true, nil
}

// ---- SQL builders (pure, tested without a database) ----

func createTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS ` + registry.TableName + ` (
  hash TEXT PRIMARY KEY,
  delimiter TEXT NOT NULL,
  quote TEXT NOT NULL,
  escape TEXT NOT NULL,
  score DOUBLE PRECISION NOT NULL,
  rule_version INTEGER NOT NULL,
  detected_at TIMESTAMPTZ NOT NULL
)`
}

func upsertSQL() string {
	return `INSERT INTO ` + registry.TableName + ` (hash, delimiter, quote, escape, score, rule_version, detected_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (hash) DO UPDATE SET
  delimiter = EXCLUDED.delimiter,
  quote = EXCLUDED.quote,
  escape = EXCLUDED.escape,
  score = EXCLUDED.score,
  rule_version = EXCLUDED.rule_version,
  detected_at = EXCLUDED.detected_at`
}

func lookupSQL() string {
	return `SELECT hash, delimiter, quote, escape, score, rule_version, detected_at
FROM ` + registry.TableName + ` WHERE hash = $1`
}
