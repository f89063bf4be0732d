package mssql

import (
	"context"
	"database/sql"

	_ "github.com/microsoft/go-mssqldb"

	"sniff/internal/registry"
)

// Repo implements registry.Repository for Microsoft SQL Server.
//
// SQL Server has no ON CONFLICT clause, so Save uses a MERGE statement over
// the hash key. MERGE under concurrency can still race without a HOLDLOCK
// hint, so the statement takes one; the table is tiny and contention is
// per-hash, so the cost is negligible.
type Repo struct {
	db *sql.DB
}

func init() {
	registry.Register("mssql", New)
}

// New constructs a Repo using database/sql and the "sqlserver" driver.
//
// This method validates connectivity via PingContext.
func New(ctx context.Context, cfg registry.Config) (registry.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
	_, err := r.db.ExecContext(ctx, mergeSQL(),
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

	row := r.db.QueryRowContext(ctx, lookupSQL(), hash)
	err := row.Scan(&rec.Hash, &rec.Delimiter, &rec.Quote, &rec.Escape, &rec.Score, &rec.RuleVersion, &rec.DetectedAt)
	if err == sql.ErrNoRows {
		return registry.Record{}, false, nil
	}
	if err != nil {
		return registry.Record{}, false, err
	}
	return rec, true, nil
}

// ---- SQL builders (pure, tested without a database) ----

func createTableSQL() string {
	return `IF OBJECT_ID(N'` + registry.TableName + `', N'U') IS NULL
CREATE TABLE ` + registry.TableName + ` (
  hash NVARCHAR(64) PRIMARY KEY,
  delimiter NVARCHAR(8) NOT NULL,
  quote NVARCHAR(8) NOT NULL,
  escape NVARCHAR(8) NOT NULL,
  score FLOAT NOT NULL,
  rule_version INT NOT NULL,
  detected_at DATETIMEOFFSET NOT NULL
)`
}

func mergeSQL() string {
	return `MERGE ` + registry.TableName + ` WITH (HOLDLOCK) AS t
USING (SELECT @p1 AS hash) AS s ON t.hash = s.hash
WHEN MATCHED THEN UPDATE SET
  delimiter = @p2, quote = @p3, escape = @p4,
  score = @p5, rule_version = @p6, detected_at = @p7
WHEN NOT MATCHED THEN INSERT (hash, delimiter, quote, escape, score, rule_version, detected_at)
  VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7);`
}

func lookupSQL() string {
	return `SELECT hash, delimiter, quote, escape, score, rule_version, detected_at
FROM ` + registry.TableName + ` WHERE hash = @p1`
}
