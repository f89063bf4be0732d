// Package registry persists detection results keyed by a content hash of
// the sampled text, so repeated runs against the same input skip the
// candidate search entirely.
//
// Backends register themselves from init() in their own packages and are
// selected by kind at construction time. The core detection code never
// imports a driver.
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// TableName is the table every backend stores records in.
const TableName = "sniff_dialects"

// Config is the minimal configuration needed to create a Repository.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Record is one remembered detection result.
//
// Delimiter, Quote, and Escape hold the character as a string; the empty
// string means "none". Strings rather than runes keep the storage schema
// and JSON shapes trivial across backends.
type Record struct {
	// Hash is the hex SHA-256 of the sampled text (see HashText).
	Hash string

	Delimiter string
	Quote     string
	Escape    string

	// Score is the combined consistency score the winning dialect achieved.
	Score float64

	// RuleVersion is the cell classification rule version the result was
	// computed under. Lookups ignore records from other versions.
	RuleVersion int

	DetectedAt time.Time
}

// Repository is a backend-agnostic store of detection records.
//
// IMPORTANT: This interface is intentionally minimal and focused on what the
// CLI cache needs. Each backend implements the semantics in its own
// idiomatic way (Postgres ON CONFLICT, SQLite upsert, MSSQL MERGE).
type Repository interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// EnsureSchema creates the record table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// Save stores a record, replacing any previous record for the same hash.
	Save(ctx context.Context, rec Record) error

	// Lookup fetches the record for a hash. The second return is false when
	// no record exists.
	Lookup(ctx context.Context, hash string) (Record, bool, error)
}

// HashText returns the hex SHA-256 content hash used as the record key.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ---- backend factories ----

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//   - The kind string becomes the lookup key used by New.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. This is intentional, to fail fast and
//     avoid ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("registry: Register called with empty kind")
	}
	if f == nil {
		panic("registry: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("registry: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Concurrency:
//   - Safe for concurrent use with Register. New takes a read lock while
//     selecting the factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("registry: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported registry kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
