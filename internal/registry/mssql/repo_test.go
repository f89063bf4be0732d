package mssql

import (
	"strings"
	"testing"

	"sniff/internal/registry"
)

// TestCreateTableSQL verifies guarded DDL: SQL Server has no CREATE TABLE
// IF NOT EXISTS, so the builder must use the OBJECT_ID guard.
func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	create := createTableSQL()
	if !strings.Contains(create, "IF OBJECT_ID") {
		t.Fatalf("create SQL missing existence guard:\n%s", create)
	}
	for _, col := range []string{"hash", "delimiter", "quote", "escape", "score", "rule_version", "detected_at"} {
		if !strings.Contains(create, col) {
			t.Fatalf("create SQL missing column %q:\n%s", col, create)
		}
	}
	if !strings.Contains(create, "DATETIMEOFFSET") {
		t.Fatalf("detected_at must be DATETIMEOFFSET on SQL Server:\n%s", create)
	}
}

// TestMergeSQL verifies upsert semantics: MERGE on hash with HOLDLOCK, both
// branches present, and a terminating semicolon (MERGE requires one).
func TestMergeSQL(t *testing.T) {
	t.Parallel()

	merge := mergeSQL()
	if !strings.Contains(merge, "MERGE "+registry.TableName+" WITH (HOLDLOCK)") {
		t.Fatalf("merge SQL missing HOLDLOCK hint:\n%s", merge)
	}
	if !strings.Contains(merge, "WHEN MATCHED THEN UPDATE") || !strings.Contains(merge, "WHEN NOT MATCHED THEN INSERT") {
		t.Fatalf("merge SQL missing a branch:\n%s", merge)
	}
	if !strings.HasSuffix(strings.TrimSpace(merge), ";") {
		t.Fatalf("MERGE must end with a semicolon:\n%s", merge)
	}
	for _, ph := range []string{"@p1", "@p2", "@p3", "@p4", "@p5", "@p6", "@p7"} {
		if !strings.Contains(merge, ph) {
			t.Fatalf("merge SQL missing placeholder %s:\n%s", ph, merge)
		}
	}
}

// TestLookupSQL verifies the hash filter and the column order Scan relies
// on.
func TestLookupSQL(t *testing.T) {
	t.Parallel()

	lookup := lookupSQL()
	if !strings.Contains(lookup, "WHERE hash = @p1") {
		t.Fatalf("lookup SQL must filter on hash:\n%s", lookup)
	}
	if !strings.Contains(lookup, "SELECT hash, delimiter, quote, escape, score, rule_version, detected_at") {
		t.Fatalf("lookup SQL column order changed; Scan depends on it:\n%s", lookup)
	}
}
