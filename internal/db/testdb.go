package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB returns a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	return openTestDB(t, ":memory:")
}

// NewTestFileDB returns a schema-initialized database file under t.TempDir and
// its path, for tests that close and reopen the database.
func NewTestFileDB(t testing.TB) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reunite-test.sqlite3")
	return openTestDB(t, path), path
}

func openTestDB(t testing.TB, path string) *sql.DB {
	t.Helper()

	database, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := EnsureSchema(database); err != nil {
		database.Close()
		t.Fatalf("creating test database schema: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database
}
