package test_utils

import (
	"database/sql"
	"testing"

	"github.com/klokku/studyplan/internal/database"
)

// NewInMemoryDB creates a migrated in-memory SQLite database for testing.
// Each database is completely isolated from others.
func NewInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
