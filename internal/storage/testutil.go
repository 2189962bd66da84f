package storage

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func init() {
	vectorExtensionOnce.Do(InitVectorExtension)
}

// testDims is the embedding width used by every test database; small
// enough to keep vec0 inserts cheap and fixed so tests never depend on
// a real embedding provider's configured dimensionality.
const testDims = 8

// NewTestDB opens an in-memory SQLite database with the full schema
// (tables, indexes, FTS5, vec0) already created, foreign keys enabled,
// and cleanup registered via t.Cleanup. Grounded on the teacher's
// storage/testutil.go NewTestDB, adapted to CreateSchema's dims
// parameter.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	require.NoError(t, CreateSchema(db, testDims))

	return db
}
