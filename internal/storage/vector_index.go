package storage

import (
	"database/sql"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// InitVectorExtension registers the sqlite-vec extension with the sqlite3
// driver. Must be called once, before opening any connection that needs
// vector search.
func InitVectorExtension() {
	sqlite_vec.Auto()
}

// CreateVectorIndex creates the vec0 virtual table backing nearest-neighbor
// search over chunk embeddings. Keyed by content hash rather than cortex's
// chunk_id, so the same embedding is shared by every location of a given
// hash.
func CreateVectorIndex(db *sql.DB, dimensions int) error {
	createSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunks_vec USING vec0(
			hash TEXT PRIMARY KEY,
			embedding float[%d]
		)
	`, dimensions)

	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	return nil
}
