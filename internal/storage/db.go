// Package storage is the single SQLite-backed persistence layer for the
// engine: content-addressed chunks, their git-derived locations, the code
// graph, full-text and vector search indexes, and module/metadata
// bookkeeping — all in one file, behind one *sql.DB. Grounded on cortex's
// internal/storage package (mattn/go-sqlite3, asg017/sqlite-vec-go-bindings,
// Masterminds/squirrel query building, FTS5 virtual tables), rebuilt
// against the schema in DESIGN.md rather than cortex's file/type/function
// tables.
package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mvp-joe/codemate/internal/config"
)

var vectorExtensionOnce sync.Once

// DB is the engine's storage handle: one *sql.DB plus every store bound
// to it.
type DB struct {
	Conn     *sql.DB
	Chunks   ChunkStore
	Locations LocationStore
	Vectors  VectorStore
	FTS      FTSIndex
	Graph    GraphStore
	Modules  ModuleStore
	Metadata MetadataStore
	IndexState IndexStateStore
}

// Open opens (creating if necessary) the SQLite database at storageCfg's
// DatabasePath, ensures the schema exists at dims embedding dimensions,
// and wires up every store, including an otter-backed read-through cache
// in front of Chunks sized per storageCfg. Callers should Close the
// returned DB when done.
func Open(storageCfg config.StorageConfig, dims int) (*DB, error) {
	vectorExtensionOnce.Do(InitVectorExtension)

	conn, err := sql.Open("sqlite3", storageCfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("storage: opening %s: %w", storageCfg.DatabasePath, err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: enabling foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: checking schema version: %w", err)
	}
	if version == "0" {
		if err := CreateSchema(conn, dims); err != nil {
			conn.Close()
			return nil, fmt.Errorf("storage: creating schema: %w", err)
		}
	}

	rawChunks := &sqliteChunkStore{db: conn}
	maxAge := time.Duration(storageCfg.CacheMaxAgeDays) * 24 * time.Hour
	cachedChunks, err := NewCachedChunkStore(rawChunks, storageCfg.CacheCapacity, maxAge)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: building chunk cache: %w", err)
	}

	return &DB{
		Conn:       conn,
		Chunks:     cachedChunks,
		Locations:  &sqliteLocationStore{db: conn},
		Vectors:    &sqliteVectorStore{db: conn},
		FTS:        &sqliteFTSIndex{db: conn},
		Graph:      &sqliteGraphStore{db: conn},
		Modules:    &sqliteModuleStore{db: conn},
		Metadata:   &sqliteMetadataStore{db: conn},
		IndexState: &sqliteIndexStateStore{db: conn},
	}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if cached, ok := d.Chunks.(*CachedChunkStore); ok {
		cached.Close()
	}
	return d.Conn.Close()
}
