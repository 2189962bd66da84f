package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CurrentSchemaVersion is bumped whenever the DDL below changes shape.
const CurrentSchemaVersion = "1"

// CreateSchema creates every table, index, and virtual table the engine
// needs in one SQLite file. Grounded on cortex's storage/schema.go:
// tables first inside one transaction, FTS5/vec0 virtual tables created
// outside it (both require top-level DDL), then a bootstrap metadata
// row. dims sets the vec0 table's embedding dimensionality and must
// match the configured embedding provider's Dimensions.
func CreateSchema(db *sql.DB, dims int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"chunks", createChunksTable},
		{"locations", createLocationsTable},
		{"graph_nodes", createGraphNodesTable},
		{"graph_edges", createGraphEdgesTable},
		{"edge_history", createEdgeHistoryTable},
		{"external_symbols", createExternalSymbolsTable},
		{"modules", createModulesTable},
		{"index_state", createIndexStateTable},
		{"metadata", createMetadataTable},
		{"meta", createMetaTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	if _, err := db.Exec(createChunksFTSTable); err != nil {
		return fmt.Errorf("failed to create chunks_fts table: %w", err)
	}
	if err := createFTSTriggers(db); err != nil {
		return fmt.Errorf("failed to create FTS triggers: %w", err)
	}

	if err := CreateVectorIndex(db, dims); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	tx, err = db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin metadata transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?), ('created_at', ?)`,
		CurrentSchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap meta: %w", err)
	}

	return tx.Commit()
}

// GetSchemaVersion retrieves the schema version from meta. Returns "0"
// if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='meta'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check meta existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in meta")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createChunksTable = `
CREATE TABLE chunks (
    hash TEXT PRIMARY KEY,
    language TEXT NOT NULL,
    kind TEXT NOT NULL,
    symbol_name TEXT,
    signature TEXT,
    docstring TEXT,
    content TEXT NOT NULL,
    byte_start INTEGER NOT NULL,
    byte_end INTEGER NOT NULL,
    line_start INTEGER NOT NULL,
    line_end INTEGER NOT NULL,
    created_at TEXT NOT NULL
)
`

const createLocationsTable = `
CREATE TABLE locations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    content_hash TEXT NOT NULL,
    repo_uri TEXT NOT NULL,
    branch TEXT,
    commit_hash TEXT NOT NULL,
    blob_hash TEXT,
    file_path TEXT NOT NULL,
    byte_start INTEGER NOT NULL,
    byte_end INTEGER NOT NULL,
    line_start INTEGER NOT NULL,
    line_end INTEGER NOT NULL,
    author TEXT,
    authored_at TEXT,
    committer TEXT,
    committed_at TEXT,
    commit_message TEXT,
    FOREIGN KEY (content_hash) REFERENCES chunks(hash) ON DELETE CASCADE,
    UNIQUE(content_hash, repo_uri, commit_hash, file_path, byte_start)
)
`

const createGraphNodesTable = `
CREATE TABLE graph_nodes (
    id TEXT PRIMARY KEY,
    node_type TEXT NOT NULL,
    properties_json TEXT
)
`

const createGraphEdgesTable = `
CREATE TABLE graph_edges (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    target TEXT NOT NULL,
    kind TEXT NOT NULL,
    created_commit TEXT,
    created_at TEXT,
    properties_json TEXT,
    UNIQUE(source, target, kind)
)
`

const createEdgeHistoryTable = `
CREATE TABLE edge_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    target TEXT NOT NULL,
    kind TEXT NOT NULL,
    event TEXT NOT NULL,
    commit_hash TEXT NOT NULL,
    authored_at TEXT NOT NULL,
    author_email TEXT,
    properties_json TEXT
)
`

const createExternalSymbolsTable = `
CREATE TABLE external_symbols (
    fqn TEXT PRIMARY KEY,
    language TEXT NOT NULL,
    package_name TEXT,
    kind TEXT,
    properties_json TEXT
)
`

const createModulesTable = `
CREATE TABLE modules (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    path TEXT NOT NULL,
    language TEXT NOT NULL,
    project_type TEXT,
    parent_id TEXT,
    FOREIGN KEY (parent_id) REFERENCES modules(id) ON DELETE SET NULL
)
`

const createIndexStateTable = `
CREATE TABLE index_state (
    repo_uri TEXT NOT NULL,
    branch TEXT NOT NULL,
    last_commit_hash TEXT NOT NULL,
    indexed_at TEXT NOT NULL,
    PRIMARY KEY (repo_uri, branch)
)
`

const createMetadataTable = `
CREATE TABLE metadata (
    content_hash TEXT NOT NULL,
    key TEXT NOT NULL,
    value_json TEXT,
    PRIMARY KEY (content_hash, key),
    FOREIGN KEY (content_hash) REFERENCES chunks(hash) ON DELETE CASCADE
)
`

const createMetaTable = `
CREATE TABLE meta (
    key TEXT PRIMARY KEY,
    value TEXT
)
`

const createChunksFTSTable = `
CREATE VIRTUAL TABLE chunks_fts USING fts5(
    symbol_name, signature, docstring, content,
    content=chunks, content_rowid=rowid,
    tokenize = "unicode61 separators '._'"
)
`

func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_locations_content_hash ON locations(content_hash)",
		"CREATE INDEX idx_locations_repo_branch ON locations(repo_uri, branch)",
		"CREATE INDEX idx_locations_file_path ON locations(file_path)",
		"CREATE INDEX idx_locations_commit_hash ON locations(commit_hash)",
		"CREATE INDEX idx_locations_author ON locations(author)",
		"CREATE INDEX idx_locations_authored_at ON locations(authored_at)",
		"CREATE INDEX idx_locations_branch ON locations(branch)",

		"CREATE INDEX idx_graph_nodes_type ON graph_nodes(node_type)",

		"CREATE INDEX idx_graph_edges_source ON graph_edges(source)",
		"CREATE INDEX idx_graph_edges_target ON graph_edges(target)",
		"CREATE INDEX idx_graph_edges_kind ON graph_edges(kind)",

		"CREATE INDEX idx_edge_history_triple ON edge_history(source, target, kind)",
		"CREATE INDEX idx_edge_history_commit ON edge_history(commit_hash)",
		"CREATE INDEX idx_edge_history_authored_at ON edge_history(authored_at)",

		"CREATE INDEX idx_modules_parent_id ON modules(parent_id)",
		"CREATE INDEX idx_modules_path ON modules(path)",

		"CREATE INDEX idx_chunks_symbol_name ON chunks(symbol_name)",
		"CREATE INDEX idx_chunks_kind ON chunks(kind)",
		"CREATE INDEX idx_chunks_language ON chunks(language)",
	}
}

// createFTSTriggers keeps chunks_fts in sync with chunks via SQLite's
// FTS5 "external content" triggers, following cortex's files_fts
// trigger trio (insert/update/delete), adapted to chunks' immutability:
// chunks are never updated in place, only inserted and (rarely) deleted
// when garbage-collected, so no update trigger is needed.
func createFTSTriggers(db *sql.DB) error {
	triggers := []string{
		`CREATE TRIGGER chunks_fts_insert AFTER INSERT ON chunks
		BEGIN
			INSERT INTO chunks_fts(rowid, symbol_name, signature, docstring, content)
			VALUES (NEW.rowid, NEW.symbol_name, NEW.signature, NEW.docstring, NEW.content);
		END`,

		`CREATE TRIGGER chunks_fts_delete AFTER DELETE ON chunks
		BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, symbol_name, signature, docstring, content)
			VALUES ('delete', OLD.rowid, OLD.symbol_name, OLD.signature, OLD.docstring, OLD.content);
		END`,
	}

	for i, trigger := range triggers {
		if _, err := db.Exec(trigger); err != nil {
			return fmt.Errorf("failed to create trigger %d: %w", i+1, err)
		}
	}

	return nil
}
