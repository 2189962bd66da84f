package storage

// FTS5 table creation and sync triggers live in schema.go
// (createChunksFTSTable, createFTSTriggers) since chunks_fts is an
// external-content table tied to chunks' rowid lifecycle. The query-side
// API is in fts_store.go.
