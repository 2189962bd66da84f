package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Unit is the set of stores bound to a single transaction. Passed to the
// function given to WithTx so every write inside it either all lands or
// all rolls back together.
type Unit struct {
	Tx         *sql.Tx
	Chunks     ChunkStore
	Locations  LocationStore
	Vectors    VectorStore
	Graph      GraphStore
	Modules    ModuleStore
	Metadata   MetadataStore
	IndexState IndexStateStore
}

// WithTx runs fn inside a transaction against db, committing if fn
// returns nil and rolling back otherwise. Grounded on cortex's
// graph_writer.go/chunk_writer.go pattern of accepting either a shared
// *sql.DB or an already-open *sql.Tx; here that's made explicit as a
// single Unit-of-work helper. ingest.Syncer does not use it: its writes
// go through DB's stores directly, each statement on its own.
func (d *DB) WithTx(ctx context.Context, fn func(u *Unit) error) error {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: beginning transaction: %w", err)
	}

	u := &Unit{
		Tx:         tx,
		Chunks:     &sqliteChunkStore{db: tx},
		Locations:  &sqliteLocationStore{db: tx},
		Vectors:    &sqliteVectorStore{db: tx},
		Graph:      &sqliteGraphStore{db: tx},
		Modules:    &sqliteModuleStore{db: tx},
		Metadata:   &sqliteMetadataStore{db: tx},
		IndexState: &sqliteIndexStateStore{db: tx},
	}

	if err := fn(u); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: committing transaction: %w", err)
	}
	return nil
}
