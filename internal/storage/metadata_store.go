package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/cmerrors"
)

// MetadataStore persists arbitrary key/value annotations attached to a
// chunk's content hash (e.g. language-server diagnostics, lint findings,
// review notes) without requiring a schema change. New table, not present
// in the teacher; there was no per-chunk annotation concept in cortex to
// adapt from.
type MetadataStore interface {
	Set(ctx context.Context, hash chunk.ContentHash, key string, value any) error
	Get(ctx context.Context, hash chunk.ContentHash, key string) (any, bool, error)
	All(ctx context.Context, hash chunk.ContentHash) (map[string]any, error)
}

type sqliteMetadataStore struct {
	db querier
}

func (s *sqliteMetadataStore) Set(ctx context.Context, hash chunk.ContentHash, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = sq.Insert("metadata").
		Columns("content_hash", "key", "value_json").
		Values(hash.String(), key, string(b)).
		Suffix("ON CONFLICT(content_hash, key) DO UPDATE SET value_json = excluded.value_json").
		RunWith(sqExecer{ctx, s.db}).
		Exec()
	if err != nil {
		return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)
	}
	return nil
}

func (s *sqliteMetadataStore) Get(ctx context.Context, hash chunk.ContentHash, key string) (any, bool, error) {
	var valueJSON string
	err := s.db.QueryRowContext(ctx, "SELECT value_json FROM metadata WHERE content_hash = ? AND key = ?", hash.String(), key).Scan(&valueJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	var value any
	if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *sqliteMetadataStore) All(ctx context.Context, hash chunk.ContentHash) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value_json FROM metadata WHERE content_hash = ?", hash.String())
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()

	result := make(map[string]any)
	for rows.Next() {
		var key, valueJSON string
		if err := rows.Scan(&key, &valueJSON); err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, rows.Err()
}
