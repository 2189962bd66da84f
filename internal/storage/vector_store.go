package storage

import (
	"context"
	"fmt"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/cmerrors"
)

// VectorMatch is one nearest-neighbor hit: a content hash and its cosine
// distance to the query embedding (lower is closer).
type VectorMatch struct {
	Hash     chunk.ContentHash
	Distance float64
}

// VectorStore indexes chunk embeddings for similarity search, backed by
// sqlite-vec's vec0 virtual table. Grounded on cortex's vector_index.go,
// rekeyed from chunk_id to content hash and wrapped behind an interface so
// the search engine can depend on it without importing sqlite-vec
// directly.
type VectorStore interface {
	Upsert(ctx context.Context, hash chunk.ContentHash, embedding []float32) error
	UpsertMany(ctx context.Context, embeddings map[chunk.ContentHash][]float32) error
	Delete(ctx context.Context, hash chunk.ContentHash) error
	// Query returns the limit nearest vectors to queryEmbedding. filter,
	// when non-empty, restricts the search to that set of candidate
	// hashes (spec.md §4.2's search(query_vector, k, filter?)); a nil or
	// empty filter searches the full universe.
	Query(ctx context.Context, queryEmbedding []float32, limit int, filter []chunk.ContentHash) ([]VectorMatch, error)
	Count(ctx context.Context) (int, error)
}

type sqliteVectorStore struct {
	db querier
}

func (s *sqliteVectorStore) Upsert(ctx context.Context, hash chunk.ContentHash, embedding []float32) error {
	return s.UpsertMany(ctx, map[chunk.ContentHash][]float32{hash: embedding})
}

// UpsertMany deletes then inserts each vector: vec0 virtual tables don't
// support INSERT OR REPLACE.
func (s *sqliteVectorStore) UpsertMany(ctx context.Context, embeddings map[chunk.ContentHash][]float32) error {
	for hash, emb := range embeddings {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks_vec WHERE hash = ?", hash.String()); err != nil {
			return cmerrors.Wrap(cmerrors.ErrVectorIndex, cmerrors.KindStorageError, err)
		}
		embBytes, err := sqlite_vec.SerializeFloat32(emb)
		if err != nil {
			return cmerrors.Wrap(cmerrors.ErrVectorIndex, cmerrors.KindStorageError, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO chunks_vec (hash, embedding) VALUES (?, ?)", hash.String(), embBytes); err != nil {
			return cmerrors.Wrap(cmerrors.ErrVectorIndex, cmerrors.KindStorageError, err)
		}
	}
	return nil
}

func (s *sqliteVectorStore) Delete(ctx context.Context, hash chunk.ContentHash) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks_vec WHERE hash = ?", hash.String()); err != nil {
		return cmerrors.Wrap(cmerrors.ErrVectorIndex, cmerrors.KindStorageError, err)
	}
	return nil
}

// Query runs cosine nearest-neighbor search over chunks_vec. When filter
// is non-empty, it is realised as a "WHERE hash IN (...)" restriction
// computed by the caller from LocationStore (spec.md §4.4's filter
// evaluation): the candidate set narrows the vec0 scan itself, so a
// filtered query still draws its top-limit hits from the filtered
// universe instead of truncating an unfiltered scan after the fact.
func (s *sqliteVectorStore) Query(ctx context.Context, queryEmbedding []float32, limit int, filter []chunk.ContentHash) ([]VectorMatch, error) {
	queryBytes, err := sqlite_vec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrVectorIndex, cmerrors.KindStorageError, err)
	}

	query := `
		SELECT hash, vec_distance_cosine(embedding, ?) as distance
		FROM chunks_vec
	`
	args := []any{queryBytes}

	if len(filter) > 0 {
		placeholders := make([]string, len(filter))
		for i, h := range filter {
			placeholders[i] = "?"
			args = append(args, h.String())
		}
		query += "WHERE hash IN (" + strings.Join(placeholders, ",") + ")\n"
	}

	query += "ORDER BY distance\nLIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrVectorIndex, cmerrors.KindStorageError, err)
	}
	defer rows.Close()

	var matches []VectorMatch
	for rows.Next() {
		var hashHex string
		var dist float64
		if err := rows.Scan(&hashHex, &dist); err != nil {
			return nil, fmt.Errorf("storage: scanning vector match: %w", err)
		}
		hash, err := chunk.ParseContentHash(hashHex)
		if err != nil {
			return nil, fmt.Errorf("storage: parsing vector match hash: %w", err)
		}
		matches = append(matches, VectorMatch{Hash: hash, Distance: dist})
	}
	return matches, rows.Err()
}

func (s *sqliteVectorStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks_vec").Scan(&count)
	if err != nil {
		return 0, cmerrors.Wrap(cmerrors.ErrVectorIndex, cmerrors.KindStorageError, err)
	}
	return count, nil
}
