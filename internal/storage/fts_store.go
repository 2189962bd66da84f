package storage

import (
	"context"
	"fmt"

	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/cmerrors"
)

// FTSMatch is one keyword-search hit: a chunk hash, its BM25 rank (more
// negative is more relevant, per SQLite FTS5 convention), and a
// highlighted snippet.
type FTSMatch struct {
	Hash    chunk.ContentHash
	Rank    float64
	Snippet string
}

// FTSIndex performs keyword search over chunks_fts, the FTS5 external
// content table kept in sync with chunks via triggers (schema.go).
// Grounded on cortex's fts_index.go QueryFTS/BuildFTSQuery, rebuilt
// against chunks_fts's symbol_name/signature/docstring/content columns.
type FTSIndex interface {
	Query(ctx context.Context, ftsQuery string, limit int) ([]FTSMatch, error)
}

type sqliteFTSIndex struct {
	db querier
}

func (s *sqliteFTSIndex) Query(ctx context.Context, ftsQuery string, limit int) ([]FTSMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunks.hash, chunks_fts.rank,
			snippet(chunks_fts, 3, '<mark>', '</mark>', '...', 24) as snip
		FROM chunks_fts
		JOIN chunks ON chunks.rowid = chunks_fts.rowid
		WHERE chunks_fts MATCH ?
		ORDER BY chunks_fts.rank
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrFTSIndex, cmerrors.KindStorageError, err)
	}
	defer rows.Close()

	var matches []FTSMatch
	for rows.Next() {
		var hashHex, snip string
		var rank float64
		if err := rows.Scan(&hashHex, &rank, &snip); err != nil {
			return nil, fmt.Errorf("storage: scanning fts match: %w", err)
		}
		hash, err := chunk.ParseContentHash(hashHex)
		if err != nil {
			return nil, fmt.Errorf("storage: parsing fts match hash: %w", err)
		}
		matches = append(matches, FTSMatch{Hash: hash, Rank: rank, Snippet: snip})
	}
	return matches, rows.Err()
}

// BuildFTSQuery escapes user input for safe inclusion in an FTS5 MATCH
// query, optionally wrapping it as a phrase.
func BuildFTSQuery(input string, isPhrase bool) string {
	escaped := escapeFTSQuery(input)
	if isPhrase {
		return fmt.Sprintf(`"%s"`, escaped)
	}
	return escaped
}

func escapeFTSQuery(input string) string {
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		if input[i] == '"' {
			out = append(out, '"', '"')
			continue
		}
		out = append(out, input[i])
	}
	return string(out)
}
