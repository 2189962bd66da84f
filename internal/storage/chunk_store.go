package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/cmerrors"
)

// ChunkStore persists and retrieves content-addressed chunks. Chunks are
// immutable: Put is an upsert only in the sense that inserting the same
// hash twice is a no-op, never a content change (Hash == SumContent
// guarantees that two Puts with the same hash always carry identical
// content). Grounded on cortex's chunk_writer.go/chunk_reader.go, rebuilt
// against the chunks table in DESIGN.md instead of cortex's file-scoped
// chunk rows.
type ChunkStore interface {
	Put(ctx context.Context, c chunk.Chunk) error
	PutMany(ctx context.Context, chunks []chunk.Chunk) error
	Get(ctx context.Context, hash chunk.ContentHash) (*chunk.Chunk, error)
	GetMany(ctx context.Context, hashes []chunk.ContentHash) ([]chunk.Chunk, error)
}

type sqliteChunkStore struct {
	db querier
}

func (s *sqliteChunkStore) Put(ctx context.Context, c chunk.Chunk) error {
	return s.PutMany(ctx, []chunk.Chunk{c})
}

func (s *sqliteChunkStore) PutMany(ctx context.Context, chunks []chunk.Chunk) error {
	for _, c := range chunks {
		_, err := sq.Insert("chunks").
			Columns("hash", "language", "kind", "symbol_name", "signature", "docstring",
				"content", "byte_start", "byte_end", "line_start", "line_end", "created_at").
			Values(c.Hash.String(), string(c.Language), string(c.Kind), c.SymbolName, c.Signature, c.Docstring,
				c.Content, c.ByteRange.Start, c.ByteRange.End, c.LineRange.Start, c.LineRange.End,
				time.Now().UTC().Format(time.RFC3339)).
			Suffix("ON CONFLICT(hash) DO NOTHING").
			RunWith(sqExecer{ctx, s.db}).
			Exec()
		if err != nil {
			return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)
		}
	}
	return nil
}

func (s *sqliteChunkStore) Get(ctx context.Context, hash chunk.ContentHash) (*chunk.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT hash, language, kind, symbol_name, signature, docstring, content, byte_start, byte_end, line_start, line_end
		 FROM chunks WHERE hash = ?`, hash.String())
	c, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cmerrors.New(cmerrors.ErrChunkNotFound, cmerrors.KindNotFound, fmt.Sprintf("chunk %s not found", hash), nil)
	}
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	return c, nil
}

func (s *sqliteChunkStore) GetMany(ctx context.Context, hashes []chunk.ContentHash) ([]chunk.Chunk, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(hashes))
	args := make([]any, len(hashes))
	for i, h := range hashes {
		placeholders[i] = "?"
		args[i] = h.String()
	}

	query := fmt.Sprintf(
		`SELECT hash, language, kind, symbol_name, signature, docstring, content, byte_start, byte_end, line_start, line_end
		 FROM chunks WHERE hash IN (%s)`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()

	var result []chunk.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*chunk.Chunk, error) {
	var (
		hashHex                        string
		language, kind                 string
		symbolName, signature, docstr  sql.NullString
		byteStart, byteEnd             int
		lineStart, lineEnd             int
		content                        string
	)
	if err := row.Scan(&hashHex, &language, &kind, &symbolName, &signature, &docstr,
		&content, &byteStart, &byteEnd, &lineStart, &lineEnd); err != nil {
		return nil, err
	}

	hash, err := chunk.ParseContentHash(hashHex)
	if err != nil {
		return nil, err
	}

	c := chunk.New(content, chunk.Language(language), chunk.Kind(kind),
		symbolName.String, signature.String, docstr.String,
		chunk.Range{Start: byteStart, End: byteEnd},
		chunk.Range{Start: lineStart, End: lineEnd},
	)
	c.Hash = hash
	return &c, nil
}

// sqExecer adapts a querier (ExecContext/QueryContext/QueryRowContext)
// to squirrel's sq.BaseRunner so query builders can run against either a
// *sql.DB or a *sql.Tx via the Unit-of-work wrapper.
type sqExecer struct {
	ctx context.Context
	q   querier
}

func (r sqExecer) Exec(query string, args ...any) (sql.Result, error) {
	return r.q.ExecContext(r.ctx, query, args...)
}

func (r sqExecer) Query(query string, args ...any) (*sql.Rows, error) {
	return r.q.QueryContext(r.ctx, query, args...)
}

func (r sqExecer) QueryRow(query string, args ...any) *sql.Row {
	return r.q.QueryRowContext(r.ctx, query, args...)
}
