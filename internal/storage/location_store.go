package storage

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/cmerrors"
)

// LocationStore persists chunk locations: the (repo, branch, commit,
// path, range) occurrences of a given content hash, carrying git
// temporal attribution. Grounded on cortex's file-scoped location
// writes in chunk_writer.go, redirected at the content-addressed
// locations table in DESIGN.md.
type LocationStore interface {
	Put(ctx context.Context, loc chunk.Location) error
	PutMany(ctx context.Context, locs []chunk.Location) error
	ListByContentHash(ctx context.Context, hash chunk.ContentHash) ([]chunk.Location, error)
	ListByFile(ctx context.Context, repoURI, filePath string) ([]chunk.Location, error)

	// ByAuthor, ByTimeRange, ByPath and ByBranch back the hybrid search
	// pre-filter (spec.md §4.2, §4.4): each runs against an indexed
	// column so the candidate hash set can be computed without a table
	// scan.
	ByAuthor(ctx context.Context, email string) ([]chunk.Location, error)
	ByTimeRange(ctx context.Context, start, end time.Time) ([]chunk.Location, error)
	ByPath(ctx context.Context, path string) ([]chunk.Location, error)
	ByBranch(ctx context.Context, branch string) ([]chunk.Location, error)
}

type sqliteLocationStore struct {
	db querier
}

func (s *sqliteLocationStore) Put(ctx context.Context, loc chunk.Location) error {
	return s.PutMany(ctx, []chunk.Location{loc})
}

func (s *sqliteLocationStore) PutMany(ctx context.Context, locs []chunk.Location) error {
	for _, l := range locs {
		_, err := sq.Insert("locations").
			Columns("content_hash", "repo_uri", "branch", "commit_hash", "blob_hash", "file_path",
				"byte_start", "byte_end", "line_start", "line_end",
				"author", "authored_at", "committer", "committed_at", "commit_message").
			Values(l.ContentHash.String(), l.RepoURI, nullableString(l.Branch), l.CommitHash, l.BlobHash, l.FilePath,
				l.ByteRange.Start, l.ByteRange.End, l.LineRange.Start, l.LineRange.End,
				nullableString(l.Author), formatTime(l.AuthoredAt), nullableString(l.Committer), formatTime(l.CommittedAt),
				nullableString(l.CommitMessage)).
			Suffix("ON CONFLICT(content_hash, repo_uri, commit_hash, file_path, byte_start) DO NOTHING").
			RunWith(sqExecer{ctx, s.db}).
			Exec()
		if err != nil {
			return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)
		}
	}
	return nil
}

func (s *sqliteLocationStore) ListByContentHash(ctx context.Context, hash chunk.ContentHash) ([]chunk.Location, error) {
	rows, err := s.db.QueryContext(ctx, locationSelectColumns+" FROM locations WHERE content_hash = ?", hash.String())
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

func (s *sqliteLocationStore) ListByFile(ctx context.Context, repoURI, filePath string) ([]chunk.Location, error) {
	rows, err := s.db.QueryContext(ctx, locationSelectColumns+" FROM locations WHERE repo_uri = ? AND file_path = ?", repoURI, filePath)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

func (s *sqliteLocationStore) ByAuthor(ctx context.Context, email string) ([]chunk.Location, error) {
	rows, err := s.db.QueryContext(ctx, locationSelectColumns+" FROM locations WHERE author = ?", email)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

// ByTimeRange returns locations whose authored_at falls within [start, end]
// inclusive, per spec.md's denormalised-time pre-filter lookup. Unlike
// formatTime (used for writes, where a zero time means "no value"), a
// zero start/end here is a real, open-ended bound and must not collapse
// to NULL or the comparison would match nothing.
func (s *sqliteLocationStore) ByTimeRange(ctx context.Context, start, end time.Time) ([]chunk.Location, error) {
	rows, err := s.db.QueryContext(ctx, locationSelectColumns+" FROM locations WHERE authored_at >= ? AND authored_at <= ?",
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

func (s *sqliteLocationStore) ByPath(ctx context.Context, path string) ([]chunk.Location, error) {
	rows, err := s.db.QueryContext(ctx, locationSelectColumns+" FROM locations WHERE file_path = ?", path)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

func (s *sqliteLocationStore) ByBranch(ctx context.Context, branch string) ([]chunk.Location, error) {
	rows, err := s.db.QueryContext(ctx, locationSelectColumns+" FROM locations WHERE branch = ?", branch)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanLocations(rows)
}

const locationSelectColumns = `SELECT content_hash, repo_uri, branch, commit_hash, blob_hash, file_path,
	byte_start, byte_end, line_start, line_end, author, authored_at, committer, committed_at, commit_message`

func scanLocations(rows *sql.Rows) ([]chunk.Location, error) {
	var locs []chunk.Location
	for rows.Next() {
		var (
			hashHex                                         string
			branch, blobHash, author, committer, commitMsg  sql.NullString
			authoredAt, committedAt                          sql.NullString
			loc                                              chunk.Location
		)
		if err := rows.Scan(&hashHex, &loc.RepoURI, &branch, &loc.CommitHash, &blobHash, &loc.FilePath,
			&loc.ByteRange.Start, &loc.ByteRange.End, &loc.LineRange.Start, &loc.LineRange.End,
			&author, &authoredAt, &committer, &committedAt, &commitMsg); err != nil {
			return nil, err
		}
		hash, err := chunk.ParseContentHash(hashHex)
		if err != nil {
			return nil, err
		}
		loc.ContentHash = hash
		loc.Branch = branch.String
		loc.BlobHash = blobHash.String
		loc.Author = author.String
		loc.Committer = committer.String
		loc.CommitMessage = commitMsg.String
		loc.AuthoredAt = parseTime(authoredAt.String)
		loc.CommittedAt = parseTime(committedAt.String)
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
