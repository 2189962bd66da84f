package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/codemate/internal/cmerrors"
)

// IndexState records the last commit indexed per (repo, branch), letting
// incremental sync diff against HEAD instead of reprocessing the whole
// tree. New table: cortex tracked this implicitly via file mtimes, which
// doesn't carry over to git-commit-addressed incremental sync.
type IndexState struct {
	RepoURI        string
	Branch         string
	LastCommitHash string
	IndexedAt      time.Time
}

type IndexStateStore interface {
	Set(ctx context.Context, state IndexState) error
	Get(ctx context.Context, repoURI, branch string) (*IndexState, error)
}

type sqliteIndexStateStore struct {
	db querier
}

func (s *sqliteIndexStateStore) Set(ctx context.Context, state IndexState) error {
	indexedAt := state.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now().UTC()
	}
	_, err := sq.Insert("index_state").
		Columns("repo_uri", "branch", "last_commit_hash", "indexed_at").
		Values(state.RepoURI, state.Branch, state.LastCommitHash, indexedAt.Format(time.RFC3339)).
		Suffix("ON CONFLICT(repo_uri, branch) DO UPDATE SET last_commit_hash = excluded.last_commit_hash, indexed_at = excluded.indexed_at").
		RunWith(sqExecer{ctx, s.db}).
		Exec()
	if err != nil {
		return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)
	}
	return nil
}

func (s *sqliteIndexStateStore) Get(ctx context.Context, repoURI, branch string) (*IndexState, error) {
	var state IndexState
	var indexedAtStr string
	err := s.db.QueryRowContext(ctx,
		"SELECT repo_uri, branch, last_commit_hash, indexed_at FROM index_state WHERE repo_uri = ? AND branch = ?",
		repoURI, branch,
	).Scan(&state.RepoURI, &state.Branch, &state.LastCommitHash, &indexedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cmerrors.New(cmerrors.ErrBranchNotFound, cmerrors.KindNotFound, "no index state for "+repoURI+"@"+branch, nil)
	}
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	state.IndexedAt = parseTime(indexedAtStr)
	return &state, nil
}
