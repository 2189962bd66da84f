// Package gitingest enumerates commits and blobs from a git repository and
// feeds the chunking pipeline with (repo, branch, commit, path, blob) units.
// The concrete Backend is go-git-based; callers that only need a fixed set
// of canned commits for a test use MockBackend instead.
package gitingest

import (
	"context"
	"time"
)

// CommitInfo is one commit as seen during a branch walk.
type CommitInfo struct {
	Hash           string
	ParentHashes   []string
	Author         string
	AuthorEmail    string
	AuthoredAt     time.Time
	Committer      string
	CommitterEmail string
	CommittedAt    time.Time
	Message        string
}

// BlameHunk is a contiguous run of lines attributed to one commit.
type BlameHunk struct {
	CommitHash  string
	Author      string
	AuthorEmail string
	AuthoredAt  time.Time
	StartLine   int // 1-based, inclusive
	EndLine     int // 1-based, inclusive
}

// WalkLimits bounds a commit walk. Zero value means unbounded.
type WalkLimits struct {
	MaxCommits  int
	SinceTime   time.Time
	UntilCommit string // stop once this commit (exclusive) is reached
}

// Backend is the git-backend contract per spec.md §6: list_branches,
// walk_commits, diff_against_parent, blob, blame. Implementations may be
// local filesystem (Repository), remote host APIs, or an in-memory mock.
type Backend interface {
	ListBranches(ctx context.Context) ([]string, error)
	WalkCommits(ctx context.Context, branch string, limits WalkLimits) ([]CommitInfo, error)
	DiffAgainstParent(ctx context.Context, commitHash string) ([]string, error)
	Blob(ctx context.Context, oid string) ([]byte, error)
	Blame(ctx context.Context, commitHash, path string, lineStart, lineEnd int) ([]BlameHunk, error)
	RemoteURL(ctx context.Context) (string, error)

	// FileAt resolves path as it exists in commitHash's tree, returning its
	// blob content and oid. found is false if path doesn't exist at that
	// commit (e.g. it was deleted), which the ingest pipeline treats as a
	// deletion rather than an error.
	FileAt(ctx context.Context, commitHash, path string) (content []byte, blobHash string, found bool, err error)
}
