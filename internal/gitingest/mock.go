package gitingest

import "context"

// MockBackend is a table-of-canned-data Backend for tests, following the
// teacher's mockable Operations style (internal/git/operations_mock.go is
// the direct ancestor of this pattern, extended here from branch/remote
// scalars to full commit/blob/blame tables since Backend's surface is
// larger).
type MockBackend struct {
	BranchList []string
	Commits    map[string][]CommitInfo // branch -> commits, head first
	Diffs      map[string][]string     // commit hash -> changed paths
	Blobs      map[string][]byte       // oid -> content
	Blames     map[string][]BlameHunk  // "commit:path" -> hunks
	// Files maps "commit:path" -> blob oid, letting FileAt resolve
	// path content via Blobs. A missing entry means the path didn't
	// exist at that commit.
	Files  map[string]string
	Remote string
	// MergeBases maps "branchA:branchB" -> common ancestor hash, for tests
	// that exercise EffectiveSince.
	MergeBases map[string]string
}

// NewMockBackend returns an empty MockBackend ready to have its maps
// populated by the caller.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Commits: make(map[string][]CommitInfo),
		Diffs:   make(map[string][]string),
		Blobs:   make(map[string][]byte),
		Blames:  make(map[string][]BlameHunk),
		Files:   make(map[string]string),
	}
}

func (m *MockBackend) ListBranches(ctx context.Context) ([]string, error) {
	return m.BranchList, nil
}

func (m *MockBackend) WalkCommits(ctx context.Context, branch string, limits WalkLimits) ([]CommitInfo, error) {
	commits := m.Commits[branch]
	var out []CommitInfo
	for _, c := range commits {
		if c.Hash == limits.UntilCommit {
			break
		}
		if !limits.SinceTime.IsZero() && c.CommittedAt.Before(limits.SinceTime) {
			break
		}
		if limits.MaxCommits > 0 && len(out) >= limits.MaxCommits {
			break
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MockBackend) DiffAgainstParent(ctx context.Context, commitHash string) ([]string, error) {
	return m.Diffs[commitHash], nil
}

func (m *MockBackend) Blob(ctx context.Context, oid string) ([]byte, error) {
	return m.Blobs[oid], nil
}

func (m *MockBackend) Blame(ctx context.Context, commitHash, path string, lineStart, lineEnd int) ([]BlameHunk, error) {
	return m.Blames[commitHash+":"+path], nil
}

func (m *MockBackend) FileAt(ctx context.Context, commitHash, path string) ([]byte, string, bool, error) {
	oid, ok := m.Files[commitHash+":"+path]
	if !ok {
		return nil, "", false, nil
	}
	return m.Blobs[oid], oid, true, nil
}

func (m *MockBackend) RemoteURL(ctx context.Context) (string, error) {
	return m.Remote, nil
}

func (m *MockBackend) MergeBase(ctx context.Context, branchA, branchB string) (string, bool, error) {
	base, ok := m.MergeBases[branchA+":"+branchB]
	return base, ok, nil
}
