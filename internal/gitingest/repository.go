package gitingest

import (
	"context"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/mvp-joe/codemate/internal/cmerrors"
)

// Repository is the default Backend, backed by go-git against a local
// working copy. Grounded on conexus's internal/mcp/git_helper.go
// (git.PlainOpen, repo.Branches(), repo.Log(LogOptions{Order:
// LogOrderCommitterTime}), commit.Patch(parent), commit.Tree() for root
// commits). Repo-root discovery uses go-git's own DetectDotGit option
// instead of porting conexus's manual upward directory walk or the
// teacher's shell-exec `git rev-parse --show-toplevel`
// (internal/git/operations.go) — both solve the same problem go-git
// already solves at Open time.
type Repository struct {
	repo *git.Repository
}

// Open opens the git repository containing path, walking upward to find
// the repository root if path is a subdirectory of a working copy.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	return &Repository{repo: repo}, nil
}

func (r *Repository) ListBranches(ctx context.Context) ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	var branches []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		branches = append(branches, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return branches, nil
}

// MergeBase returns the best common ancestor of branchA and branchB's
// heads, using go-git's object.Commit.MergeBase. Reports found=false if
// either branch is missing or the histories share no ancestor.
func (r *Repository) MergeBase(ctx context.Context, branchA, branchB string) (string, bool, error) {
	refA, err := r.repo.Reference(plumbing.NewBranchReferenceName(branchA), true)
	if err != nil {
		return "", false, nil
	}
	refB, err := r.repo.Reference(plumbing.NewBranchReferenceName(branchB), true)
	if err != nil {
		return "", false, nil
	}

	commitA, err := r.repo.CommitObject(refA.Hash())
	if err != nil {
		return "", false, cmerrors.Wrap(cmerrors.ErrCommitNotFound, cmerrors.KindNotFound, err)
	}
	commitB, err := r.repo.CommitObject(refB.Hash())
	if err != nil {
		return "", false, cmerrors.Wrap(cmerrors.ErrCommitNotFound, cmerrors.KindNotFound, err)
	}

	bases, err := commitA.MergeBase(commitB)
	if err != nil {
		return "", false, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	if len(bases) == 0 {
		return "", false, nil
	}
	return bases[0].Hash.String(), true, nil
}

func (r *Repository) WalkCommits(ctx context.Context, branch string, limits WalkLimits) ([]CommitInfo, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrCommitNotFound, cmerrors.KindNotFound, err)
	}

	commitIter, err := r.repo.Log(&git.LogOptions{From: ref.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}

	var commits []CommitInfo
	count := 0
	err = commitIter.ForEach(func(c *object.Commit) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if c.Hash.String() == limits.UntilCommit {
			return storer.ErrStop
		}
		if !limits.SinceTime.IsZero() && c.Committer.When.Before(limits.SinceTime) {
			return storer.ErrStop
		}
		if limits.MaxCommits > 0 && count >= limits.MaxCommits {
			return storer.ErrStop
		}

		var parents []string
		for _, h := range c.ParentHashes {
			parents = append(parents, h.String())
		}

		commits = append(commits, CommitInfo{
			Hash:           c.Hash.String(),
			ParentHashes:   parents,
			Author:         c.Author.Name,
			AuthorEmail:    c.Author.Email,
			AuthoredAt:     c.Author.When,
			Committer:      c.Committer.Name,
			CommitterEmail: c.Committer.Email,
			CommittedAt:    c.Committer.When,
			Message:        c.Message,
		})
		count++
		return nil
	})
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	return commits, nil
}

// DiffAgainstParent returns the paths added, modified or deleted between commitHash and its
// first parent. A root commit (no parents) diffs against an empty tree, per
// spec.md §4.3.
func (r *Repository) DiffAgainstParent(ctx context.Context, commitHash string) ([]string, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(commitHash))
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrCommitNotFound, cmerrors.KindNotFound, err)
	}

	if commit.NumParents() == 0 {
		tree, err := commit.Tree()
		if err != nil {
			return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
		}
		var paths []string
		err = tree.Files().ForEach(func(f *object.File) error {
			paths = append(paths, f.Name)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return paths, nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	patch, err := commit.Patch(parent)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}

	var paths []string
	for _, stat := range patch.Stats() {
		paths = append(paths, stat.Name)
	}
	return paths, nil
}

// FileAt resolves path in commitHash's tree via go-git's Tree.File lookup.
// A missing path is reported as found=false rather than an error, since a
// deleted-at-this-commit file is an expected outcome of DiffAgainstParent,
// not a failure.
func (r *Repository) FileAt(ctx context.Context, commitHash, path string) ([]byte, string, bool, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(commitHash))
	if err != nil {
		return nil, "", false, cmerrors.Wrap(cmerrors.ErrCommitNotFound, cmerrors.KindNotFound, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, "", false, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	f, err := tree.File(path)
	if err != nil {
		if err == object.ErrFileNotFound {
			return nil, "", false, nil
		}
		return nil, "", false, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	reader, err := f.Reader()
	if err != nil {
		return nil, "", false, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", false, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	return data, f.Hash.String(), true, nil
}

func (r *Repository) Blob(ctx context.Context, oid string) ([]byte, error) {
	blob, err := r.repo.BlobObject(plumbing.NewHash(oid))
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrCommitNotFound, cmerrors.KindNotFound, err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}
	return data, nil
}

// Blame attributes each line in [lineStart, lineEnd] to its originating
// commit, collapsing consecutive lines from the same commit into one hunk.
func (r *Repository) Blame(ctx context.Context, commitHash, path string, lineStart, lineEnd int) ([]BlameHunk, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(commitHash))
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrCommitNotFound, cmerrors.KindNotFound, err)
	}

	result, err := git.Blame(commit, path)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrRepoOpenFailed, cmerrors.KindIoError, err)
	}

	var hunks []BlameHunk
	for i, line := range result.Lines {
		lineNo := i + 1
		if lineNo < lineStart || (lineEnd > 0 && lineNo > lineEnd) {
			continue
		}

		if n := len(hunks); n > 0 && hunks[n-1].CommitHash == line.Hash.String() && hunks[n-1].EndLine == lineNo-1 {
			hunks[n-1].EndLine = lineNo
			continue
		}

		hunks = append(hunks, BlameHunk{
			CommitHash:  line.Hash.String(),
			Author:      line.Author,
			AuthorEmail: line.AuthorMail,
			AuthoredAt:  line.Date,
			StartLine:   lineNo,
			EndLine:     lineNo,
		})
	}
	return hunks, nil
}

// RemoteURL returns the fetch URL of the "origin" remote, falling back to
// the first configured remote. Ported from the teacher's
// internal/git/operations.go GetRemoteURL fallback logic, rebuilt against
// go-git's Remote/Config instead of shelling out to `git remote`.
func (r *Repository) RemoteURL(ctx context.Context) (string, error) {
	remote, err := r.repo.Remote("origin")
	if err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			return urls[0], nil
		}
	}

	remotes, err := r.repo.Remotes()
	if err != nil || len(remotes) == 0 {
		return "", nil
	}
	if urls := remotes[0].Config().URLs; len(urls) > 0 {
		return urls[0], nil
	}
	return "", nil
}
