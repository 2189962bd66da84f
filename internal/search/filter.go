package search

import (
	"context"
	"time"

	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/storage"
)

// parseFilterTime parses an after/before filter value already validated by
// querydsl.Parse (RFC3339 or date-only ISO-8601); a parse failure here
// would mean that validation was bypassed, so it degrades to the zero
// time rather than erroring mid-filter.
func parseFilterTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

// matches reports whether a hydrated chunk/location pair satisfies the
// structured filters parsed from the query DSL. The author and time
// predicates are also applied earlier as an indexed pre-filter to vector search
// (buildCandidateFilter); matches is still run after hydration as the
// authoritative check, since glob patterns (file/path/in) and the
// chunk-level language field aren't cheap to express as SQL equality and
// so are never part of the pre-filter set.
func (f Filters) matches(c chunk.Chunk, loc chunk.Location) bool {
	if len(f.Languages) > 0 && !containsFold(f.Languages, string(c.Language)) {
		return false
	}
	if len(f.Authors) > 0 && !containsFold(f.Authors, loc.Author) {
		return false
	}
	if len(f.FileGlobs) > 0 && !anyMatch(f.FileGlobs, loc.FilePath) {
		return false
	}
	if len(f.PathGlobs) > 0 && !anyMatch(f.PathGlobs, loc.FilePath) {
		return false
	}
	if len(f.InGlobs) > 0 && !anyMatch(f.InGlobs, loc.Branch) {
		return false
	}
	if f.After != nil && loc.AuthoredAt.Before(parseFilterTime(*f.After)) {
		return false
	}
	if f.Before != nil && loc.AuthoredAt.After(parseFilterTime(*f.Before)) {
		return false
	}
	return true
}

// buildCandidateFilter realises the query DSL's structured filters as the
// hash set of spec.md §4.4's "Filter evaluation": computed from
// LocationStore via indexed lookups (author, time range), it is the
// pre-filter fed to VectorStore.Query. Glob-based filters (file/path/in)
// and the chunk-level language field aren't indexed columns, so they are
// left to the post-hydration matches check instead of narrowing this set.
// ok is false when no indexable filter was supplied, meaning the full
// universe should be searched.
func buildCandidateFilter(ctx context.Context, locs storage.LocationStore, f Filters) ([]chunk.ContentHash, bool, error) {
	var sets [][]chunk.ContentHash

	// Repeating a key is a union within that predicate (lang:rust,go
	// means lang ∈ {rust, go}); the per-predicate sets below are then
	// intersected, i.e. author AND time-range, matching Filters.matches.
	if len(f.Authors) > 0 {
		var union []chunk.ContentHash
		for _, author := range f.Authors {
			rows, err := locs.ByAuthor(ctx, author)
			if err != nil {
				return nil, false, err
			}
			union = append(union, hashesOf(rows)...)
		}
		sets = append(sets, union)
	}

	if f.After != nil || f.Before != nil {
		start := time.Time{}
		if f.After != nil {
			start = parseFilterTime(*f.After)
		}
		end := time.Now().UTC().AddDate(100, 0, 0)
		if f.Before != nil {
			end = parseFilterTime(*f.Before)
		}
		rows, err := locs.ByTimeRange(ctx, start, end)
		if err != nil {
			return nil, false, err
		}
		sets = append(sets, hashesOf(rows))
	}

	if len(sets) == 0 {
		return nil, false, nil
	}

	return intersectHashes(sets), true, nil
}

func hashesOf(locs []chunk.Location) []chunk.ContentHash {
	hashes := make([]chunk.ContentHash, len(locs))
	for i, l := range locs {
		hashes[i] = l.ContentHash
	}
	return hashes
}

// intersectHashes narrows sets down to their common members, preserving
// determinism by iterating the first set's order.
func intersectHashes(sets [][]chunk.ContentHash) []chunk.ContentHash {
	counts := make(map[chunk.ContentHash]int, len(sets[0]))
	for _, set := range sets {
		seen := make(map[chunk.ContentHash]bool, len(set))
		for _, h := range set {
			if seen[h] {
				continue
			}
			seen[h] = true
			counts[h]++
		}
	}

	var result []chunk.ContentHash
	for _, h := range sets[0] {
		if counts[h] == len(sets) {
			result = append(result, h)
			counts[h] = 0 // avoid duplicating h if it repeats in sets[0]
		}
	}
	return result
}

func containsFold(values []string, v string) bool {
	for _, want := range values {
		if equalFold(want, v) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func anyMatch(globs []GlobMatcher, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
