// Package search implements the hybrid query engine: parallel vector and
// full-text search, fused with Reciprocal Rank Fusion and an optional
// position-aware rerank blend, per spec.md §4.4.
package search

import "sort"

// DefaultRRFConstant is the RRF smoothing constant spec.md §4.4 fixes at 60.
const DefaultRRFConstant = 60

// FusedResult is one candidate after RRF fusion, keyed by content hash
// rather than a chunk ID: locations never carry an identity of their own,
// so the fusable unit is the hash shared by every occurrence of a chunk.
type FusedResult struct {
	Hash         string
	RRFScore     float64
	FTSScore     float64
	FTSRank      int
	VecScore     float64
	VecRank      int
	InBothLists  bool
	MatchedTerms []string
}

// Weights controls the relative contribution of each ranked list.
type Weights struct {
	Vector float64
	FTS    float64
}

// DefaultWeights returns spec.md §4.4's fixed fusion weights.
func DefaultWeights() Weights {
	return Weights{Vector: 0.5, FTS: 0.3}
}

// topPositionBonus returns the bonus spec.md §4.4 step 3 adds for a
// fused candidate's final rank: +0.05 for rank 1, +0.02 for ranks 2-3.
func topPositionBonus(rank int) float64 {
	switch {
	case rank == 1:
		return 0.05
	case rank <= 3:
		return 0.02
	default:
		return 0
	}
}

// RRFFusion combines FTS and vector result lists into one ranked list.
// Adapted from amanmcp's internal/search/fusion.go RRFFusion: same
// rank-weighted accumulation, missing-rank handling, and normalization to
// [0,1]; the tie-break's last key is swapped for content_hash (bytewise
// ascending) per spec.md §4.4's determinism requirement, since this
// engine has no chunk ID and the hash is the unit of identity.
type RRFFusion struct {
	K int
}

// NewRRFFusion builds fusion with spec.md §4.4's k_rrf=60.
func NewRRFFusion() *RRFFusion {
	return &RRFFusion{K: DefaultRRFConstant}
}

// NewRRFFusionWithK builds fusion with a custom smoothing constant.
func NewRRFFusionWithK(k int) *RRFFusion {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	return &RRFFusion{K: k}
}

// Fuse combines fts and vec result lists, weighted by weights, and returns
// candidates sorted best-first with the top-position bonus applied and
// scores normalized to [0,1].
func (f *RRFFusion) Fuse(fts []FTSHit, vec []VectorHit, weights Weights) []*FusedResult {
	if len(fts) == 0 && len(vec) == 0 {
		return []*FusedResult{}
	}

	scores := make(map[string]*FusedResult, len(fts)+len(vec))

	for rank, hit := range fts {
		r := getOrCreate(scores, hit.Hash)
		r.FTSScore = hit.Score
		r.FTSRank = rank + 1
		r.MatchedTerms = hit.MatchedTerms
		r.RRFScore += weights.FTS / float64(f.K+rank+1)
	}

	for rank, hit := range vec {
		r := getOrCreate(scores, hit.Hash)
		r.VecScore = hit.Score
		r.VecRank = rank + 1
		r.RRFScore += weights.Vector / float64(f.K+rank+1)
		if r.FTSRank > 0 {
			r.InBothLists = true
		}
	}

	missingRank := calculateMissingRank(len(fts), len(vec))
	for _, r := range scores {
		if r.FTSRank == 0 && r.VecRank > 0 {
			r.RRFScore += weights.FTS / float64(f.K+missingRank)
		}
		if r.VecRank == 0 && r.FTSRank > 0 {
			r.RRFScore += weights.Vector / float64(f.K+missingRank)
		}
	}

	results := toSortedSlice(scores)
	for i, r := range results {
		r.RRFScore += topPositionBonus(i + 1)
	}
	// Re-sort: the top-position bonus can promote a lower-scored candidate
	// past one that received no bonus.
	sort.SliceStable(results, func(i, j int) bool { return compare(results[i], results[j]) })

	normalize(results)
	return results
}

func getOrCreate(m map[string]*FusedResult, hash string) *FusedResult {
	if r, ok := m[hash]; ok {
		return r
	}
	r := &FusedResult{Hash: hash}
	m[hash] = r
	return r
}

func calculateMissingRank(ftsLen, vecLen int) int {
	if ftsLen > vecLen {
		return ftsLen + 1
	}
	return vecLen + 1
}

func toSortedSlice(m map[string]*FusedResult) []*FusedResult {
	results := make([]*FusedResult, 0, len(m))
	for _, r := range m {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return compare(results[i], results[j]) })
	return results
}

// compare orders a before b: higher RRF score, then in-both-lists, then
// higher FTS score, then ascending content hash (bytewise via Go's
// ordinary string comparison over hex-encoded hashes, equivalent to
// bytewise order since hex preserves byte ordering).
func compare(a, b *FusedResult) bool {
	if a.RRFScore != b.RRFScore {
		return a.RRFScore > b.RRFScore
	}
	if a.InBothLists != b.InBothLists {
		return a.InBothLists
	}
	if a.FTSScore != b.FTSScore {
		return a.FTSScore > b.FTSScore
	}
	return a.Hash < b.Hash
}

func normalize(results []*FusedResult) {
	if len(results) == 0 {
		return
	}
	max := results[0].RRFScore
	for _, r := range results {
		if r.RRFScore > max {
			max = r.RRFScore
		}
	}
	if max == 0 {
		return
	}
	for _, r := range results {
		r.RRFScore = r.RRFScore / max
	}
}
