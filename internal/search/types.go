package search

import (
	"context"

	"github.com/mvp-joe/codemate/internal/chunk"
)

// FTSHit is one lexical search hit, already ranked (index 0 = best).
type FTSHit struct {
	Hash         string
	Score        float64
	Snippet      string
	MatchedTerms []string
}

// VectorHit is one nearest-neighbor hit, already ranked (index 0 = best).
type VectorHit struct {
	Hash  string
	Score float64
}

// Reranker rescoring a fused candidate list is amanmcp's cross-encoder
// reranker contract (internal/search/reranker.go), trimmed to the single
// operation the position-aware blend in spec.md §4.4 step 4 needs.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string, topK int) ([]RerankResult, error)
}

// RerankResult is one reranked document: Index refers back into the
// documents slice passed to Rerank.
type RerankResult struct {
	Index int
	Score float64
}

// NoOpReranker scores documents by their given order (1, 0.99, 0.98,
// ...). Search skips the blend step entirely when the configured
// reranker is nil; a NoOpReranker wired in its place still runs the
// blend, with these scores standing in for a real reranker's.
type NoOpReranker struct{}

func (NoOpReranker) Rerank(_ context.Context, _ string, documents []string, topK int) ([]RerankResult, error) {
	results := make([]RerankResult, len(documents))
	for i := range documents {
		results[i] = RerankResult{Index: i, Score: 1 - float64(i)*0.01}
	}
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Options configures one Search call.
type Options struct {
	Limit      int
	Filters    Filters
	Weights    *Weights
	RerankTopN int
}

// Filters narrows a search, using the parsed query DSL's values:
// language/author literal match, file/path glob match, authored-time
// bounds, and InGlobs (the "in:" key) matching the candidate location's
// branch. Author and time bounds are realised as an indexed pre-filter
// to vector search (see buildCandidateFilter); the rest are checked
// after hydration since they aren't equality lookups against an indexed
// column.
type Filters struct {
	Languages []string
	Authors   []string
	FileGlobs []GlobMatcher
	PathGlobs []GlobMatcher
	InGlobs   []GlobMatcher
	After     *string
	Before    *string
}

// GlobMatcher is the subset of gobwas/glob.Glob that filtering needs,
// kept narrow so this package does not import the glob library directly;
// callers (internal/cli) compile querydsl values into these.
type GlobMatcher interface {
	Match(string) bool
}

// Result is one hydrated, ranked search hit.
type Result struct {
	Chunk       chunk.Chunk
	Location    chunk.Location
	Score       float64
	FTSScore    float64
	FTSRank     int
	VecScore    float64
	VecRank     int
	InBothLists bool
	Highlights  []string
}
