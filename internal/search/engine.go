package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/cmerrors"
	"github.com/mvp-joe/codemate/internal/config"
	"github.com/mvp-joe/codemate/internal/embed"
	"github.com/mvp-joe/codemate/internal/storage"
)

// Engine implements the hybrid query engine of spec.md §4.4: an indexed
// structured-filter pre-filter narrows vector search to a candidate hash
// set, FTS and vector search run in parallel, RRF fuses their results,
// an optional position-aware rerank blends scores, and the fused hashes
// are hydrated against ChunkStore/LocationStore (with glob-based filters
// applied as a final post-hydration check).
//
// Grounded on amanmcp's internal/search/engine.go: the errgroup-based
// parallel fan-out with per-sub-query deadlines and the nil-Reranker
// skip are ported as-is; the BM25/FTS5 index and vector store calls are
// rebuilt against this module's content-addressed storage.ChunkStore,
// storage.LocationStore, storage.FTSIndex and storage.VectorStore
// instead of amanmcp's store.MetadataStore/BM25Index/VectorStore.
type Engine struct {
	fts      storage.FTSIndex
	vector   storage.VectorStore
	chunks   storage.ChunkStore
	locs     storage.LocationStore
	embedder embed.Provider
	fusion   *RRFFusion
	reranker Reranker
	cfg      config.SearchConfig
}

// New builds an Engine. reranker may be nil, in which case position-aware
// rerank blending is skipped entirely (amanmcp's engine.go does the same
// when its Reranker field is unset).
func New(fts storage.FTSIndex, vector storage.VectorStore, chunks storage.ChunkStore, locs storage.LocationStore, embedder embed.Provider, cfg config.SearchConfig, reranker Reranker) *Engine {
	return &Engine{
		fts:      fts,
		vector:   vector,
		chunks:   chunks,
		locs:     locs,
		embedder: embedder,
		fusion:   NewRRFFusionWithK(cfg.RRFK),
		reranker: reranker,
		cfg:      cfg,
	}
}

// Search executes one query-DSL-parsed hybrid search: freetext drives
// both the FTS and vector sub-queries, filters narrow the fused and
// hydrated result set. repoURI scopes location hydration to one indexed
// repository.
func (e *Engine) Search(ctx context.Context, repoURI, freetext string, opts Options) ([]Result, error) {
	if strings.TrimSpace(freetext) == "" {
		return nil, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	weights := Weights{Vector: e.cfg.WeightVector, FTS: e.cfg.WeightFTS}
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	rerankTopN := opts.RerankTopN
	if rerankTopN <= 0 {
		rerankTopN = 50
	}

	candidates, filtered, err := buildCandidateFilter(ctx, e.locs, opts.Filters)
	if err != nil {
		return nil, err
	}
	if filtered && len(candidates) == 0 {
		// The structured filter matched nothing: there is no universe
		// left to search, so skip straight to an empty result instead
		// of running an unfiltered sub-query that would be discarded
		// at hydration anyway.
		return nil, nil
	}

	ftsHits, vecHits, err := e.parallelSearch(ctx, freetext, rerankTopN, candidates)
	if err != nil {
		return nil, err
	}

	fused := e.fusion.Fuse(ftsHits, vecHits, weights)

	if e.reranker != nil && len(fused) > 1 {
		if err := e.applyRerank(ctx, freetext, fused); err != nil {
			return nil, err
		}
	}

	return e.hydrate(ctx, repoURI, fused, opts.Filters, limit)
}

// parallelSearch runs the FTS and vector sub-queries concurrently, each
// bounded by its own SubQueryTimeoutMS deadline (spec.md §4.4's 5s
// default). If one sub-query fails or times out, fusion proceeds with
// whichever list completed and the other contributes an empty list.
func (e *Engine) parallelSearch(ctx context.Context, query string, limit int, filter []chunk.ContentHash) ([]FTSHit, []VectorHit, error) {
	g, gctx := errgroup.WithContext(ctx)

	var ftsHits []FTSHit
	var vecHits []VectorHit
	var ftsErr, vecErr error

	g.Go(func() error {
		subCtx, cancel := e.subQueryContext(gctx)
		defer cancel()

		ftsQuery := storage.BuildFTSQuery(query, false)
		matches, err := e.fts.Query(subCtx, ftsQuery, limit)
		if err != nil {
			ftsErr = err
			return nil
		}
		ftsHits = make([]FTSHit, len(matches))
		for i, m := range matches {
			ftsHits[i] = FTSHit{Hash: m.Hash.String(), Score: -m.Rank, Snippet: m.Snippet}
		}
		return nil
	})

	g.Go(func() error {
		subCtx, cancel := e.subQueryContext(gctx)
		defer cancel()

		embeddings, err := e.embedder.Embed(subCtx, []string{query}, embed.EmbedModeQuery)
		if err != nil {
			vecErr = err
			return nil
		}
		matches, err := e.vector.Query(subCtx, embeddings[0], limit, filter)
		if err != nil {
			vecErr = err
			return nil
		}
		vecHits = make([]VectorHit, len(matches))
		for i, m := range matches {
			vecHits[i] = VectorHit{Hash: m.Hash.String(), Score: 1.0 / (1.0 + m.Distance)}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if ftsErr != nil && vecErr != nil {
		return nil, nil, fmt.Errorf("search: both sub-queries failed: fts=%w vec=%v", ftsErr, vecErr)
	}

	return ftsHits, vecHits, nil
}

func (e *Engine) subQueryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(e.cfg.SubQueryTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// applyRerank scores the fused candidates with the configured reranker
// and blends scores per spec.md §4.4 step 4. Reranking needs chunk
// content, so it fetches chunks before the final hydrate pass; a
// reranker failure degrades to the unblended RRF order.
func (e *Engine) applyRerank(ctx context.Context, query string, fused []*FusedResult) error {
	hashes := make([]chunk.ContentHash, len(fused))
	for i, r := range fused {
		h, err := chunk.ParseContentHash(r.Hash)
		if err != nil {
			return fmt.Errorf("search: parsing fused hash: %w", err)
		}
		hashes[i] = h
	}

	chunks, err := e.chunks.GetMany(ctx, hashes)
	if err != nil {
		return cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	byHash := make(map[string]chunk.Chunk, len(chunks))
	for _, c := range chunks {
		byHash[c.Hash.String()] = c
	}

	documents := make([]string, len(fused))
	for i, r := range fused {
		if c, ok := byHash[r.Hash]; ok {
			documents[i] = c.Content
		}
	}

	reranked, err := e.reranker.Rerank(ctx, query, documents, 0)
	if err != nil {
		// Degrade gracefully: keep the unblended RRF order.
		return nil
	}

	scores := make([]float64, len(fused))
	for _, rr := range reranked {
		if rr.Index >= 0 && rr.Index < len(scores) {
			scores[rr.Index] = rr.Score
		}
	}

	blendRerank(fused, scores)
	return nil
}

// hydrate resolves each fused hash to its chunk and a representative
// location within repoURI, applies post-fusion filters, and stops at
// limit.
func (e *Engine) hydrate(ctx context.Context, repoURI string, fused []*FusedResult, filters Filters, limit int) ([]Result, error) {
	results := make([]Result, 0, limit)

	for _, r := range fused {
		if len(results) >= limit {
			break
		}

		hash, err := chunk.ParseContentHash(r.Hash)
		if err != nil {
			continue
		}

		c, err := e.chunks.Get(ctx, hash)
		if err != nil {
			if cmerrors.CodeOf(err) == cmerrors.ErrChunkNotFound {
				continue
			}
			return nil, err
		}

		locs, err := e.locs.ListByContentHash(ctx, hash)
		if err != nil {
			return nil, err
		}

		loc, ok := bestLocation(locs, repoURI, filters.InGlobs)
		if !ok {
			continue
		}

		if !filters.matches(*c, loc) {
			continue
		}

		results = append(results, Result{
			Chunk:       *c,
			Location:    loc,
			Score:       r.RRFScore,
			FTSScore:    r.FTSScore,
			FTSRank:     r.FTSRank,
			VecScore:    r.VecScore,
			VecRank:     r.VecRank,
			InBothLists: r.InBothLists,
			Highlights:  r.MatchedTerms,
		})
	}

	return results, nil
}

// bestLocation picks the representative location for repoURI per
// spec.md §4.4 step 5: prefer a location on the user's preferred branch
// (in: globs), else one on a branch containing "main" or "master", else
// the most recently authored location. A chunk with no location in this
// repository is excluded from results.
func bestLocation(locs []chunk.Location, repoURI string, preferredBranch []GlobMatcher) (chunk.Location, bool) {
	var inRepo []chunk.Location
	for _, l := range locs {
		if l.RepoURI == repoURI {
			inRepo = append(inRepo, l)
		}
	}
	if len(inRepo) == 0 {
		return chunk.Location{}, false
	}

	if len(preferredBranch) > 0 {
		if loc, ok := mostRecentMatching(inRepo, func(l chunk.Location) bool {
			return anyMatch(preferredBranch, l.Branch)
		}); ok {
			return loc, true
		}
	}

	if loc, ok := mostRecentMatching(inRepo, func(l chunk.Location) bool {
		return strings.Contains(l.Branch, "main") || strings.Contains(l.Branch, "master")
	}); ok {
		return loc, true
	}

	loc, _ := mostRecentMatching(inRepo, func(chunk.Location) bool { return true })
	return loc, true
}

// mostRecentMatching returns the location with the latest AuthoredAt
// among those satisfying pred.
func mostRecentMatching(locs []chunk.Location, pred func(chunk.Location) bool) (chunk.Location, bool) {
	var best chunk.Location
	found := false
	for _, l := range locs {
		if !pred(l) {
			continue
		}
		if !found || l.AuthoredAt.After(best.AuthoredAt) {
			best = l
			found = true
		}
	}
	return best, found
}
