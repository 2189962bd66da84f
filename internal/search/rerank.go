package search

import "sort"

// rerankWeight returns w_rrf(i) from spec.md §4.4 step 4: the fused rank's
// fixed position determines how much weight its RRF score keeps versus
// the reranker's score.
func rerankWeight(rank int) float64 {
	switch {
	case rank <= 3:
		return 0.75
	case rank <= 10:
		return 0.60
	default:
		return 0.40
	}
}

// blendRerank applies spec.md §4.4 step 4's position-aware blend in
// place: final = w_rrf(i)*(1/i) + (1-w_rrf(i))*rerank_score, then
// re-sorts by the blended score. rerankScores is indexed identically to
// results (same order, same length); a reranker that could not score a
// candidate leaves its entry at 0, which only ever demotes it.
func blendRerank(results []*FusedResult, rerankScores []float64) {
	for i, r := range results {
		rank := i + 1
		w := rerankWeight(rank)
		r.RRFScore = w*(1.0/float64(rank)) + (1-w)*rerankScores[i]
	}
	// Sort descending by the blended score only: the tie-break fields used
	// by compare() no longer apply once scores are blended with an
	// external reranker's output.
	sort.SliceStable(results, func(i, j int) bool { return results[i].RRFScore > results[j].RRFScore })
}
