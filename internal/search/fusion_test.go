package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuse_EmptyInputsReturnEmptySlice(t *testing.T) {
	f := NewRRFFusion()
	results := f.Fuse(nil, nil, DefaultWeights())
	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFuse_DocumentInBothListsIsMarked(t *testing.T) {
	f := NewRRFFusionWithK(60)
	fts := []FTSHit{{Hash: "aaa", Score: 1.0}}
	vec := []VectorHit{{Hash: "aaa", Score: 0.9}}

	results := f.Fuse(fts, vec, DefaultWeights())
	require.Len(t, results, 1)
	assert.True(t, results[0].InBothLists)
	assert.Equal(t, 1, results[0].FTSRank)
	assert.Equal(t, 1, results[0].VecRank)
}

func TestFuse_TopRankGetsLargestScore(t *testing.T) {
	f := NewRRFFusion()
	fts := []FTSHit{{Hash: "exact"}, {Hash: "other"}}
	results := f.Fuse(fts, nil, DefaultWeights())
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].Hash)
	assert.Greater(t, results[0].RRFScore, results[1].RRFScore)
}

func TestFuse_NormalizesTopScoreToOne(t *testing.T) {
	f := NewRRFFusion()
	fts := []FTSHit{{Hash: "a"}, {Hash: "b"}, {Hash: "c"}}
	results := f.Fuse(fts, nil, DefaultWeights())
	assert.InDelta(t, 1.0, results[0].RRFScore, 1e-9)
}

func TestFuse_TieBreaksByContentHashAscending(t *testing.T) {
	f := NewRRFFusion()
	// Two docs at identical rank in both lists produce identical RRF
	// scores; the deterministic tie-break falls to ascending hash.
	fts := []FTSHit{{Hash: "zzz"}, {Hash: "aaa"}}
	vec := []VectorHit{{Hash: "aaa"}, {Hash: "zzz"}}
	results := f.Fuse(fts, vec, Weights{FTS: 0.5, Vector: 0.5})
	require.Len(t, results, 2)
	assert.Equal(t, "aaa", results[0].Hash)
}

func TestFuse_MissingFromOneListStillScoresViaMissingRank(t *testing.T) {
	f := NewRRFFusion()
	fts := []FTSHit{{Hash: "only-fts"}}
	vec := []VectorHit{{Hash: "only-vec"}}
	results := f.Fuse(fts, vec, DefaultWeights())
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.InBothLists)
		assert.Greater(t, r.RRFScore, 0.0)
	}
}

func TestFuse_TopPositionBonusWidensGapBetweenRank1And2(t *testing.T) {
	f := NewRRFFusion()
	fts := []FTSHit{{Hash: "rank1"}, {Hash: "rank2"}}
	results := f.Fuse(fts, nil, DefaultWeights())
	require.Len(t, results, 2)

	// Without bonuses the rank1/rank2 raw RRF scores (1/61 vs 1/62) would
	// be nearly identical (ratio ~0.98); the +0.05/+0.02 bonuses should
	// pull rank2's normalized score well below that.
	ratio := results[1].RRFScore / results[0].RRFScore
	assert.Less(t, ratio, 0.6)
}

func TestRerankWeight_BucketsByPosition(t *testing.T) {
	assert.Equal(t, 0.75, rerankWeight(1))
	assert.Equal(t, 0.75, rerankWeight(3))
	assert.Equal(t, 0.60, rerankWeight(4))
	assert.Equal(t, 0.60, rerankWeight(10))
	assert.Equal(t, 0.40, rerankWeight(11))
}

func TestBlendRerank_ReordersByBlendedScore(t *testing.T) {
	results := []*FusedResult{
		{Hash: "first", RRFScore: 1.0},
		{Hash: "second", RRFScore: 0.9},
		{Hash: "third", RRFScore: 0.8},
		{Hash: "fourth", RRFScore: 0.7},
	}
	// Reranker prefers "fourth" over "third". The RRF weight is 0.75 at
	// rank 3 and 0.60 at rank 4, so "third" blends to 0.75*(1/3) + 0.25*0
	// = 0.25 and "fourth" to 0.60*(1/4) + 0.40*1 = 0.55.
	blendRerank(results, []float64{1.0, 1.0, 0.0, 1.0})
	assert.Equal(t, "fourth", results[2].Hash)
}
