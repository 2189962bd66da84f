package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codemate/internal/chunk"
)

func TestBuildFTSQuery(t *testing.T) {
	assert.Equal(t, "token refresh", BuildFTSQuery("token refresh", false))
	assert.Equal(t, `"token refresh"`, BuildFTSQuery("token refresh", true))
	assert.Equal(t, `""quoted""`, BuildFTSQuery(`"quoted"`, false), "embedded quotes are doubled per FTS5 escaping rules")
}

func TestFTSIndex_Query_MatchesOnContent(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	chunks := &sqliteChunkStore{db: db}
	fts := &sqliteFTSIndex{db: db}

	target := testChunk("func RefreshToken() { doRefresh() }\n")
	other := testChunk("func Unrelated() { return }\n")
	require.NoError(t, chunks.PutMany(ctx, []chunk.Chunk{target, other}))

	matches, err := fts.Query(ctx, BuildFTSQuery("RefreshToken", false), 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, target.Hash, matches[0].Hash)
}

func TestFTSIndex_Query_NoMatches(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	chunks := &sqliteChunkStore{db: db}
	fts := &sqliteFTSIndex{db: db}

	require.NoError(t, chunks.Put(ctx, testChunk("func Unrelated() { return }\n")))

	matches, err := fts.Query(ctx, BuildFTSQuery("NeverPresent", false), 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
