package storage

import (
	"context"
	"time"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/codemate/internal/chunk"
)

// CachedChunkStore wraps a ChunkStore with a weight-based in-memory
// read-through cache, keyed by content hash. Since chunks are immutable,
// a cache hit never needs invalidation beyond eviction. Grounded on
// cortex's graph/searcher.go otter.Cache usage (there: file-line cache
// for context injection; here: hot chunk reads).
type CachedChunkStore struct {
	inner ChunkStore
	cache otter.Cache[string, chunk.Chunk]
}

// NewCachedChunkStore wraps inner with an otter cache whose capacity
// bounds the total cost of the cached chunks, each chunk costing
// len(Content), and which evicts entries older than maxAge (0 disables
// the age bound, leaving capacity-based eviction only).
func NewCachedChunkStore(inner ChunkStore, capacity int, maxAge time.Duration) (*CachedChunkStore, error) {
	builder := otter.MustBuilder[string, chunk.Chunk](capacity).
		Cost(func(key string, value chunk.Chunk) uint32 {
			return uint32(len(value.Content))
		}).
		CollectStats()
	if maxAge > 0 {
		builder = builder.WithTTL(maxAge)
	}
	cache, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &CachedChunkStore{inner: inner, cache: cache}, nil
}

func (c *CachedChunkStore) Put(ctx context.Context, ch chunk.Chunk) error {
	if err := c.inner.Put(ctx, ch); err != nil {
		return err
	}
	c.cache.Set(ch.Hash.String(), ch)
	return nil
}

func (c *CachedChunkStore) PutMany(ctx context.Context, chunks []chunk.Chunk) error {
	if err := c.inner.PutMany(ctx, chunks); err != nil {
		return err
	}
	for _, ch := range chunks {
		c.cache.Set(ch.Hash.String(), ch)
	}
	return nil
}

func (c *CachedChunkStore) Get(ctx context.Context, hash chunk.ContentHash) (*chunk.Chunk, error) {
	if cached, ok := c.cache.Get(hash.String()); ok {
		return &cached, nil
	}
	ch, err := c.inner.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	c.cache.Set(hash.String(), *ch)
	return ch, nil
}

func (c *CachedChunkStore) GetMany(ctx context.Context, hashes []chunk.ContentHash) ([]chunk.Chunk, error) {
	var missing []chunk.ContentHash
	result := make([]chunk.Chunk, 0, len(hashes))
	for _, h := range hashes {
		if cached, ok := c.cache.Get(h.String()); ok {
			result = append(result, cached)
			continue
		}
		missing = append(missing, h)
	}
	if len(missing) == 0 {
		return result, nil
	}
	fetched, err := c.inner.GetMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, ch := range fetched {
		c.cache.Set(ch.Hash.String(), ch)
		result = append(result, ch)
	}
	return result, nil
}

// Close stops the cache's background maintenance goroutine.
func (c *CachedChunkStore) Close() {
	c.cache.Close()
}
