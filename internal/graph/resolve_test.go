package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSymbolIndex maps a short name to a fixed candidate list.
type fakeSymbolIndex map[string][]string

func (f fakeSymbolIndex) Lookup(shortName string) []string { return f[shortName] }

func TestResolveEdges(t *testing.T) {
	ctx := context.Background()

	store := &fakeStore{
		edges: []Edge{
			{Source: "fqn:main.main", Target: "symbol:Process", Kind: EdgeCalls},
			{Source: "fqn:main.main", Target: "symbol:Ambiguous", Kind: EdgeCalls},
			{Source: "fqn:main.main", Target: "symbol:Unknown", Kind: EdgeCalls},
			{Source: "fqn:main.main", Target: "fqn:already.resolved", Kind: EdgeCalls},
			{Source: "file:a", Target: "file:b", Kind: EdgeImports},
		},
	}

	index := fakeSymbolIndex{
		"Process":   {"fqn:service.Process"},
		"Ambiguous": {"fqn:pkg1.Ambiguous", "fqn:pkg2.Ambiguous"},
	}

	resolved, err := ResolveEdges(ctx, store, index)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	var targets []string
	for _, e := range store.edges {
		targets = append(targets, e.Target)
	}
	assert.Contains(t, targets, "fqn:service.Process")
	assert.NotContains(t, targets, "symbol:Process")
	assert.Contains(t, targets, "symbol:Ambiguous", "ambiguous names are left unresolved")
	assert.Contains(t, targets, "symbol:Unknown", "names with zero candidates are left unresolved")
	assert.Contains(t, targets, "fqn:already.resolved")
	assert.Contains(t, targets, "file:b", "non-CALLS/REFERENCES edges are untouched")
}

func TestResolveEdges_NoEdges(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	index := fakeSymbolIndex{}

	resolved, err := ResolveEdges(ctx, store, index)
	require.NoError(t, err)
	assert.Equal(t, 0, resolved)
}
