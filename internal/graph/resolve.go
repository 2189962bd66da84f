package graph

import (
	"context"
	"strings"
)

// SymbolIndex maps a short symbol name to the FQN-qualified node IDs
// ("fqn:<fqn>") that could be its definition. Implemented by whatever
// orchestration layer has the chunk table in scope (it needs ChunkStore
// to build the name -> FQN map); declared here so this package doesn't
// depend on internal/storage or internal/chunk for FQN construction.
type SymbolIndex interface {
	Lookup(shortName string) []string
}

// ResolveEdges rewrites pipeline-stage "symbol:<name>" call-edge targets
// into "fqn:<fqn>" once a unique definition is known, per spec.md's
// "unresolved call targets are stored as symbol:<short_name> pending
// graph resolution." Ambiguous names (more than one candidate definition)
// are left unresolved rather than guessing; so are names with zero
// candidates (likely external or not-yet-indexed). Returns the number of
// edges rewritten.
func ResolveEdges(ctx context.Context, store Store, index SymbolIndex) (int, error) {
	edges, err := store.AllEdges(ctx)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, e := range edges {
		if e.Kind != EdgeCalls && e.Kind != EdgeReferences {
			continue
		}
		name, ok := strings.CutPrefix(e.Target, "symbol:")
		if !ok {
			continue
		}

		candidates := index.Lookup(name)
		if len(candidates) != 1 {
			continue
		}

		if err := store.DeleteEdge(ctx, e.Source, e.Target, e.Kind, e.CreatedCommit, ""); err != nil {
			return resolved, err
		}
		rewritten := e
		rewritten.Target = candidates[0]
		if err := store.UpsertEdge(ctx, rewritten, ""); err != nil {
			return resolved, err
		}
		resolved++
	}

	return resolved, nil
}
