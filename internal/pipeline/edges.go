package pipeline

import (
	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/extract"
	"github.com/mvp-joe/codemate/internal/graph"
)

// buildEdges emits the edges one file can determine without consulting
// any other file: CONTAINS is always resolvable (file -> its own
// chunks); CALLS and IMPORTS targets are left unresolved
// (symbol:<name>, external:<specifier>) per spec.md's "resolution
// against the graph happens later" design. graph.ResolveEdges later
// rewrites a symbol: target to the single ID its SymbolIndex returns for
// the name (ingest's index returns chunk:<hash> IDs); external: targets
// are not rewritten.
func buildEdges(path string, extraction *extract.Extraction, chunksByDef [][]chunk.Chunk) []graph.Edge {
	var edges []graph.Edge

	fileNode := "file:" + path

	// symbolHash maps a definition's short name to the hash of its first
	// (head) window, which is the chunk CALLS edges anchor to.
	symbolHash := make(map[string]chunk.ContentHash)

	for i, def := range extraction.Definitions {
		for _, c := range chunksByDef[i] {
			edges = append(edges, graph.Edge{
				Source: fileNode,
				Target: "chunk:" + c.Hash.String(),
				Kind:   graph.EdgeContains,
			})
		}
		if len(chunksByDef[i]) > 0 && def.SymbolName != "" {
			symbolHash[def.SymbolName] = chunksByDef[i][0].Hash
		}
	}

	for _, call := range extraction.Calls {
		source := fileNode
		if call.CallerSymbol != "" {
			if hash, ok := symbolHash[call.CallerSymbol]; ok {
				source = "chunk:" + hash.String()
			}
		}
		edges = append(edges, graph.Edge{
			Source: source,
			Target: "symbol:" + call.Callee,
			Kind:   graph.EdgeCalls,
		})
	}

	for _, imp := range extraction.Imports {
		edges = append(edges, graph.Edge{
			Source: fileNode,
			Target: "external:" + imp.Specifier,
			Kind:   graph.EdgeImports,
		})
	}

	return edges
}
