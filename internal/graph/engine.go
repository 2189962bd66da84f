package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dominikbraun/graph"
)

// Store is the persistence dependency the engine reloads from and writes
// through to. Implemented by internal/storage's GraphStore; declared
// here so this package doesn't import internal/storage.
type Store interface {
	UpsertNode(ctx context.Context, n Node) error
	UpsertEdge(ctx context.Context, e Edge, authorEmail string) error
	DeleteEdge(ctx context.Context, source, target string, kind EdgeKind, commitHash, authorEmail string) error
	Edges(ctx context.Context, source string, kind EdgeKind) ([]Edge, error)
	EdgesInto(ctx context.Context, target string, kind EdgeKind) ([]Edge, error)
	EdgeHistory(ctx context.Context, source, target string, kind EdgeKind) ([]EdgeHistoryEvent, error)
	EdgeHistoryForNode(ctx context.Context, node string) ([]EdgeHistoryEvent, error)
	AllEdges(ctx context.Context) ([]Edge, error)
	AllNodes(ctx context.Context) ([]Node, error)
	Node(ctx context.Context, id string) (*Node, error)
}

// Hit is one traversal result tagged with the depth it was found at.
type Hit struct {
	ID    string
	Depth int
}

// Engine is the in-memory traversal layer over the persisted code graph:
// an adjacency graph plus reverse indexes for O(1) callers/callees/
// dependency lookups, reloaded wholesale from Store on Reload. Grounded
// on the teacher's internal/graph/searcher.go (dominikbraun/graph-backed
// in-memory graph, reverse-index maps, recursive depth-bounded
// traversal), rebuilt against this package's typed Node/Edge/EdgeKind
// instead of the teacher's generic shape, and against Store instead of a
// JSON-file-backed Storage interface (superseded outright by
// internal/storage's SQLite persistence).
type Engine struct {
	store Store

	g graph.Graph[string, *Node]

	callers map[string][]string // callee -> [caller]
	callees map[string][]string // caller -> [callee]
	deps    map[string][]string // importer -> [imported]
	rdeps   map[string][]string // imported -> [importer]
}

// NewEngine constructs an Engine bound to store. Call Reload before use.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Reload rebuilds the in-memory graph and reverse indexes from Store.
func (e *Engine) Reload(ctx context.Context) error {
	nodes, err := e.store.AllNodes(ctx)
	if err != nil {
		return fmt.Errorf("graph: loading nodes: %w", err)
	}
	edges, err := e.store.AllEdges(ctx)
	if err != nil {
		return fmt.Errorf("graph: loading edges: %w", err)
	}

	g := graph.New(func(n *Node) string { return n.ID }, graph.Directed())
	for i := range nodes {
		n := nodes[i]
		if err := g.AddVertex(&n); err != nil {
			return fmt.Errorf("graph: adding vertex %s: %w", n.ID, err)
		}
	}

	callers := make(map[string][]string)
	callees := make(map[string][]string)
	deps := make(map[string][]string)
	rdeps := make(map[string][]string)

	for _, edge := range edges {
		// AddEdge errors when an endpoint vertex is missing (e.g. an
		// unresolved symbol:/external: target with no graph_nodes row
		// yet); that's expected and doesn't block the reverse indexes,
		// which key by string ID regardless of vertex presence.
		_ = g.AddEdge(edge.Source, edge.Target)

		switch edge.Kind {
		case EdgeCalls:
			callees[edge.Source] = append(callees[edge.Source], edge.Target)
			callers[edge.Target] = append(callers[edge.Target], edge.Source)
		case EdgeImports:
			deps[edge.Source] = append(deps[edge.Source], edge.Target)
			rdeps[edge.Target] = append(rdeps[edge.Target], edge.Source)
		}
	}

	e.g = g
	e.callers = callers
	e.callees = callees
	e.deps = deps
	e.rdeps = rdeps
	return nil
}

// Callers returns IDs that call target, recursively up to depth hops.
func (e *Engine) Callers(target string, depth int) []Hit {
	return e.traverseReverse(e.callers, target, depth)
}

// Callees returns IDs that target calls, recursively up to depth hops.
func (e *Engine) Callees(target string, depth int) []Hit {
	return e.traverseReverse(e.callees, target, depth)
}

// Deps returns what target imports (always depth 1).
func (e *Engine) Deps(target string) []string {
	return append([]string(nil), e.deps[target]...)
}

// RDeps returns what imports target (always depth 1).
func (e *Engine) RDeps(target string) []string {
	return append([]string(nil), e.rdeps[target]...)
}

// traverseReverse walks index recursively from target up to depth hops,
// visiting each node at most once at its shallowest depth. Grounded on
// searcher.go's queryCallers/queryCallees (identical shape, parameterized
// over which index to walk since CALLS is the only edge kind with
// depth-bounded traversal in spec.md).
func (e *Engine) traverseReverse(index map[string][]string, target string, depth int) []Hit {
	var results []Hit
	visited := make(map[string]int)

	var walk func(id string, currentDepth int)
	walk = func(id string, currentDepth int) {
		if currentDepth > depth {
			return
		}
		if prevDepth, seen := visited[id]; seen && prevDepth <= currentDepth {
			return
		}
		visited[id] = currentDepth

		for _, next := range index[id] {
			results = append(results, Hit{ID: next, Depth: currentDepth})
			if currentDepth < depth {
				walk(next, currentDepth+1)
			}
		}
	}

	walk(target, 1)
	return results
}

// Tree returns a depth-bounded call tree rooted at target, as a
// depth-ordered, deduplicated list of IDs reachable via CALLS edges.
func (e *Engine) Tree(target string, depth int) []string {
	results := e.Callees(target, depth)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Depth < results[j].Depth })
	seen := make(map[string]bool)
	var ids []string
	for _, r := range results {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		ids = append(ids, r.ID)
	}
	return ids
}

// Node returns the graph node for id, if loaded.
func (e *Engine) Node(id string) (*Node, bool) {
	n, err := e.g.Vertex(id)
	if err != nil {
		return nil, false
	}
	return n, true
}

// HasCycle reports whether the loaded graph contains a cycle, using
// dominikbraun/graph's topological sort. Edges of every kind take part,
// not only CALLS, as long as both endpoints are loaded nodes.
// Grounded on SPEC_FULL §4.5's "cycle detection" requirement; the
// teacher's searcher.go never implemented this despite importing
// dominikbraun/graph for traversal, so there is no prior art to adapt —
// this uses the library's TopologicalSort directly.
func (e *Engine) HasCycle() bool {
	_, err := graph.TopologicalSort(e.g)
	return err != nil
}

// EdgeCreatedAt returns the earliest created event recorded for the
// (source, target, kind) triple, per spec.md §4.5's edge_created_at.
// ok is false if the triple has never had a created event.
func (e *Engine) EdgeCreatedAt(ctx context.Context, source, target string, kind EdgeKind) (time.Time, bool, error) {
	events, err := e.store.EdgeHistory(ctx, source, target, kind)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("graph: loading edge history for %s->%s (%s): %w", source, target, kind, err)
	}

	var earliest time.Time
	found := false
	for _, ev := range events {
		if ev.Event != EdgeEventCreated {
			continue
		}
		if !found || ev.AuthoredAt.Before(earliest) {
			earliest = ev.AuthoredAt
			found = true
		}
	}
	return earliest, found, nil
}

// EdgePresentAtCommit folds the (source, target, kind) triple's history
// ordered by authored_at and reports whether the edge was present at
// bound: present iff the last event at or before bound is a created
// event. This is invariant I9, the temporal law: present_at(c) iff
// last_event_before(c) == created.
func (e *Engine) EdgePresentAtCommit(ctx context.Context, source, target string, kind EdgeKind, bound time.Time) (bool, error) {
	events, err := e.store.EdgeHistory(ctx, source, target, kind)
	if err != nil {
		return false, fmt.Errorf("graph: loading edge history for %s->%s (%s): %w", source, target, kind, err)
	}
	return foldPresence(events, bound), nil
}

// EdgesAtCommit materialises the edge set touching node as of bound
// (spec.md §4.5's edges_at_commit), by folding every history event node
// has ever participated in — as either endpoint, across every edge kind,
// including edges since deleted and no longer present in the live
// graph — grouped by triple and tested against bound with the same fold
// foldPresence uses for a single triple.
func (e *Engine) EdgesAtCommit(ctx context.Context, node string, bound time.Time) ([]Edge, error) {
	events, err := e.store.EdgeHistoryForNode(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("graph: loading edge history for node %s: %w", node, err)
	}

	type triple struct {
		source, target string
		kind            EdgeKind
	}
	byTriple := make(map[triple][]EdgeHistoryEvent)
	var order []triple
	for _, ev := range events {
		t := triple{ev.Source, ev.Target, ev.Kind}
		if _, seen := byTriple[t]; !seen {
			order = append(order, t)
		}
		byTriple[t] = append(byTriple[t], ev)
	}

	var edges []Edge
	for _, t := range order {
		if !foldPresence(byTriple[t], bound) {
			continue
		}
		edges = append(edges, Edge{Source: t.source, Target: t.target, Kind: t.kind})
	}
	return edges, nil
}

// foldPresence implements I9's fold: events are assumed pre-sorted
// ascending by authored_at (both EdgeHistory and EdgeHistoryForNode
// order that way); the edge is present iff the last event at or before
// bound exists and is a created event.
func foldPresence(events []EdgeHistoryEvent, bound time.Time) bool {
	present := false
	for _, ev := range events {
		if ev.AuthoredAt.After(bound) {
			break
		}
		present = ev.Event == EdgeEventCreated
	}
	return present
}
