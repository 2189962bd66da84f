package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for exercising Engine without a
// database, mirroring the teacher's in-package test doubles for
// Searcher (searcher_test.go builds a full on-disk Storage; this
// package's Store is small enough to fake directly instead).
type fakeStore struct {
	nodes   []Node
	edges   []Edge
	history []EdgeHistoryEvent
}

func (s *fakeStore) UpsertNode(ctx context.Context, n Node) error { s.nodes = append(s.nodes, n); return nil }

func (s *fakeStore) UpsertEdge(ctx context.Context, e Edge, authorEmail string) error {
	s.edges = append(s.edges, e)
	return nil
}

func (s *fakeStore) DeleteEdge(ctx context.Context, source, target string, kind EdgeKind, commitHash, authorEmail string) error {
	out := s.edges[:0]
	for _, e := range s.edges {
		if e.Source == source && e.Target == target && e.Kind == kind {
			continue
		}
		out = append(out, e)
	}
	s.edges = out
	return nil
}

func (s *fakeStore) Edges(ctx context.Context, source string, kind EdgeKind) ([]Edge, error) {
	var out []Edge
	for _, e := range s.edges {
		if e.Source == source && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) EdgesInto(ctx context.Context, target string, kind EdgeKind) ([]Edge, error) {
	var out []Edge
	for _, e := range s.edges {
		if e.Target == target && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) EdgeHistory(ctx context.Context, source, target string, kind EdgeKind) ([]EdgeHistoryEvent, error) {
	var out []EdgeHistoryEvent
	for _, ev := range s.history {
		if ev.Source == source && ev.Target == target && ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *fakeStore) EdgeHistoryForNode(ctx context.Context, node string) ([]EdgeHistoryEvent, error) {
	var out []EdgeHistoryEvent
	for _, ev := range s.history {
		if ev.Source == node || ev.Target == node {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *fakeStore) AllEdges(ctx context.Context) ([]Edge, error) { return s.edges, nil }

func (s *fakeStore) AllNodes(ctx context.Context) ([]Node, error) { return s.nodes, nil }

func (s *fakeStore) Node(ctx context.Context, id string) (*Node, error) {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return &s.nodes[i], nil
		}
	}
	return nil, nil
}

// callChainStore builds the classic main -> handler -> service -> repo
// CALLS chain plus one IMPORTS edge, the same shape the teacher's
// searcher_test.go uses for its callers/callees table.
func callChainStore() *fakeStore {
	s := &fakeStore{}
	for _, id := range []string{"fqn:main.main", "fqn:handler.ServeHTTP", "fqn:service.Process", "fqn:repo.GetData", "file:internal/mcp", "file:internal/graph"} {
		s.nodes = append(s.nodes, Node{ID: id, Type: NodeChunk})
	}
	s.edges = []Edge{
		{Source: "fqn:main.main", Target: "fqn:handler.ServeHTTP", Kind: EdgeCalls},
		{Source: "fqn:handler.ServeHTTP", Target: "fqn:service.Process", Kind: EdgeCalls},
		{Source: "fqn:service.Process", Target: "fqn:repo.GetData", Kind: EdgeCalls},
		{Source: "file:internal/mcp", Target: "file:internal/graph", Kind: EdgeImports},
	}
	return s
}

func TestEngine_Callers(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(callChainStore())
	require.NoError(t, engine.Reload(ctx))

	tests := []struct {
		name     string
		target   string
		depth    int
		wantIDs  []string
	}{
		{"direct callers", "fqn:handler.ServeHTTP", 1, []string{"fqn:main.main"}},
		{"transitive callers depth 2", "fqn:service.Process", 2, []string{"fqn:handler.ServeHTTP", "fqn:main.main"}},
		{"no callers", "fqn:main.main", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := engine.Callers(tt.target, tt.depth)
			ids := make([]string, len(hits))
			for i, h := range hits {
				ids[i] = h.ID
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func TestEngine_Callees(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(callChainStore())
	require.NoError(t, engine.Reload(ctx))

	hits := engine.Callees("fqn:main.main", 2)
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	assert.ElementsMatch(t, []string{"fqn:handler.ServeHTTP", "fqn:service.Process"}, ids)

	for _, h := range hits {
		if h.ID == "fqn:handler.ServeHTTP" {
			assert.Equal(t, 1, h.Depth)
		}
		if h.ID == "fqn:service.Process" {
			assert.Equal(t, 2, h.Depth)
		}
	}
}

func TestEngine_DepsAndRDeps(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(callChainStore())
	require.NoError(t, engine.Reload(ctx))

	assert.Equal(t, []string{"file:internal/graph"}, engine.Deps("file:internal/mcp"))
	assert.Equal(t, []string{"file:internal/mcp"}, engine.RDeps("file:internal/graph"))
	assert.Empty(t, engine.Deps("file:internal/graph"))
}

func TestEngine_Tree(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(callChainStore())
	require.NoError(t, engine.Reload(ctx))

	tree := engine.Tree("fqn:main.main", 3)
	assert.Equal(t, []string{"fqn:handler.ServeHTTP", "fqn:service.Process", "fqn:repo.GetData"}, tree)
}

func TestEngine_Tree_DepthLimited(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(callChainStore())
	require.NoError(t, engine.Reload(ctx))

	tree := engine.Tree("fqn:main.main", 1)
	assert.Equal(t, []string{"fqn:handler.ServeHTTP"}, tree)
}

func TestEngine_Node(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(callChainStore())
	require.NoError(t, engine.Reload(ctx))

	n, ok := engine.Node("fqn:main.main")
	require.True(t, ok)
	assert.Equal(t, "fqn:main.main", n.ID)

	_, ok = engine.Node("fqn:does.not.exist")
	assert.False(t, ok)
}

func TestEngine_HasCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("acyclic chain", func(t *testing.T) {
		engine := NewEngine(callChainStore())
		require.NoError(t, engine.Reload(ctx))
		assert.False(t, engine.HasCycle())
	})

	t.Run("cyclic calls", func(t *testing.T) {
		s := &fakeStore{
			nodes: []Node{{ID: "fqn:a"}, {ID: "fqn:b"}},
			edges: []Edge{
				{Source: "fqn:a", Target: "fqn:b", Kind: EdgeCalls},
				{Source: "fqn:b", Target: "fqn:a", Kind: EdgeCalls},
			},
		}
		engine := NewEngine(s)
		require.NoError(t, engine.Reload(ctx))
		assert.True(t, engine.HasCycle())
	})
}

func TestEngine_Reload_UnresolvedEdgeTargetDoesNotBreakTraversal(t *testing.T) {
	ctx := context.Background()
	s := &fakeStore{
		nodes: []Node{{ID: "fqn:a"}},
		edges: []Edge{
			{Source: "fqn:a", Target: "symbol:unresolved", Kind: EdgeCalls},
		},
	}
	engine := NewEngine(s)
	require.NoError(t, engine.Reload(ctx))

	hits := engine.Callees("fqn:a", 1)
	require.Len(t, hits, 1)
	assert.Equal(t, "symbol:unresolved", hits[0].ID)
}

func TestEngine_EdgeCreatedAt_ReturnsEarliestCreatedEvent(t *testing.T) {
	ctx := context.Background()
	s := &fakeStore{
		history: []EdgeHistoryEvent{
			{Source: "fqn:a", Target: "fqn:b", Kind: EdgeCalls, Event: EdgeEventCreated, AuthoredAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
			{Source: "fqn:a", Target: "fqn:b", Kind: EdgeCalls, Event: EdgeEventDeleted, AuthoredAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
			{Source: "fqn:a", Target: "fqn:b", Kind: EdgeCalls, Event: EdgeEventCreated, AuthoredAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	engine := NewEngine(s)

	earliest, ok, err := engine.EdgeCreatedAt(ctx, "fqn:a", "fqn:b", EdgeCalls)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, earliest.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestEngine_EdgeCreatedAt_NoEventsIsNotOK(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(&fakeStore{})
	_, ok, err := engine.EdgeCreatedAt(ctx, "fqn:a", "fqn:b", EdgeCalls)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestEngine_TemporalLaw_PresentAtCommit proves invariant I9: for any
// edge and any commit, present_at(c) iff last_event_before(c) == created.
// The edge is created, then deleted, then re-created; querying the bound
// at each stage must reflect exactly that lifecycle.
func TestEngine_TemporalLaw_PresentAtCommit(t *testing.T) {
	ctx := context.Background()
	created1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	deleted := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	created2 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	s := &fakeStore{
		history: []EdgeHistoryEvent{
			{Source: "fqn:main.main", Target: "fqn:handler.ServeHTTP", Kind: EdgeCalls, Event: EdgeEventCreated, AuthoredAt: created1},
			{Source: "fqn:main.main", Target: "fqn:handler.ServeHTTP", Kind: EdgeCalls, Event: EdgeEventDeleted, AuthoredAt: deleted},
			{Source: "fqn:main.main", Target: "fqn:handler.ServeHTTP", Kind: EdgeCalls, Event: EdgeEventCreated, AuthoredAt: created2},
		},
	}
	engine := NewEngine(s)

	before := func(t time.Time, d time.Duration) time.Time { return t.Add(d) }

	cases := []struct {
		name    string
		bound   time.Time
		present bool
	}{
		{"before any event", before(created1, -24 * time.Hour), false},
		{"at creation", created1, true},
		{"between creation and deletion", before(created1, 12 * time.Hour), true},
		{"at deletion", deleted, false},
		{"between deletion and recreation", before(deleted, 12 * time.Hour), false},
		{"at recreation", created2, true},
		{"long after recreation", before(created2, 24 * time.Hour), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			present, err := engine.EdgePresentAtCommit(ctx, "fqn:main.main", "fqn:handler.ServeHTTP", EdgeCalls, tc.bound)
			require.NoError(t, err)
			assert.Equal(t, tc.present, present)
		})
	}
}

func TestEngine_EdgesAtCommit_FoldsAllTriplesTouchingNode(t *testing.T) {
	ctx := context.Background()
	s := &fakeStore{
		history: []EdgeHistoryEvent{
			{Source: "fqn:a", Target: "fqn:b", Kind: EdgeCalls, Event: EdgeEventCreated, AuthoredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Source: "fqn:a", Target: "fqn:c", Kind: EdgeCalls, Event: EdgeEventCreated, AuthoredAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
			{Source: "fqn:a", Target: "fqn:c", Kind: EdgeCalls, Event: EdgeEventDeleted, AuthoredAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
			{Source: "fqn:d", Target: "fqn:a", Kind: EdgeCalls, Event: EdgeEventCreated, AuthoredAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		},
	}
	engine := NewEngine(s)

	edges, err := engine.EdgesAtCommit(ctx, "fqn:a", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, edges, 2, "a->b and d->a are present, a->c was deleted before the bound")

	var targets []string
	for _, e := range edges {
		if e.Source == "fqn:a" {
			targets = append(targets, e.Target)
		}
	}
	assert.Equal(t, []string{"fqn:b"}, targets)
}
