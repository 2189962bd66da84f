// Package graph implements the code graph: nodes keyed by typed string ID
// (chunk:<hash>, file:<path>, fqn:<fqn>, module:<path>), edges with a
// fixed kind vocabulary, and an append-only edge_history event log that
// gives every edge temporal attribution. Grounded on cortex's
// internal/graph package, rewired to dominikbraun/graph for traversal and
// to internal/storage.GraphStore for persistence.
package graph

import "time"

// NodeType is the category of a graph node.
type NodeType string

const (
	NodeChunk  NodeType = "chunk"
	NodeFile   NodeType = "file"
	NodeCommit NodeType = "commit"
	NodeBranch NodeType = "branch"
	NodeAuthor NodeType = "author"
	NodeModule NodeType = "module"
)

// Node is one entity in the graph, identified by a typed string ID
// ("chunk:<hash>", "file:<path>", "fqn:<fqn>", "module:<path>").
type Node struct {
	ID         string         `json:"id"`
	Type       NodeType       `json:"node_type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// EdgeKind is the fixed vocabulary of relationships the graph records.
type EdgeKind string

const (
	EdgeCalls      EdgeKind = "CALLS"
	EdgeImports    EdgeKind = "IMPORTS"
	EdgeExtends    EdgeKind = "EXTENDS"
	EdgeImplements EdgeKind = "IMPLEMENTS"
	EdgeReferences EdgeKind = "REFERENCES"
	EdgeContains   EdgeKind = "CONTAINS"
	EdgeAuthored   EdgeKind = "AUTHORED"
	EdgeModified   EdgeKind = "MODIFIED"
	EdgeSimilarTo  EdgeKind = "SIMILAR_TO"
)

// Edge is one relationship between two nodes. At most one live edge
// exists per (Source, Target, Kind) triple; the triple is the storage
// layer's uniqueness constraint.
type Edge struct {
	Source        string         `json:"source"`
	Target        string         `json:"target"`
	Kind          EdgeKind       `json:"kind"`
	CreatedCommit string         `json:"created_commit,omitempty"`
	CreatedAt     time.Time      `json:"created_at,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
}

// EdgeEvent distinguishes the two event types edge_history records.
type EdgeEvent string

const (
	EdgeEventCreated EdgeEvent = "created"
	EdgeEventDeleted EdgeEvent = "deleted"
)

// EdgeHistoryEvent is one append-only record of an edge's lifecycle,
// giving callers(), callees(), and tree() their "as of commit X" view.
// Only creation and deletion are recorded; a property-only change to an
// otherwise-unchanged edge is a no-op event (see DESIGN.md open question 1).
type EdgeHistoryEvent struct {
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	Kind         EdgeKind       `json:"kind"`
	Event        EdgeEvent      `json:"event"`
	CommitHash   string         `json:"commit_hash"`
	AuthoredAt   time.Time      `json:"authored_at"`
	AuthorEmail  string         `json:"author_email,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
}

// ModuleLevel is the granularity at which cross-module edges are rolled up.
type ModuleLevel string

const (
	ModuleLevelCrate  ModuleLevel = "crate"
	ModuleLevelModule ModuleLevel = "module"
)

// Module is one aggregation unit for the modules(level) roll-up: a
// package/crate/directory-level grouping of chunks, detected by the
// nearest upward marker file (go.mod, Cargo.toml, package.json, ...).
type Module struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	Language    string      `json:"language"`
	ProjectType string      `json:"project_type"`
	ParentID    string      `json:"parent_id,omitempty"`
}
