package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/codemate/internal/cmerrors"
	"github.com/mvp-joe/codemate/internal/graph"
)

// GraphStore persists the code graph: nodes, live edges, and the
// append-only edge_history log that backs temporal queries ("who called
// this as of commit X"). Grounded on cortex's graph_writer.go/
// graph_reader.go, rebuilt against graph_nodes/graph_edges/edge_history
// instead of cortex's single nodes/edges pair.
type GraphStore interface {
	UpsertNode(ctx context.Context, n graph.Node) error
	UpsertEdge(ctx context.Context, e graph.Edge, authorEmail string) error
	DeleteEdge(ctx context.Context, source, target string, kind graph.EdgeKind, commitHash, authorEmail string) error
	Edges(ctx context.Context, source string, kind graph.EdgeKind) ([]graph.Edge, error)
	EdgesInto(ctx context.Context, target string, kind graph.EdgeKind) ([]graph.Edge, error)
	EdgeHistory(ctx context.Context, source, target string, kind graph.EdgeKind) ([]graph.EdgeHistoryEvent, error)
	// EdgeHistoryForNode returns every history event touching node as
	// either endpoint, ordered by authored_at. It backs edges_at_commit
	// (spec.md §4.5), which needs every triple node has ever
	// participated in, including ones since deleted and no longer
	// present in graph_edges.
	EdgeHistoryForNode(ctx context.Context, node string) ([]graph.EdgeHistoryEvent, error)
	AllEdges(ctx context.Context) ([]graph.Edge, error)
	AllNodes(ctx context.Context) ([]graph.Node, error)
	Node(ctx context.Context, id string) (*graph.Node, error)
}

type sqliteGraphStore struct {
	db querier
}

func (s *sqliteGraphStore) UpsertNode(ctx context.Context, n graph.Node) error {
	propsJSON, err := marshalProps(n.Properties)
	if err != nil {
		return fmt.Errorf("storage: marshaling node properties: %w", err)
	}
	_, err = sq.Insert("graph_nodes").
		Columns("id", "node_type", "properties_json").
		Values(n.ID, string(n.Type), propsJSON).
		Suffix("ON CONFLICT(id) DO UPDATE SET node_type = excluded.node_type, properties_json = excluded.properties_json").
		RunWith(sqExecer{ctx, s.db}).
		Exec()
	if err != nil {
		return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)
	}
	return nil
}

func (s *sqliteGraphStore) UpsertEdge(ctx context.Context, e graph.Edge, authorEmail string) error {
	propsJSON, err := marshalProps(e.Properties)
	if err != nil {
		return fmt.Errorf("storage: marshaling edge properties: %w", err)
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var existed int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM graph_edges WHERE source = ? AND target = ? AND kind = ?",
		e.Source, e.Target, string(e.Kind)).Scan(&existed); err != nil {
		return cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}

	_, err = sq.Insert("graph_edges").
		Columns("source", "target", "kind", "created_commit", "created_at", "properties_json").
		Values(e.Source, e.Target, string(e.Kind), nullableString(e.CreatedCommit), createdAt.Format(time.RFC3339), propsJSON).
		Suffix("ON CONFLICT(source, target, kind) DO UPDATE SET properties_json = excluded.properties_json").
		RunWith(sqExecer{ctx, s.db}).
		Exec()
	if err != nil {
		return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)
	}

	if existed > 0 {
		// A property-only change to an already-live edge is a no-op
		// event: edge_history only records creation and deletion.
		return nil
	}
	return s.recordHistory(ctx, e.Source, e.Target, e.Kind, graph.EdgeEventCreated, e.CreatedCommit, authorEmail, createdAt, e.Properties)
}

func (s *sqliteGraphStore) DeleteEdge(ctx context.Context, source, target string, kind graph.EdgeKind, commitHash, authorEmail string) error {
	_, err := sq.Delete("graph_edges").
		Where(sq.Eq{"source": source, "target": target, "kind": string(kind)}).
		RunWith(sqExecer{ctx, s.db}).
		Exec()
	if err != nil {
		return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)
	}
	return s.recordHistory(ctx, source, target, kind, graph.EdgeEventDeleted, commitHash, authorEmail, time.Now().UTC(), nil)
}

func (s *sqliteGraphStore) recordHistory(ctx context.Context, source, target string, kind graph.EdgeKind, event graph.EdgeEvent, commitHash, authorEmail string, authoredAt time.Time, props map[string]any) error {
	propsJSON, err := marshalProps(props)
	if err != nil {
		return fmt.Errorf("storage: marshaling edge history properties: %w", err)
	}
	_, err = sq.Insert("edge_history").
		Columns("source", "target", "kind", "event", "commit_hash", "authored_at", "author_email", "properties_json").
		Values(source, target, string(kind), string(event), commitHash, authoredAt.Format(time.RFC3339), nullableString(authorEmail), propsJSON).
		RunWith(sqExecer{ctx, s.db}).
		Exec()
	if err != nil {
		return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)
	}
	return nil
}

func (s *sqliteGraphStore) Edges(ctx context.Context, source string, kind graph.EdgeKind) ([]graph.Edge, error) {
	query := edgeSelectColumns + " FROM graph_edges WHERE source = ?"
	args := []any{source}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, string(kind))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func (s *sqliteGraphStore) EdgesInto(ctx context.Context, target string, kind graph.EdgeKind) ([]graph.Edge, error) {
	query := edgeSelectColumns + " FROM graph_edges WHERE target = ?"
	args := []any{target}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, string(kind))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func (s *sqliteGraphStore) AllNodes(ctx context.Context) ([]graph.Node, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, node_type, properties_json FROM graph_nodes")
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()

	var nodes []graph.Node
	for rows.Next() {
		var n graph.Node
		var nodeType string
		var propsJSON sql.NullString
		if err := rows.Scan(&n.ID, &nodeType, &propsJSON); err != nil {
			return nil, err
		}
		n.Type = graph.NodeType(nodeType)
		props, err := unmarshalProps(propsJSON.String)
		if err != nil {
			return nil, err
		}
		n.Properties = props
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *sqliteGraphStore) Node(ctx context.Context, id string) (*graph.Node, error) {
	var n graph.Node
	var nodeType string
	var propsJSON sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT id, node_type, properties_json FROM graph_nodes WHERE id = ?", id).
		Scan(&n.ID, &nodeType, &propsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cmerrors.New(cmerrors.ErrNodeNotFound, cmerrors.KindNotFound, "node "+id+" not found", nil)
	}
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	n.Type = graph.NodeType(nodeType)
	props, err := unmarshalProps(propsJSON.String)
	if err != nil {
		return nil, err
	}
	n.Properties = props
	return &n, nil
}

func (s *sqliteGraphStore) AllEdges(ctx context.Context) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, edgeSelectColumns+" FROM graph_edges")
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func (s *sqliteGraphStore) EdgeHistory(ctx context.Context, source, target string, kind graph.EdgeKind) ([]graph.EdgeHistoryEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target, kind, event, commit_hash, authored_at, author_email, properties_json
		FROM edge_history
		WHERE source = ? AND target = ? AND kind = ?
		ORDER BY authored_at ASC
	`, source, target, string(kind))
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanEdgeHistory(rows)
}

func (s *sqliteGraphStore) EdgeHistoryForNode(ctx context.Context, node string) ([]graph.EdgeHistoryEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target, kind, event, commit_hash, authored_at, author_email, properties_json
		FROM edge_history
		WHERE source = ? OR target = ?
		ORDER BY authored_at ASC
	`, node, node)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanEdgeHistory(rows)
}

func scanEdgeHistory(rows *sql.Rows) ([]graph.EdgeHistoryEvent, error) {
	var events []graph.EdgeHistoryEvent
	for rows.Next() {
		var (
			ev                                           graph.EdgeHistoryEvent
			kindStr, eventStr, authoredAtStr, propsJSON string
			authorEmail                                  sql.NullString
		)
		if err := rows.Scan(&ev.Source, &ev.Target, &kindStr, &eventStr, &ev.CommitHash, &authoredAtStr, &authorEmail, &propsJSON); err != nil {
			return nil, err
		}
		ev.Kind = graph.EdgeKind(kindStr)
		ev.Event = graph.EdgeEvent(eventStr)
		ev.AuthorEmail = authorEmail.String
		ev.AuthoredAt = parseTime(authoredAtStr)
		props, err := unmarshalProps(propsJSON)
		if err != nil {
			return nil, err
		}
		ev.Properties = props
		events = append(events, ev)
	}
	return events, rows.Err()
}

const edgeSelectColumns = `SELECT source, target, kind, created_commit, created_at, properties_json`

func scanEdges(rows *sql.Rows) ([]graph.Edge, error) {
	var edges []graph.Edge
	for rows.Next() {
		var (
			e                                        graph.Edge
			kindStr                                  string
			createdCommit                            sql.NullString
			createdAtStr, propsJSON                  sql.NullString
		)
		if err := rows.Scan(&e.Source, &e.Target, &kindStr, &createdCommit, &createdAtStr, &propsJSON); err != nil {
			return nil, err
		}
		e.Kind = graph.EdgeKind(kindStr)
		e.CreatedCommit = createdCommit.String
		e.CreatedAt = parseTime(createdAtStr.String)
		props, err := unmarshalProps(propsJSON.String)
		if err != nil {
			return nil, err
		}
		e.Properties = props
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func marshalProps(props map[string]any) (any, error) {
	if len(props) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalProps(s string) (map[string]any, error) {
	if s == "" {
		return nil, nil
	}
	var props map[string]any
	if err := json.Unmarshal([]byte(s), &props); err != nil {
		return nil, err
	}
	return props, nil
}
