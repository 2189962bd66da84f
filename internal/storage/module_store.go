package storage

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/codemate/internal/cmerrors"
	"github.com/mvp-joe/codemate/internal/graph"
)

// ModuleStore persists the module/crate roll-up: directory-level
// groupings of chunks, detected by the nearest upward marker file.
// Grounded on cortex's module_aggregator.go, rebuilt against the modules
// table in DESIGN.md.
type ModuleStore interface {
	Upsert(ctx context.Context, m graph.Module) error
	Get(ctx context.Context, id string) (*graph.Module, error)
	Children(ctx context.Context, parentID string) ([]graph.Module, error)
	All(ctx context.Context) ([]graph.Module, error)
}

type sqliteModuleStore struct {
	db querier
}

func (s *sqliteModuleStore) Upsert(ctx context.Context, m graph.Module) error {
	_, err := sq.Insert("modules").
		Columns("id", "name", "path", "language", "project_type", "parent_id").
		Values(m.ID, m.Name, m.Path, m.Language, nullableString(m.ProjectType), nullableString(m.ParentID)).
		Suffix(`ON CONFLICT(id) DO UPDATE SET name = excluded.name, path = excluded.path,
			language = excluded.language, project_type = excluded.project_type, parent_id = excluded.parent_id`).
		RunWith(sqExecer{ctx, s.db}).
		Exec()
	if err != nil {
		return cmerrors.Wrap(cmerrors.ErrStorageWrite, cmerrors.KindStorageError, err)
	}
	return nil
}

func (s *sqliteModuleStore) Get(ctx context.Context, id string) (*graph.Module, error) {
	row := s.db.QueryRowContext(ctx, moduleSelectColumns+" FROM modules WHERE id = ?", id)
	m, err := scanModule(row)
	if err == sql.ErrNoRows {
		return nil, cmerrors.New(cmerrors.ErrModuleNotFound, cmerrors.KindNotFound, "module "+id+" not found", nil)
	}
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	return m, nil
}

func (s *sqliteModuleStore) Children(ctx context.Context, parentID string) ([]graph.Module, error) {
	rows, err := s.db.QueryContext(ctx, moduleSelectColumns+" FROM modules WHERE parent_id = ?", parentID)
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanModules(rows)
}

func (s *sqliteModuleStore) All(ctx context.Context) ([]graph.Module, error) {
	rows, err := s.db.QueryContext(ctx, moduleSelectColumns+" FROM modules")
	if err != nil {
		return nil, cmerrors.Wrap(cmerrors.ErrStorageRead, cmerrors.KindStorageError, err)
	}
	defer rows.Close()
	return scanModules(rows)
}

const moduleSelectColumns = `SELECT id, name, path, language, project_type, parent_id`

func scanModule(row rowScanner) (*graph.Module, error) {
	var m graph.Module
	var projectType, parentID sql.NullString
	if err := row.Scan(&m.ID, &m.Name, &m.Path, &m.Language, &projectType, &parentID); err != nil {
		return nil, err
	}
	m.ProjectType = projectType.String
	m.ParentID = parentID.String
	return &m, nil
}

func scanModules(rows *sql.Rows) ([]graph.Module, error) {
	var modules []graph.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, *m)
	}
	return modules, rows.Err()
}
