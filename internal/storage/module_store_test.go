package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codemate/internal/cmerrors"
	"github.com/mvp-joe/codemate/internal/graph"
)

func TestModuleStore_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	store := &sqliteModuleStore{db: db}

	m := graph.Module{ID: "module:internal/auth", Name: "auth", Path: "internal/auth", Language: "go", ProjectType: "module"}
	require.NoError(t, store.Upsert(ctx, m))

	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, *got)
}

func TestModuleStore_Upsert_OverwritesOnConflict(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	store := &sqliteModuleStore{db: db}

	m := graph.Module{ID: "module:internal/auth", Name: "auth", Path: "internal/auth", Language: "go", ProjectType: "module"}
	require.NoError(t, store.Upsert(ctx, m))

	m.Name = "auth-v2"
	require.NoError(t, store.Upsert(ctx, m))

	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "auth-v2", got.Name)
}

func TestModuleStore_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	store := &sqliteModuleStore{db: db}

	_, err := store.Get(ctx, "module:does/not/exist")
	require.Error(t, err)
	assert.Equal(t, cmerrors.ErrModuleNotFound, cmerrors.CodeOf(err))
}

func TestModuleStore_ChildrenAndAll(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	store := &sqliteModuleStore{db: db}

	parent := graph.Module{ID: "module:root", Name: "root", Path: ".", Language: "go", ProjectType: "module"}
	childA := graph.Module{ID: "module:root/a", Name: "a", Path: "a", Language: "go", ProjectType: "module", ParentID: parent.ID}
	childB := graph.Module{ID: "module:root/b", Name: "b", Path: "b", Language: "go", ProjectType: "module", ParentID: parent.ID}

	require.NoError(t, store.Upsert(ctx, parent))
	require.NoError(t, store.Upsert(ctx, childA))
	require.NoError(t, store.Upsert(ctx, childB))

	children, err := store.Children(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, children, 2)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
