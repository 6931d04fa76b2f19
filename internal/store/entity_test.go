package store_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/readleafapp/readleaf-server/internal/errors"
	"github.com/readleafapp/readleaf-server/internal/store"
)

type TestEntity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "entity-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func TestEntity_Put_Get(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	testData := &TestEntity{
		ID:    "1",
		Name:  "Dream of the Red Chamber",
		Group: "classics",
	}

	err := entity.Put(context.Background(), "1", testData)
	require.NoError(t, err)

	retrieved, err := entity.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, testData.ID, retrieved.ID)
	require.Equal(t, testData.Name, retrieved.Name)
}

func TestEntity_Put_Overwrites(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	require.NoError(t, entity.Put(context.Background(), "1", &TestEntity{ID: "1", Name: "first"}))
	require.NoError(t, entity.Put(context.Background(), "1", &TestEntity{ID: "1", Name: "second"}))

	retrieved, err := entity.Get(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, "second", retrieved.Name)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	_, err := entity.Get(context.Background(), "nope")
	require.Error(t, err)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEntity_Delete_Idempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	require.NoError(t, entity.Put(context.Background(), "1", &TestEntity{ID: "1", Name: "gone soon"}))
	require.NoError(t, entity.Delete(context.Background(), "1"))

	_, err := entity.Get(context.Background(), "1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	// Deleting a missing entity succeeds silently.
	require.NoError(t, entity.Delete(context.Background(), "1"))
	require.NoError(t, entity.Delete(context.Background(), "never-existed"))
}

func TestEntity_All(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:")

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("%d", i)
		require.NoError(t, entity.Put(context.Background(), id, &TestEntity{ID: id, Name: "entry"}))
	}

	all, err := entity.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func TestEntity_ListByIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndex("group", func(e *TestEntity) string { return e.Group })

	require.NoError(t, entity.Put(context.Background(), "1", &TestEntity{ID: "1", Group: "a"}))
	require.NoError(t, entity.Put(context.Background(), "2", &TestEntity{ID: "2", Group: "a"}))
	require.NoError(t, entity.Put(context.Background(), "3", &TestEntity{ID: "3", Group: "b"}))

	groupA, err := entity.ListByIndex(context.Background(), "group", "a")
	require.NoError(t, err)
	require.Len(t, groupA, 2)

	groupB, err := entity.ListByIndex(context.Background(), "group", "b")
	require.NoError(t, err)
	require.Len(t, groupB, 1)
	require.Equal(t, "3", groupB[0].ID)
}

func TestEntity_ListByIndex_UpdatedValue(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndex("group", func(e *TestEntity) string { return e.Group })

	require.NoError(t, entity.Put(context.Background(), "1", &TestEntity{ID: "1", Group: "a"}))

	// Moving the entity to another group retires the old index entry.
	require.NoError(t, entity.Put(context.Background(), "1", &TestEntity{ID: "1", Group: "b"}))

	groupA, err := entity.ListByIndex(context.Background(), "group", "a")
	require.NoError(t, err)
	require.Empty(t, groupA)

	groupB, err := entity.ListByIndex(context.Background(), "group", "b")
	require.NoError(t, err)
	require.Len(t, groupB, 1)
}

func TestEntity_ListByIndex_DeletedEntity(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndex("group", func(e *TestEntity) string { return e.Group })

	require.NoError(t, entity.Put(context.Background(), "1", &TestEntity{ID: "1", Group: "a"}))
	require.NoError(t, entity.Delete(context.Background(), "1"))

	groupA, err := entity.ListByIndex(context.Background(), "group", "a")
	require.NoError(t, err)
	require.Empty(t, groupA)
}

func TestEntity_List_SkipsIndexKeys(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	entity := store.NewEntity[TestEntity](s, "test:").
		WithIndex("group", func(e *TestEntity) string { return e.Group })

	require.NoError(t, entity.Put(context.Background(), "1", &TestEntity{ID: "1", Group: "a"}))
	require.NoError(t, entity.Put(context.Background(), "2", &TestEntity{ID: "2", Group: "b"}))

	var count int
	for e, err := range entity.List(context.Background()) {
		require.NoError(t, err)
		require.NotNil(t, e)
		count++
	}
	require.Equal(t, 2, count)
}
