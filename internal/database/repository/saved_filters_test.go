package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/mybudget/internal/database"
	"github.com/jask/mybudget/internal/database/repository"
)

func openRepo(t *testing.T) *repository.SavedFilterRepo {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewSavedFilterRepo(db)
}

func TestSavedFiltersCRUD(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, repository.SavedFilter{Name: " Spesa marzo ", Anno: 2025, Mese: 3, TagID: 4})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Spesa marzo", saved.Name)
	assert.False(t, saved.CreatedAt.IsZero())

	_, err = repo.Save(ctx, repository.SavedFilter{Name: "casa", ContoID: 2})
	require.NoError(t, err)

	again, err := repo.Save(ctx, repository.SavedFilter{Name: "Spesa marzo", Data: "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID, "same name replaces")
	assert.Equal(t, "2025-03-01", again.Data)
	assert.Zero(t, again.Anno)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "casa", list[0].Name)

	require.NoError(t, repo.Delete(ctx, "casa"))
	assert.ErrorIs(t, repo.Delete(ctx, "casa"), repository.ErrNotFound)
	_, err = repo.ByName(ctx, "casa")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Save(ctx, repository.SavedFilter{Name: "  "})
	assert.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	db, err := database.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = database.Open(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(path))
}
