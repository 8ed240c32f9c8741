package timeline

import (
	"context"
	"testing"

	"github.com/deatl/backend/internal/domain/shared"
	"github.com/deatl/backend/internal/domain/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCategoryService() (*CategoryService, *fakeCategoryRepo) {
	cats := newFakeCategoryRepo()
	return NewCategoryService(cats, zap.NewNop()), cats
}

func TestCategoryServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit color is kept", func(t *testing.T) {
		svc, _ := newTestCategoryService()
		c, err := svc.Create(ctx, "Meetings", "#123456")
		require.NoError(t, err)
		assert.Equal(t, "#123456", c.Color)
	})

	t.Run("missing color rotates the palette", func(t *testing.T) {
		svc, _ := newTestCategoryService()
		first, err := svc.Create(ctx, "One", "")
		require.NoError(t, err)
		second, err := svc.Create(ctx, "Two", "")
		require.NoError(t, err)
		assert.Equal(t, timeline.PaletteColor(0), first.Color)
		assert.Equal(t, timeline.PaletteColor(1), second.Color)
	})

	t.Run("blank name fails", func(t *testing.T) {
		svc, _ := newTestCategoryService()
		_, err := svc.Create(ctx, "  ", "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestCategoryServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCategoryService()

	c, err := svc.Create(ctx, "Meetings", "#111111")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, c.ID, "Reuniones", "")
	require.NoError(t, err)
	assert.Equal(t, "Reuniones", updated.Name)
	assert.Equal(t, "#111111", updated.Color)

	// No-op update succeeds without changing anything.
	same, err := svc.Update(ctx, c.ID, "Reuniones", "#111111")
	require.NoError(t, err)
	assert.Equal(t, updated.UpdatedAt, same.UpdatedAt)

	_, err = svc.Update(ctx, "missing", "x", "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCategoryServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("refused while referenced", func(t *testing.T) {
		svc, cats := newTestCategoryService()
		c, err := svc.Create(ctx, "Meetings", "")
		require.NoError(t, err)
		cats.references[c.ID] = 3

		err = svc.Delete(ctx, c.ID)
		assert.ErrorIs(t, err, timeline.ErrCategoryInUse)

		// Guard rejected the delete without touching the collection.
		_, err = svc.Get(ctx, c.ID)
		assert.NoError(t, err)
	})

	t.Run("unreferenced category is deleted", func(t *testing.T) {
		svc, _ := newTestCategoryService()
		c, err := svc.Create(ctx, "Temp", "")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, c.ID))
		_, err = svc.Get(ctx, c.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
