package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deatl/backend/internal/interfaces/http/dto"
)

func createCategory(t *testing.T, env *testEnv, name, color string) dto.CategoryResponse {
	t.Helper()
	w, resp := env.do(t, http.MethodPost, "/api/v1/categories", map[string]interface{}{
		"name":  name,
		"color": color,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var c dto.CategoryResponse
	decodeData(t, resp, &c)
	return c
}

func TestCategoryHandler_Create(t *testing.T) {
	env := newTestEnv(t)

	t.Run("creates with explicit color", func(t *testing.T) {
		c := createCategory(t, env, "Releases", "#ff0000")
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "Releases", c.Name)
		assert.Equal(t, "#ff0000", c.Color)
	})

	t.Run("assigns a palette color when omitted", func(t *testing.T) {
		c := createCategory(t, env, "Meetings", "")
		assert.NotEmpty(t, c.Color)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		w, resp := env.do(t, http.MethodPost, "/api/v1/categories", map[string]interface{}{
			"color": "#00ff00",
		})
		requireErrorCode(t, w, resp, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})

	t.Run("rejects malformed color", func(t *testing.T) {
		w, resp := env.do(t, http.MethodPost, "/api/v1/categories", map[string]interface{}{
			"name":  "Launches",
			"color": "red",
		})
		requireErrorCode(t, w, resp, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})
}

func TestCategoryHandler_ListAndGet(t *testing.T) {
	env := newTestEnv(t)
	created := createCategory(t, env, "Releases", "#ff0000")
	createCategory(t, env, "Meetings", "#0000ff")

	w, resp := env.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.CategoryResponse
	decodeData(t, resp, &list)
	assert.Len(t, list, 2)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)

	w, resp = env.do(t, http.MethodGet, "/api/v1/categories/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.CategoryResponse
	decodeData(t, resp, &got)
	assert.Equal(t, created.ID, got.ID)

	w, resp = env.do(t, http.MethodGet, "/api/v1/categories/cat-missing", nil)
	requireErrorCode(t, w, resp, http.StatusNotFound, dto.ErrCodeNotFound)
}

func TestCategoryHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	created := createCategory(t, env, "Releases", "#ff0000")

	w, resp := env.do(t, http.MethodPut, "/api/v1/categories/"+created.ID, map[string]interface{}{
		"name":  "Shipped releases",
		"color": "#00ff00",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated dto.CategoryResponse
	decodeData(t, resp, &updated)
	assert.Equal(t, "Shipped releases", updated.Name)
	assert.Equal(t, "#00ff00", updated.Color)
}

func TestCategoryHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	used := createCategory(t, env, "Busy category", "#ff0000")
	idle := createCategory(t, env, "Idle category", "#0000ff")
	env.categories.references[used.ID] = 3

	t.Run("refuses while referenced", func(t *testing.T) {
		w, resp := env.do(t, http.MethodDelete, "/api/v1/categories/"+used.ID, nil)
		requireErrorCode(t, w, resp, http.StatusConflict, dto.ErrCodeCategoryInUse)
	})

	t.Run("deletes unreferenced category", func(t *testing.T) {
		w, _ := env.do(t, http.MethodDelete, "/api/v1/categories/"+idle.ID, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w, resp := env.do(t, http.MethodGet, "/api/v1/categories/"+idle.ID, nil)
		requireErrorCode(t, w, resp, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}
