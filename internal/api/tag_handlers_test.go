package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_CreateAndList(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	resp := ts.api.Post("/api/v1/tags",
		"Authorization: Bearer "+token,
		map[string]any{"name": "weeknight"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var created TagResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "weeknight", created.Name)

	listResp := ts.api.Get("/api/v1/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, listResp.Code)

	var list ListTagsResponse
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &list))
	require.Len(t, list.Tags, 1)
	assert.Equal(t, created.ID, list.Tags[0].ID)
	assert.Equal(t, 0, list.Tags[0].RecipeCount)
}

func TestTags_DuplicateName(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	resp := ts.api.Post("/api/v1/tags",
		"Authorization: Bearer "+token,
		map[string]any{"name": "spicy"},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/tags",
		"Authorization: Bearer "+token,
		map[string]any{"name": "spicy"},
	)
	assert.Equal(t, http.StatusConflict, resp.Code)

	var body APIError
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "CONFLICT", body.Code)
}

func TestTags_UpdateRename(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	resp := ts.api.Post("/api/v1/tags",
		"Authorization: Bearer "+token,
		map[string]any{"name": "qiuck"},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	var created TagResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	resp = ts.api.Patch("/api/v1/tags/"+created.ID,
		"Authorization: Bearer "+token,
		map[string]any{"name": "quick"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated TagResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "quick", updated.Name)
}

func TestTags_DeleteInUse(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	resp := ts.api.Post("/api/v1/tags",
		"Authorization: Bearer "+token,
		map[string]any{"name": "dinner"},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	var tag TagResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tag))

	createResp := ts.api.Post("/api/v1/recipes",
		"Authorization: Bearer "+token,
		map[string]any{"name": "Roast Chicken", "tag_ids": []string{tag.ID}},
	)
	require.Equal(t, http.StatusOK, createResp.Code)

	resp = ts.api.Delete("/api/v1/tags/"+tag.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestIngredients_ListWithFilter(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	for _, name := range []string{"Tomato", "Cherry Tomato", "Basil"} {
		resp := ts.api.Post("/api/v1/ingredients",
			"Authorization: Bearer "+token,
			map[string]any{"name": name, "unit": "g"},
		)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Get("/api/v1/ingredients?q=tomato", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListIngredientsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list.Ingredients, 2)
}

func TestIngredients_ClearCalorie(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	resp := ts.api.Post("/api/v1/ingredients",
		"Authorization: Bearer "+token,
		map[string]any{"name": "Butter", "unit": "g", "calorie": 7.2},
	)
	require.Equal(t, http.StatusOK, resp.Code)
	var ing IngredientResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &ing))
	require.NotNil(t, ing.Calorie)

	resp = ts.api.Patch("/api/v1/ingredients/"+ing.ID,
		"Authorization: Bearer "+token,
		map[string]any{"clear_calorie": true},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated IngredientResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Nil(t, updated.Calorie)
}

func TestCategories_KindScopedListing(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	for _, req := range []map[string]any{
		{"kind": "tag", "name": "Cuisine"},
		{"kind": "tag", "name": "Occasion"},
		{"kind": "ingredient", "name": "Produce"},
	} {
		resp := ts.api.Post("/api/v1/categories", "Authorization: Bearer "+token, req)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Get("/api/v1/categories?kind=tag", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListCategoriesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Categories, 2)
	for _, c := range list.Categories {
		assert.Equal(t, "tag", c.Kind)
		assert.NotEmpty(t, c.Color)
	}
}

func TestCategories_InvalidKind(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	resp := ts.api.Get("/api/v1/categories?kind=flavor", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
