package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *apiTestServer) reindex(t *testing.T, token string) int {
	t.Helper()

	resp := ts.api.Post("/api/v1/search/reindex", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body ReindexResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.Indexed
}

func TestSearch_ByName(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)
	ts.createRecipe(t, token, "Mushroom Risotto")
	ts.createRecipe(t, token, "Apple Crumble")

	// Rebuild synchronously so the test never races the create-time
	// index sync.
	indexed := ts.reindex(t, token)
	require.Equal(t, 2, indexed)

	resp := ts.api.Get("/api/v1/search?q=risotto", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var body SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Hits, 1)
	assert.Equal(t, "Mushroom Risotto", body.Hits[0].Name)
	assert.EqualValues(t, 1, body.Total)
}

func TestSearch_TagFilter(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	tagResp := ts.api.Post("/api/v1/tags",
		"Authorization: Bearer "+token,
		map[string]any{"name": "dessert"},
	)
	require.Equal(t, http.StatusOK, tagResp.Code)
	var tag TagResponse
	require.NoError(t, json.Unmarshal(tagResp.Body.Bytes(), &tag))

	createResp := ts.api.Post("/api/v1/recipes",
		"Authorization: Bearer "+token,
		map[string]any{"name": "Tiramisu", "tag_ids": []string{tag.ID}},
	)
	require.Equal(t, http.StatusOK, createResp.Code)
	ts.createRecipe(t, token, "Carbonara")

	ts.reindex(t, token)

	resp := ts.api.Get("/api/v1/search?tag=dessert", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var body SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Hits, 1)
	assert.Equal(t, "Tiramisu", body.Hits[0].Name)
}

func TestSynonyms_RoundTripAndQuery(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)
	ts.createRecipe(t, token, "Aubergine Parmigiana")
	ts.reindex(t, token)

	putResp := ts.api.Put("/api/v1/search/synonyms",
		"Authorization: Bearer "+token,
		map[string]any{"groups": map[string][]string{
			"eggplant": {"eggplant", "aubergine"},
		}},
	)
	require.Equal(t, http.StatusOK, putResp.Code, putResp.Body.String())

	getResp := ts.api.Get("/api/v1/search/synonyms", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, getResp.Code)

	var stored SynonymsResponse
	require.NoError(t, json.Unmarshal(getResp.Body.Bytes(), &stored))
	assert.ElementsMatch(t, []string{"eggplant", "aubergine"}, stored.Groups["eggplant"])

	resp := ts.api.Get("/api/v1/search?q=eggplant", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var body SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Hits, 1)
	assert.Equal(t, "Aubergine Parmigiana", body.Hits[0].Name)
}

func TestHealthCheck(t *testing.T) {
	ts := setupAPITest(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
	assert.Equal(t, "healthy", body.Components["search"].Status)
}
