package api

import (
	"archive/zip"
	"bytes"
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadImage_AndServe(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)
	recipeID := ts.createRecipe(t, token, "Ratatouille")

	img := ts.uploadImage(t, token, recipeID)
	assert.Equal(t, 0, img.SortOrder)
	assert.NotEmpty(t, img.BlurHash)

	// The stored path doubles as the public URL.
	req := httptest.NewRequest(http.MethodGet, "/"+img.ImagePath, nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotZero(t, rec.Body.Len())
}

func TestUploadImage_RequiresAuth(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)
	recipeID := ts.createRecipe(t, token, "Unauthorized Target")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/"+recipeID+"/images", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServeUpload_UnknownFile(t *testing.T) {
	ts := setupAPITest(t)

	req := httptest.NewRequest(http.MethodGet, "/uploads/no-such-file.jpg", nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReorderImages_DropsOmitted(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)
	recipeID := ts.createRecipe(t, token, "Lasagna")

	first := ts.uploadImage(t, token, recipeID)
	second := ts.uploadImage(t, token, recipeID)

	resp := ts.api.Put("/api/v1/recipes/"+recipeID+"/images/order",
		"Authorization: Bearer "+token,
		map[string]any{"image_ids": []string{second.ID}},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body ImagesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Images, 1)
	assert.Equal(t, second.ID, body.Images[0].ID)
	assert.Equal(t, 0, body.Images[0].SortOrder)
	assert.False(t, ts.storage.Exists(first.ImagePath))
}

func TestDeleteImage(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)
	recipeID := ts.createRecipe(t, token, "Paella")
	img := ts.uploadImage(t, token, recipeID)

	resp := ts.api.Delete("/api/v1/recipes/"+recipeID+"/images/"+img.ID,
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	getResp := ts.api.Get("/api/v1/recipes/"+recipeID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, getResp.Code)
	var recipe RecipeResponse
	require.NoError(t, json.Unmarshal(getResp.Body.Bytes(), &recipe))
	assert.Empty(t, recipe.Images)
}

func TestExportImport_RoundTrip(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)
	recipeID := ts.createRecipe(t, token, "Borscht")
	ts.uploadImage(t, token, recipeID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes/"+recipeID+"/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	archive := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "recipe.json")

	// Delete the original, then import the archive back.
	delResp := ts.api.Delete("/api/v1/recipes/"+recipeID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, delResp.Code)

	importReq := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/import", bytes.NewReader(archive))
	importReq.Header.Set("Authorization", "Bearer "+token)
	importRec := httptest.NewRecorder()
	ts.ServeHTTP(importRec, importReq)
	require.Equal(t, http.StatusCreated, importRec.Code, importRec.Body.String())

	var result struct {
		ImportedIDs []string `json:"imported_ids"`
		Count       int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(importRec.Body.Bytes(), &result))
	require.Equal(t, 1, result.Count)
	require.Len(t, result.ImportedIDs, 1)

	getResp := ts.api.Get("/api/v1/recipes/"+result.ImportedIDs[0], "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, getResp.Code)
	var imported RecipeResponse
	require.NoError(t, json.Unmarshal(getResp.Body.Bytes(), &imported))
	assert.Equal(t, "Borscht", imported.Name)
	assert.Len(t, imported.Images, 1)
}

func TestImportArchive_NotAZip(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/import", bytes.NewReader([]byte("plain text")))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportBatch_ZipOfZips(t *testing.T) {
	ts := setupAPITest(t)
	token := ts.login(t)
	first := ts.createRecipe(t, token, "Gnocchi")
	second := ts.createRecipe(t, token, "Polenta")

	payload, err := json.Marshal(map[string]any{"recipe_ids": []string{first, second}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/export", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"Gnocchi.zip", "Polenta.zip"}, names)
}
