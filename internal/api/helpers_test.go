package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json/v2"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/pantryapp/pantry-server/internal/auth"
	"github.com/pantryapp/pantry-server/internal/media/images"
	"github.com/pantryapp/pantry-server/internal/ratelimit"
	"github.com/pantryapp/pantry-server/internal/search"
	"github.com/pantryapp/pantry-server/internal/service"
	"github.com/pantryapp/pantry-server/internal/store"
	"github.com/pantryapp/pantry-server/internal/validation"
)

const (
	testUsername = "admin"
	testPassword = "hunter22"
)

// apiTestServer wraps the API server for handler tests.
type apiTestServer struct {
	*Server
	api   humatest.TestAPI
	store *store.Store
}

// setupAPITest builds a full server on temp storage. All state is
// removed when the test finishes.
func setupAPITest(t *testing.T) *apiTestServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pantry-api-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	storage, err := images.NewStorage(filepath.Join(tmpDir, "uploads"))
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute)
	require.NoError(t, err)
	credentials, err := auth.NewCredentialStore(testUsername, testPassword)
	require.NoError(t, err)
	limiter := ratelimit.New(100, 100)

	searchSvc := service.NewSearchService(st, index, logger)
	recipes := service.NewRecipeService(st, searchSvc, storage, logger)
	services := &Services{
		Auth:        service.NewAuthService(credentials, tokens, limiter, logger),
		Recipes:     recipes,
		Tags:        service.NewTagService(st, recipes, logger),
		Ingredients: service.NewIngredientService(st, recipes, logger),
		Categories:  service.NewCategoryService(st, logger),
		Search:      searchSvc,
		Images:      service.NewImageService(st, storage, images.JPEGNormalizer{}, 0, logger),
		Archives:    service.NewArchiveService(st, storage, searchSvc, validation.New(), logger),
	}

	s := NewServer(services, storage, logger)

	t.Cleanup(func() {
		limiter.Stop()
		_ = index.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return &apiTestServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		store:  st,
	}
}

// login authenticates as the admin and returns a bearer token.
func (ts *apiTestServer) login(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": testUsername,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, "login failed: %s", resp.Body.String())

	var body LoginResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

// createRecipe creates a recipe through the API and returns its ID.
func (ts *apiTestServer) createRecipe(t *testing.T, token, name string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/recipes",
		"Authorization: Bearer "+token,
		map[string]any{"name": name},
	)
	require.Equal(t, http.StatusOK, resp.Code, "create recipe failed: %s", resp.Body.String())

	var body RecipeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.ID
}

// uploadImage pushes a small PNG through the raw multipart endpoint
// and returns the created image.
func (ts *apiTestServer) uploadImage(t *testing.T, token, recipeID string) RecipeImageResponse {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(testPNGBytes(t, 64, 64))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/"+recipeID+"/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, "upload failed: %s", rec.Body.String())

	var img RecipeImageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &img))
	return img
}

// testPNGBytes encodes a small solid PNG for upload tests.
func testPNGBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 160, B: 70, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
