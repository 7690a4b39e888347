package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pantryapp/pantry-server/internal/media/images"
	"github.com/pantryapp/pantry-server/internal/search"
	"github.com/pantryapp/pantry-server/internal/store"
	"github.com/pantryapp/pantry-server/internal/validation"
)

// testEnv wires every service against a temporary store, index, and
// uploads directory.
type testEnv struct {
	store       *store.Store
	storage     *images.Storage
	index       *search.SearchIndex
	search      *SearchService
	recipes     *RecipeService
	tags        *TagService
	ingredients *IngredientService
	categories  *CategoryService
	images      *ImageService
	archives    *ArchiveService
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// setupServiceTest creates the full service graph on temporary storage.
func setupServiceTest(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pantry-service-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	storage, err := images.NewStorage(filepath.Join(tmpDir, "uploads"))
	require.NoError(t, err)

	logger := testLogger()

	index, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "index"),
		Logger:   logger,
	})
	require.NoError(t, err)

	searchSvc := NewSearchService(s, index, logger)
	recipeSvc := NewRecipeService(s, searchSvc, storage, logger)

	env := &testEnv{
		store:       s,
		storage:     storage,
		index:       index,
		search:      searchSvc,
		recipes:     recipeSvc,
		tags:        NewTagService(s, recipeSvc, logger),
		ingredients: NewIngredientService(s, recipeSvc, logger),
		categories:  NewCategoryService(s, logger),
		images:      NewImageService(s, storage, images.JPEGNormalizer{}, 0, logger),
		archives:    NewArchiveService(s, storage, searchSvc, validation.New(), logger),
	}

	cleanup := func() {
		_ = index.Close()
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return env, cleanup
}

// newEnvIngredient creates an ingredient through the service layer.
func newEnvIngredient(t *testing.T, env *testEnv, name string, calorie *float64, categoryID string) string {
	t.Helper()

	ing, err := env.ingredients.Create(context.Background(), CreateIngredientInput{
		Name:       name,
		Unit:       "g",
		Calorie:    calorie,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return ing.ID
}

// testPNGBytes encodes a small solid PNG for upload tests.
func testPNGBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func float64Ptr(v float64) *float64 { return &v }
