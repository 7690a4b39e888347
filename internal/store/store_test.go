package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pantryapp/pantry-server/internal/domain"
	"github.com/pantryapp/pantry-server/internal/id"
)

// setupTestStore creates a temporary store for testing
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "pantry-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := New(dbPath, nil)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func newTestTag(t *testing.T, s *Store, name, categoryID string) *domain.Tag {
	t.Helper()

	now := time.Now()
	tag := &domain.Tag{
		ID:         id.MustGenerate(id.PrefixTag),
		Name:       name,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.CreateTag(context.Background(), tag))
	return tag
}

func newTestIngredient(t *testing.T, s *Store, name string, calorie *float64, categoryID string) *domain.Ingredient {
	t.Helper()

	now := time.Now()
	ing := &domain.Ingredient{
		ID:         id.MustGenerate(id.PrefixIngredient),
		Name:       name,
		Unit:       "g",
		Calorie:    calorie,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.CreateIngredient(context.Background(), ing))
	return ing
}

func newTestCategory(t *testing.T, s *Store, kind domain.CategoryKind, name, color string) *domain.Category {
	t.Helper()

	now := time.Now()
	cat := &domain.Category{
		ID:        id.MustGenerate(id.PrefixCategory),
		Kind:      kind,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateCategory(context.Background(), cat))
	return cat
}

func newTestRecipe(t *testing.T, s *Store, name string, tagIDs []string, lines []LineInput) *domain.RecipeAggregate {
	t.Helper()

	now := time.Now()
	r := &domain.Recipe{
		ID:        id.MustGenerate(id.PrefixRecipe),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	agg, err := s.CreateRecipe(context.Background(), r, tagIDs, lines)
	require.NoError(t, err)
	return agg
}

func floatPtr(f float64) *float64 { return &f }
