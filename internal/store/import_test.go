package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantryapp/pantry-server/internal/domain"
)

func TestImportRecipe_CreatesEverythingByName(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	agg, err := store.ImportRecipe(ctx, ImportRecipeInput{
		Name:        "Mapo Tofu",
		Description: "Classic Sichuan dish",
		Steps:       "1. Fry the doubanjiang",
		Tags:        []string{"sichuan", "spicy"},
		Ingredients: []ImportLine{
			{Name: "tofu", Amount: "300", Category: "main"},
			{Name: "doubanjiang", Amount: "15", Category: ""},
		},
		ImagePaths: []string{"uploads/a.jpg", "uploads/b.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Mapo Tofu", agg.Name)
	require.Len(t, agg.Tags, 2)
	require.Len(t, agg.Ingredients, 2)
	require.Len(t, agg.Images, 2)

	// Tags were created by name.
	_, err = store.GetTagByName(ctx, "sichuan")
	require.NoError(t, err)
	_, err = store.GetTagByName(ctx, "spicy")
	require.NoError(t, err)

	// New ingredients get the placeholder unit.
	tofu, err := store.GetIngredientByName(ctx, "tofu")
	require.NoError(t, err)
	assert.Equal(t, "serving", tofu.Unit)

	// Category resolved by name for the ingredient that named one,
	// skipped for the blank one.
	cat, err := store.GetCategoryByName(ctx, domain.CategoryKindIngredient, "main")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, tofu.CategoryID)

	doubanjiang, err := store.GetIngredientByName(ctx, "doubanjiang")
	require.NoError(t, err)
	assert.Empty(t, doubanjiang.CategoryID)
}

func TestImportRecipe_ReusesExistingEntities(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	existingTag := newTestTag(t, store, "sichuan", "")
	existingIng := newTestIngredient(t, store, "tofu", floatPtr(76), "")

	agg, err := store.ImportRecipe(ctx, ImportRecipeInput{
		Name:        "Mapo Tofu",
		Tags:        []string{"sichuan"},
		Ingredients: []ImportLine{{Name: "tofu", Amount: "300"}},
	})
	require.NoError(t, err)

	require.Len(t, agg.Tags, 1)
	assert.Equal(t, existingTag.ID, agg.Tags[0].ID)

	require.Len(t, agg.Ingredients, 1)
	assert.Equal(t, existingIng.ID, agg.Ingredients[0].IngredientID)
	// The existing ingredient keeps its own unit and calorie.
	assert.Equal(t, "g", agg.Ingredients[0].Unit)
	require.NotNil(t, agg.Ingredients[0].Calorie)
	assert.Equal(t, 76.0, *agg.Ingredients[0].Calorie)
}

func TestImportRecipe_ImageSortOrderFollowsManifest(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	agg, err := store.ImportRecipe(context.Background(), ImportRecipeInput{
		Name:       "Fried Rice",
		ImagePaths: []string{"uploads/z.jpg", "uploads/a.jpg", "uploads/m.jpg"},
	})
	require.NoError(t, err)

	require.Len(t, agg.Images, 3)
	assert.Equal(t, "uploads/z.jpg", agg.Images[0].ImagePath)
	assert.Equal(t, 0, agg.Images[0].SortOrder)
	assert.Equal(t, "uploads/a.jpg", agg.Images[1].ImagePath)
	assert.Equal(t, 1, agg.Images[1].SortOrder)
	assert.Equal(t, "uploads/m.jpg", agg.Images[2].ImagePath)
	assert.Equal(t, 2, agg.Images[2].SortOrder)
}

func TestImportRecipe_SharedIngredientAcrossImports(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := store.ImportRecipe(ctx, ImportRecipeInput{
		Name:        "Fried Egg",
		Ingredients: []ImportLine{{Name: "egg", Amount: "2"}},
	})
	require.NoError(t, err)

	_, err = store.ImportRecipe(ctx, ImportRecipeInput{
		Name:        "Egg Fried Rice",
		Ingredients: []ImportLine{{Name: "egg", Amount: "3"}},
	})
	require.NoError(t, err)

	ing, err := store.GetIngredientByName(ctx, "egg")
	require.NoError(t, err)
	err = store.DeleteIngredient(ctx, ing.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 recipe(s)")
}
