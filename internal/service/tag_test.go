package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantryapp/pantry-server/internal/domain"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/store"
)

func TestTagService_CreateAndList(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := env.categories.Create(ctx, domain.CategoryKindTag, "cuisine")
	require.NoError(t, err)

	tag, err := env.tags.Create(ctx, "sichuan", cat.ID)
	require.NoError(t, err)
	_, err = env.tags.Create(ctx, "quick", "")
	require.NoError(t, err)

	views, err := env.tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := make(map[string]TagView)
	for _, v := range views {
		byName[v.Name] = v
	}
	assert.Equal(t, "cuisine", byName["sichuan"].Category)
	assert.Equal(t, "", byName["quick"].Category)
	assert.Equal(t, tag.ID, byName["sichuan"].Tag.ID)
}

func TestTagService_Create_DuplicateName(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	_, err := env.tags.Create(ctx, "spicy", "")
	require.NoError(t, err)

	_, err = env.tags.Create(ctx, "spicy", "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestTagService_List_RecipeCounts(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	tag, err := env.tags.Create(ctx, "soup", "")
	require.NoError(t, err)

	for _, name := range []string{"Borscht", "Pho"} {
		_, err := env.recipes.Create(ctx, CreateRecipeInput{Name: name, TagIDs: []string{tag.ID}})
		require.NoError(t, err)
	}

	views, err := env.tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].RecipeCount)
}

func TestTagService_Delete_InUse(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	tag, err := env.tags.Create(ctx, "dinner", "")
	require.NoError(t, err)
	_, err = env.recipes.Create(ctx, CreateRecipeInput{Name: "Roast", TagIDs: []string{tag.ID}})
	require.NoError(t, err)

	err = env.tags.Delete(ctx, tag.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "1 recipe(s)")
}

func TestTagService_Rename(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	tag, err := env.tags.Create(ctx, "wintr", "")
	require.NoError(t, err)

	newName := "winter"
	renamed, err := env.tags.Update(ctx, tag.ID, &newName, nil)
	require.NoError(t, err)
	assert.Equal(t, "winter", renamed.Name)

	_, err = env.store.GetTagByName(ctx, "wintr")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestIngredientService_List_SubstringFilter(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	newEnvIngredient(t, env, "Tomato", nil, "")
	newEnvIngredient(t, env, "tomatillo", nil, "")
	newEnvIngredient(t, env, "onion", nil, "")

	views, err := env.ingredients.List(ctx, "toma")
	require.NoError(t, err)
	require.Len(t, views, 2)

	views, err = env.ingredients.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestIngredientService_List_ResolvesCategoryName(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := env.categories.Create(ctx, domain.CategoryKindIngredient, "spice")
	require.NoError(t, err)
	newEnvIngredient(t, env, "cumin", nil, cat.ID)

	views, err := env.ingredients.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "spice", views[0].Category)
}

func TestIngredientService_Update_ClearCalorie(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	ingID := newEnvIngredient(t, env, "butter", float64Ptr(717), "")

	var cleared *float64
	updated, err := env.ingredients.Update(ctx, ingID, IngredientUpdate{Calorie: &cleared})
	require.NoError(t, err)
	assert.Nil(t, updated.Calorie)
}

func TestIngredientService_Delete_InUse(t *testing.T) {
	env, cleanup := setupServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	ingID := newEnvIngredient(t, env, "flour", nil, "")
	_, err := env.recipes.Create(ctx, CreateRecipeInput{
		Name:        "Bread",
		Ingredients: []store.LineInput{{IngredientID: ingID, Amount: "500"}},
	})
	require.NoError(t, err)

	err = env.ingredients.Delete(ctx, ingID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}
