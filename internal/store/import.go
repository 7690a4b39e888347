package store

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pantryapp/pantry-server/internal/domain"
	"github.com/pantryapp/pantry-server/internal/id"
)

// ImportLine is one ingredient line from an archive manifest. Category
// is the ingredient's category name in the source system, "" when
// uncategorized.
type ImportLine struct {
	Name     string
	Amount   string
	Category string
}

// ImportRecipeInput is a recipe reconstructed from an archive: scalars,
// tag names, ingredient lines, and the stored paths of already-extracted
// image files in manifest order.
type ImportRecipeInput struct {
	Name        string
	Description string
	Steps       string
	Tips        string
	Tags        []string
	Ingredients []ImportLine
	ImagePaths  []string
}

// ImportRecipe creates a recipe from archive data in one transaction:
// tags and ingredients are resolved or created by exact name, categories
// are resolved or created by name for new ingredients, and image rows
// get sequential zero-based sort_order in the given order. Any error
// rolls back every row.
//
// The caller extracts image files to disk before calling this and is
// responsible for removing them again if the transaction fails.
func (s *Store) ImportRecipe(ctx context.Context, input ImportRecipeInput) (*domain.RecipeAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var agg *domain.RecipeAggregate
	err := s.db.Update(func(txn *badger.Txn) error {
		recipeID, err := id.Generate(id.PrefixRecipe)
		if err != nil {
			return err
		}
		now := time.Now()
		r := &domain.Recipe{
			ID:          recipeID,
			Name:        input.Name,
			Description: input.Description,
			Steps:       input.Steps,
			Tips:        input.Tips,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := setJSON(txn, join(recipePrefix, recipeID), r); err != nil {
			return err
		}

		for _, tagName := range input.Tags {
			t, err := s.findOrCreateTagByNameTxn(txn, tagName)
			if err != nil {
				return err
			}
			if err := txn.Set(join(recipeTagsPrefix, recipeID, t.ID), []byte{}); err != nil {
				return err
			}
			if err := txn.Set(join(tagRecipesPrefix, t.ID, recipeID), []byte{}); err != nil {
				return err
			}
		}

		for _, line := range input.Ingredients {
			ing, err := s.findOrCreateIngredientByNameTxn(txn, line.Name, line.Category)
			if err != nil {
				return err
			}

			lineID, err := id.Generate(id.PrefixLine)
			if err != nil {
				return err
			}
			ri := &domain.RecipeIngredient{
				ID:           lineID,
				RecipeID:     recipeID,
				IngredientID: ing.ID,
				Amount:       line.Amount,
				CreatedAt:    time.Now(),
			}
			if err := setJSON(txn, join(linePrefix, recipeID, lineID), ri); err != nil {
				return err
			}
			if err := txn.Set(join(ingredientUsesPrefix, ing.ID, lineID), []byte(recipeID)); err != nil {
				return err
			}
		}

		for sortOrder, imagePath := range input.ImagePaths {
			imageID, err := id.Generate(id.PrefixImage)
			if err != nil {
				return err
			}
			img := &domain.RecipeImage{
				ID:        imageID,
				RecipeID:  recipeID,
				ImagePath: imagePath,
				SortOrder: sortOrder,
				CreatedAt: time.Now(),
			}
			if err := setJSON(txn, join(imagePrefix, recipeID, imageID), img); err != nil {
				return err
			}
		}

		agg, err = s.hydrateRecipeTxn(txn, recipeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}
