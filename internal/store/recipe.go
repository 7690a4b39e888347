package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pantryapp/pantry-server/internal/domain"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/id"
)

// LineInput is one ingredient line of a create/update request.
type LineInput struct {
	IngredientID string
	Amount       string
}

// RecipeUpdate is a partial update. Nil means leave unchanged. For
// TagIDs and Ingredients a present-but-empty slice means clear all.
type RecipeUpdate struct {
	Name        *string
	Description *string
	Steps       *string
	Tips        *string
	TagIDs      *[]string
	Ingredients *[]LineInput
}

// CreateRecipe inserts a recipe with its initial tag set and ingredient
// lines in one transaction. Unknown tag ids are silently ignored; an
// unknown ingredient id fails the whole transaction.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe, tagIDs []string, lines []LineInput) (*domain.RecipeAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var agg *domain.RecipeAggregate
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, join(recipePrefix, r.ID), r); err != nil {
			return err
		}
		if err := s.setRecipeTagsTxn(txn, r.ID, tagIDs); err != nil {
			return err
		}
		if err := s.insertLinesTxn(txn, r.ID, lines); err != nil {
			return err
		}

		var err error
		agg, err = s.hydrateRecipeTxn(txn, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// GetRecipe returns the fully hydrated aggregate.
func (s *Store) GetRecipe(ctx context.Context, recipeID string) (*domain.RecipeAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var agg *domain.RecipeAggregate
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		agg, err = s.hydrateRecipeTxn(txn, recipeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// ListRecipes returns all recipes fully hydrated, newest first.
func (s *Store) ListRecipes(ctx context.Context) ([]*domain.RecipeAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var aggs []*domain.RecipeAggregate
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(recipePrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)

		var ids []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			ids = append(ids, key[len(recipePrefix):])
		}
		it.Close()

		for _, recipeID := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			agg, err := s.hydrateRecipeTxn(txn, recipeID)
			if err != nil {
				return err
			}
			aggs = append(aggs, agg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(aggs, func(i, j int) bool {
		if !aggs[i].CreatedAt.Equal(aggs[j].CreatedAt) {
			return aggs[i].CreatedAt.After(aggs[j].CreatedAt)
		}
		return aggs[i].ID > aggs[j].ID
	})

	return aggs, nil
}

// UpdateRecipe applies a partial update. Updating the ingredient list is
// a full replace, no diffing.
func (s *Store) UpdateRecipe(ctx context.Context, recipeID string, patch RecipeUpdate) (*domain.RecipeAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var agg *domain.RecipeAggregate
	err := s.db.Update(func(txn *badger.Txn) error {
		var r domain.Recipe
		key := join(recipePrefix, recipeID)
		if err := notFoundAs(getJSON(txn, key, &r), apperrors.NotFoundf("recipe %s not found", recipeID)); err != nil {
			return err
		}

		if patch.Name != nil {
			r.Name = *patch.Name
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.Steps != nil {
			r.Steps = *patch.Steps
		}
		if patch.Tips != nil {
			r.Tips = *patch.Tips
		}

		if patch.TagIDs != nil {
			if err := s.clearRecipeTagsTxn(txn, recipeID); err != nil {
				return err
			}
			if err := s.setRecipeTagsTxn(txn, recipeID, *patch.TagIDs); err != nil {
				return err
			}
		}

		if patch.Ingredients != nil {
			if err := s.clearLinesTxn(txn, recipeID); err != nil {
				return err
			}
			if err := s.insertLinesTxn(txn, recipeID, *patch.Ingredients); err != nil {
				return err
			}
		}

		r.Touch()
		if err := setJSON(txn, key, &r); err != nil {
			return err
		}

		var err error
		agg, err = s.hydrateRecipeTxn(txn, recipeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// DeleteRecipe removes the recipe, its images, its ingredient lines, and
// its tag join rows. Shared tags and ingredients survive. Returns the
// image paths so the caller can remove the backing files after commit.
func (s *Store) DeleteRecipe(ctx context.Context, recipeID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var imagePaths []string
	err := s.db.Update(func(txn *badger.Txn) error {
		key := join(recipePrefix, recipeID)
		if exists, err := keyExists(txn, key); err != nil {
			return err
		} else if !exists {
			return apperrors.NotFoundf("recipe %s not found", recipeID)
		}

		images, err := s.imagesForRecipeTxn(txn, recipeID)
		if err != nil {
			return err
		}
		for _, img := range images {
			imagePaths = append(imagePaths, img.ImagePath)
		}
		if err := deletePrefix(txn, join(imagePrefix, recipeID, "")); err != nil {
			return err
		}

		if err := s.clearLinesTxn(txn, recipeID); err != nil {
			return err
		}
		if err := s.clearRecipeTagsTxn(txn, recipeID); err != nil {
			return err
		}

		return txn.Delete(key)
	})
	if err != nil {
		return nil, err
	}
	return imagePaths, nil
}

// AddRecipeImage appends an image at the end of the recipe's order
// (max existing sort_order + 1).
func (s *Store) AddRecipeImage(ctx context.Context, recipeID, imagePath, blurHash string) (*domain.RecipeImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var img *domain.RecipeImage
	err := s.db.Update(func(txn *badger.Txn) error {
		recipeKey := join(recipePrefix, recipeID)
		var r domain.Recipe
		if err := notFoundAs(getJSON(txn, recipeKey, &r), apperrors.NotFoundf("recipe %s not found", recipeID)); err != nil {
			return err
		}

		images, err := s.imagesForRecipeTxn(txn, recipeID)
		if err != nil {
			return err
		}
		nextOrder := 0
		for _, existing := range images {
			if existing.SortOrder >= nextOrder {
				nextOrder = existing.SortOrder + 1
			}
		}

		imageID, err := id.Generate(id.PrefixImage)
		if err != nil {
			return err
		}
		img = &domain.RecipeImage{
			ID:        imageID,
			RecipeID:  recipeID,
			ImagePath: imagePath,
			BlurHash:  blurHash,
			SortOrder: nextOrder,
			CreatedAt: time.Now(),
		}
		if err := setJSON(txn, join(imagePrefix, recipeID, img.ID), img); err != nil {
			return err
		}

		r.Touch()
		return setJSON(txn, recipeKey, &r)
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// DeleteRecipeImage removes one image row and returns its path so the
// caller can delete the backing file after commit.
func (s *Store) DeleteRecipeImage(ctx context.Context, recipeID, imageID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var imagePath string
	err := s.db.Update(func(txn *badger.Txn) error {
		var img domain.RecipeImage
		key := join(imagePrefix, recipeID, imageID)
		if err := notFoundAs(getJSON(txn, key, &img), apperrors.NotFoundf("image %s not found", imageID)); err != nil {
			return err
		}
		imagePath = img.ImagePath

		if err := txn.Delete(key); err != nil {
			return err
		}

		recipeKey := join(recipePrefix, recipeID)
		var r domain.Recipe
		if err := getJSON(txn, recipeKey, &r); err != nil {
			return err
		}
		r.Touch()
		return setJSON(txn, recipeKey, &r)
	})
	if err != nil {
		return "", err
	}
	return imagePath, nil
}

// ReorderRecipeImages resequences a recipe's images to the given order.
// Images absent from the list are deleted; ids the recipe doesn't hold
// are ignored and don't consume a slot. Remaining images get dense
// zero-based sort_order. Returns the paths of deleted images.
func (s *Store) ReorderRecipeImages(ctx context.Context, recipeID string, orderedIDs []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var deletedPaths []string
	err := s.db.Update(func(txn *badger.Txn) error {
		recipeKey := join(recipePrefix, recipeID)
		var r domain.Recipe
		if err := notFoundAs(getJSON(txn, recipeKey, &r), apperrors.NotFoundf("recipe %s not found", recipeID)); err != nil {
			return err
		}

		images, err := s.imagesForRecipeTxn(txn, recipeID)
		if err != nil {
			return err
		}
		byID := make(map[string]*domain.RecipeImage, len(images))
		for _, img := range images {
			byID[img.ID] = img
		}

		kept := make(map[string]bool, len(orderedIDs))
		nextOrder := 0
		for _, imageID := range orderedIDs {
			img, ok := byID[imageID]
			if !ok {
				continue
			}
			kept[imageID] = true
			img.SortOrder = nextOrder
			nextOrder++
			if err := setJSON(txn, join(imagePrefix, recipeID, img.ID), img); err != nil {
				return err
			}
		}

		for _, img := range images {
			if kept[img.ID] {
				continue
			}
			deletedPaths = append(deletedPaths, img.ImagePath)
			if err := txn.Delete(join(imagePrefix, recipeID, img.ID)); err != nil {
				return err
			}
		}

		r.Touch()
		return setJSON(txn, recipeKey, &r)
	})
	if err != nil {
		return nil, err
	}
	return deletedPaths, nil
}

// setRecipeTagsTxn writes the recipe-tag join rows for each tag id that
// actually exists. Unknown ids are skipped without error.
func (s *Store) setRecipeTagsTxn(txn *badger.Txn, recipeID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		exists, err := keyExists(txn, join(tagPrefix, tagID))
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if err := txn.Set(join(recipeTagsPrefix, recipeID, tagID), []byte{}); err != nil {
			return err
		}
		if err := txn.Set(join(tagRecipesPrefix, tagID, recipeID), []byte{}); err != nil {
			return err
		}
	}
	return nil
}

// clearRecipeTagsTxn removes all tag join rows for a recipe, both
// directions.
func (s *Store) clearRecipeTagsTxn(txn *badger.Txn, recipeID string) error {
	tagIDs := suffixesForPrefix(txn, join(recipeTagsPrefix, recipeID, ""))
	for _, tagID := range tagIDs {
		if err := txn.Delete(join(recipeTagsPrefix, recipeID, tagID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete(join(tagRecipesPrefix, tagID, recipeID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}

// insertLinesTxn creates one ingredient line row per input. Every
// referenced ingredient must exist or the transaction fails.
func (s *Store) insertLinesTxn(txn *badger.Txn, recipeID string, lines []LineInput) error {
	for _, line := range lines {
		exists, err := keyExists(txn, join(ingredientPrefix, line.IngredientID))
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NotFoundf("ingredient %s not found", line.IngredientID)
		}

		lineID, err := id.Generate(id.PrefixLine)
		if err != nil {
			return err
		}
		ri := &domain.RecipeIngredient{
			ID:           lineID,
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
			CreatedAt:    time.Now(),
		}
		if err := setJSON(txn, join(linePrefix, recipeID, lineID), ri); err != nil {
			return err
		}
		// Value is the recipe id so reindexing after an ingredient
		// rename can find affected recipes without a table scan.
		if err := txn.Set(join(ingredientUsesPrefix, line.IngredientID, lineID), []byte(recipeID)); err != nil {
			return err
		}
	}
	return nil
}

// clearLinesTxn removes all ingredient line rows for a recipe along with
// their usage index entries.
func (s *Store) clearLinesTxn(txn *badger.Txn, recipeID string) error {
	lines, err := s.linesForRecipeTxn(txn, recipeID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := txn.Delete(join(linePrefix, recipeID, line.ID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete(join(ingredientUsesPrefix, line.IngredientID, line.ID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
	}
	return nil
}

// imagesForRecipeTxn loads a recipe's images ordered by sort_order.
func (s *Store) imagesForRecipeTxn(txn *badger.Txn, recipeID string) ([]*domain.RecipeImage, error) {
	var images []*domain.RecipeImage
	ids := suffixesForPrefix(txn, join(imagePrefix, recipeID, ""))
	for _, imageID := range ids {
		var img domain.RecipeImage
		if err := getJSON(txn, join(imagePrefix, recipeID, imageID), &img); err != nil {
			return nil, err
		}
		images = append(images, &img)
	}

	sort.Slice(images, func(i, j int) bool {
		if images[i].SortOrder != images[j].SortOrder {
			return images[i].SortOrder < images[j].SortOrder
		}
		return images[i].ID < images[j].ID
	})
	return images, nil
}

// linesForRecipeTxn loads a recipe's ingredient lines in creation order.
func (s *Store) linesForRecipeTxn(txn *badger.Txn, recipeID string) ([]*domain.RecipeIngredient, error) {
	var lines []*domain.RecipeIngredient
	ids := suffixesForPrefix(txn, join(linePrefix, recipeID, ""))
	for _, lineID := range ids {
		var line domain.RecipeIngredient
		if err := getJSON(txn, join(linePrefix, recipeID, lineID), &line); err != nil {
			return nil, err
		}
		lines = append(lines, &line)
	}

	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].CreatedAt.Equal(lines[j].CreatedAt) {
			return lines[i].CreatedAt.Before(lines[j].CreatedAt)
		}
		return lines[i].ID < lines[j].ID
	})
	return lines, nil
}

// hydrateRecipeTxn assembles the full aggregate: scalars, ordered
// images, hydrated ingredient lines, tags with category names.
func (s *Store) hydrateRecipeTxn(txn *badger.Txn, recipeID string) (*domain.RecipeAggregate, error) {
	var r domain.Recipe
	if err := notFoundAs(getJSON(txn, join(recipePrefix, recipeID), &r), apperrors.NotFoundf("recipe %s not found", recipeID)); err != nil {
		return nil, err
	}

	agg := &domain.RecipeAggregate{Recipe: r}

	images, err := s.imagesForRecipeTxn(txn, recipeID)
	if err != nil {
		return nil, err
	}
	for _, img := range images {
		agg.Images = append(agg.Images, *img)
	}

	categoryNames := make(map[string]string)
	categoryName := func(categoryID string) (string, error) {
		if categoryID == "" {
			return "", nil
		}
		if name, ok := categoryNames[categoryID]; ok {
			return name, nil
		}
		var cat domain.Category
		err := getJSON(txn, join(categoryPrefix, categoryID), &cat)
		if errors.Is(err, badger.ErrKeyNotFound) {
			categoryNames[categoryID] = ""
			return "", nil
		}
		if err != nil {
			return "", err
		}
		categoryNames[categoryID] = cat.Name
		return cat.Name, nil
	}

	lines, err := s.linesForRecipeTxn(txn, recipeID)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		hydrated := domain.IngredientLine{RecipeIngredient: *line}
		var ing domain.Ingredient
		err := getJSON(txn, join(ingredientPrefix, line.IngredientID), &ing)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return nil, err
		}
		if err == nil {
			hydrated.Name = ing.Name
			hydrated.Unit = ing.Unit
			hydrated.Calorie = ing.Calorie
			hydrated.Category, err = categoryName(ing.CategoryID)
			if err != nil {
				return nil, err
			}
		}
		agg.Ingredients = append(agg.Ingredients, hydrated)
	}

	tagIDs := suffixesForPrefix(txn, join(recipeTagsPrefix, recipeID, ""))
	for _, tagID := range tagIDs {
		var t domain.Tag
		err := getJSON(txn, join(tagPrefix, tagID), &t)
		if errors.Is(err, badger.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		hydrated := domain.TagWithCategory{Tag: t}
		hydrated.Category, err = categoryName(t.CategoryID)
		if err != nil {
			return nil, err
		}
		agg.Tags = append(agg.Tags, hydrated)
	}
	sort.Slice(agg.Tags, func(i, j int) bool {
		return agg.Tags[i].Name < agg.Tags[j].Name
	})

	return agg, nil
}
