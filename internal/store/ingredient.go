package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pantryapp/pantry-server/internal/domain"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/id"
)

// placeholderUnit is the unit given to ingredients created implicitly
// during archive import, where the source manifest carries no unit.
const placeholderUnit = "serving"

// CreateIngredient creates a new ingredient. Names are unique.
func (s *Store) CreateIngredient(ctx context.Context, ing *domain.Ingredient) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return s.createIngredientTxn(txn, ing)
	})
}

func (s *Store) createIngredientTxn(txn *badger.Txn, ing *domain.Ingredient) error {
	nameKey := join(ingredientByNamePrefix, ing.Name)
	if exists, err := keyExists(txn, nameKey); err != nil {
		return err
	} else if exists {
		return apperrors.Conflictf("ingredient %q already exists", ing.Name)
	}

	if ing.CategoryID != "" {
		if exists, err := keyExists(txn, join(categoryPrefix, ing.CategoryID)); err != nil {
			return err
		} else if !exists {
			return apperrors.NotFoundf("ingredient category %s not found", ing.CategoryID)
		}
		if err := txn.Set(join(ingredientsByCategoryPrefix, ing.CategoryID, ing.ID), []byte{}); err != nil {
			return err
		}
	}

	if err := setJSON(txn, join(ingredientPrefix, ing.ID), ing); err != nil {
		return err
	}
	return txn.Set(nameKey, []byte(ing.ID))
}

// GetIngredient retrieves an ingredient by ID.
func (s *Store) GetIngredient(ctx context.Context, ingredientID string) (*domain.Ingredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ing domain.Ingredient
	err := s.db.View(func(txn *badger.Txn) error {
		return notFoundAs(getJSON(txn, join(ingredientPrefix, ingredientID), &ing),
			apperrors.NotFoundf("ingredient %s not found", ingredientID))
	})
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

// GetIngredientByName retrieves an ingredient by its exact name.
func (s *Store) GetIngredientByName(ctx context.Context, name string) (*domain.Ingredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ingredientID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(join(ingredientByNamePrefix, name))
		if err != nil {
			return notFoundAs(err, apperrors.NotFoundf("ingredient %q not found", name))
		}
		return item.Value(func(val []byte) error {
			ingredientID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetIngredient(ctx, ingredientID)
}

// ListIngredients returns ingredients ordered by name. A non-empty query
// filters to names containing it, case-insensitively.
func (s *Store) ListIngredients(ctx context.Context, query string) ([]*domain.Ingredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(ingredientPrefix)
	needle := strings.ToLower(query)
	var ingredients []*domain.Ingredient

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ing domain.Ingredient
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ing)
			})
			if err != nil {
				continue
			}
			if needle != "" && !strings.Contains(strings.ToLower(ing.Name), needle) {
				continue
			}
			ingredients = append(ingredients, &ing)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(ingredients, func(i, j int) bool {
		return ingredients[i].Name < ingredients[j].Name
	})

	return ingredients, nil
}

// UpdateIngredient applies non-nil fields of the patch.
func (s *Store) UpdateIngredient(ctx context.Context, ingredientID string, name, unit *string, calorie **float64, categoryID *string) (*domain.Ingredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated domain.Ingredient
	err := s.db.Update(func(txn *badger.Txn) error {
		var ing domain.Ingredient
		key := join(ingredientPrefix, ingredientID)
		if err := notFoundAs(getJSON(txn, key, &ing), apperrors.NotFoundf("ingredient %s not found", ingredientID)); err != nil {
			return err
		}

		if name != nil && *name != ing.Name {
			newNameKey := join(ingredientByNamePrefix, *name)
			if exists, err := keyExists(txn, newNameKey); err != nil {
				return err
			} else if exists {
				return apperrors.Conflictf("ingredient %q already exists", *name)
			}
			if err := txn.Delete(join(ingredientByNamePrefix, ing.Name)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(newNameKey, []byte(ing.ID)); err != nil {
				return err
			}
			ing.Name = *name
		}

		if unit != nil {
			ing.Unit = *unit
		}
		if calorie != nil {
			ing.Calorie = *calorie
		}

		if categoryID != nil && *categoryID != ing.CategoryID {
			if ing.CategoryID != "" {
				if err := txn.Delete(join(ingredientsByCategoryPrefix, ing.CategoryID, ing.ID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
					return err
				}
			}
			if *categoryID != "" {
				if exists, err := keyExists(txn, join(categoryPrefix, *categoryID)); err != nil {
					return err
				} else if !exists {
					return apperrors.NotFoundf("ingredient category %s not found", *categoryID)
				}
				if err := txn.Set(join(ingredientsByCategoryPrefix, *categoryID, ing.ID), []byte{}); err != nil {
					return err
				}
			}
			ing.CategoryID = *categoryID
		}

		ing.Touch()
		updated = ing
		return setJSON(txn, key, &ing)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteIngredient deletes an ingredient. Fails with a conflict if any
// recipe line still references it.
func (s *Store) DeleteIngredient(ctx context.Context, ingredientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var ing domain.Ingredient
		key := join(ingredientPrefix, ingredientID)
		if err := notFoundAs(getJSON(txn, key, &ing), apperrors.NotFoundf("ingredient %s not found", ingredientID)); err != nil {
			return err
		}

		refs := countPrefix(txn, join(ingredientUsesPrefix, ingredientID, ""))
		if refs > 0 {
			return apperrors.Conflictf("ingredient is used by %d recipe(s), cannot delete", refs)
		}

		if err := txn.Delete(join(ingredientByNamePrefix, ing.Name)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if ing.CategoryID != "" {
			if err := txn.Delete(join(ingredientsByCategoryPrefix, ing.CategoryID, ing.ID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return txn.Delete(key)
	})
}

// RecipeIDsForIngredient returns the distinct ids of recipes whose
// lines reference an ingredient. Used to reindex affected recipes
// after an ingredient rename.
func (s *Store) RecipeIDsForIngredient(ctx context.Context, ingredientID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := join(ingredientUsesPrefix, ingredientID, "")
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				recipeID := string(val)
				if recipeID != "" && !seen[recipeID] {
					seen[recipeID] = true
					ids = append(ids, recipeID)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return ids, err
}

// findOrCreateIngredientByNameTxn resolves an ingredient by exact name,
// creating one with the placeholder unit and an optional find-or-create
// category if absent. In-transaction half of archive import.
func (s *Store) findOrCreateIngredientByNameTxn(txn *badger.Txn, name, categoryName string) (*domain.Ingredient, error) {
	nameKey := join(ingredientByNamePrefix, name)
	item, err := txn.Get(nameKey)
	if err == nil {
		var ingredientID string
		if err := item.Value(func(val []byte) error {
			ingredientID = string(val)
			return nil
		}); err != nil {
			return nil, err
		}
		var ing domain.Ingredient
		if err := getJSON(txn, join(ingredientPrefix, ingredientID), &ing); err != nil {
			return nil, err
		}
		return &ing, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}

	categoryID := ""
	if categoryName != "" {
		cat, err := s.findOrCreateCategoryTxn(txn, domain.CategoryKindIngredient, categoryName)
		if err != nil {
			return nil, err
		}
		categoryID = cat.ID
	}

	ingredientID, err := id.Generate(id.PrefixIngredient)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	ing := &domain.Ingredient{
		ID:         ingredientID,
		Name:       name,
		Unit:       placeholderUnit,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.createIngredientTxn(txn, ing); err != nil {
		return nil, err
	}
	return ing, nil
}
