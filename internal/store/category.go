package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pantryapp/pantry-server/internal/domain"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/id"
)

// categoryRefPrefix returns the reverse-reference prefix for a category's
// kind: tags reference tag categories, ingredients reference ingredient
// categories.
func categoryRefPrefix(kind domain.CategoryKind, categoryID string) []byte {
	if kind == domain.CategoryKindTag {
		return join(tagsByCategoryPrefix, categoryID, "")
	}
	return join(ingredientsByCategoryPrefix, categoryID, "")
}

// CreateCategory creates a new category. Names are unique per kind.
func (s *Store) CreateCategory(ctx context.Context, cat *domain.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !cat.Kind.Valid() {
		return apperrors.Validationf("unknown category kind %q", cat.Kind)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return s.createCategoryTxn(txn, cat)
	})
}

func (s *Store) createCategoryTxn(txn *badger.Txn, cat *domain.Category) error {
	nameKey := join(categoryByNamePrefix, string(cat.Kind), cat.Name)
	if exists, err := keyExists(txn, nameKey); err != nil {
		return err
	} else if exists {
		return apperrors.Conflictf("%s category %q already exists", cat.Kind, cat.Name)
	}

	if err := setJSON(txn, join(categoryPrefix, cat.ID), cat); err != nil {
		return err
	}
	return txn.Set(nameKey, []byte(cat.ID))
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cat domain.Category
	err := s.db.View(func(txn *badger.Txn) error {
		return notFoundAs(getJSON(txn, join(categoryPrefix, categoryID), &cat),
			apperrors.NotFoundf("category %s not found", categoryID))
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetCategoryByName retrieves a category by kind and exact name.
func (s *Store) GetCategoryByName(ctx context.Context, kind domain.CategoryKind, name string) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var categoryID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(join(categoryByNamePrefix, string(kind), name))
		if err != nil {
			return notFoundAs(err, apperrors.NotFoundf("%s category %q not found", kind, name))
		}
		return item.Value(func(val []byte) error {
			categoryID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, categoryID)
}

// ListCategories returns one kind's categories in creation order. This
// listing order is what the color backfill keys off, so it must be
// stable across calls.
func (s *Store) ListCategories(ctx context.Context, kind domain.CategoryKind) ([]*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(categoryPrefix)
	var cats []*domain.Category

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var cat domain.Category
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &cat)
			})
			if err != nil {
				continue
			}
			if cat.Kind != kind {
				continue
			}
			cats = append(cats, &cat)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(cats, func(i, j int) bool {
		if !cats[i].CreatedAt.Equal(cats[j].CreatedAt) {
			return cats[i].CreatedAt.Before(cats[j].CreatedAt)
		}
		return cats[i].ID < cats[j].ID
	})

	return cats, nil
}

// CountCategories returns how many categories of a kind exist. Feeds the
// palette allocator for new categories.
func (s *Store) CountCategories(ctx context.Context, kind domain.CategoryKind) (int, error) {
	cats, err := s.ListCategories(ctx, kind)
	if err != nil {
		return 0, err
	}
	return len(cats), nil
}

// SaveCategories persists categories whose color was backfilled.
func (s *Store) SaveCategories(ctx context.Context, cats []*domain.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, cat := range cats {
			if err := setJSON(txn, join(categoryPrefix, cat.ID), cat); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateCategory renames a category, keeping the per-kind name index in
// step. Kind and color never change through this path.
func (s *Store) UpdateCategory(ctx context.Context, categoryID string, name *string) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated domain.Category
	err := s.db.Update(func(txn *badger.Txn) error {
		var cat domain.Category
		key := join(categoryPrefix, categoryID)
		if err := notFoundAs(getJSON(txn, key, &cat), apperrors.NotFoundf("category %s not found", categoryID)); err != nil {
			return err
		}

		if name != nil && *name != cat.Name {
			newNameKey := join(categoryByNamePrefix, string(cat.Kind), *name)
			if exists, err := keyExists(txn, newNameKey); err != nil {
				return err
			} else if exists {
				return apperrors.Conflictf("%s category %q already exists", cat.Kind, *name)
			}
			if err := txn.Delete(join(categoryByNamePrefix, string(cat.Kind), cat.Name)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(newNameKey, []byte(cat.ID)); err != nil {
				return err
			}
			cat.Name = *name
		}

		cat.Touch()
		updated = cat
		return setJSON(txn, key, &cat)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory deletes a category. Fails with a conflict if any tag or
// ingredient still references it.
func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var cat domain.Category
		key := join(categoryPrefix, categoryID)
		if err := notFoundAs(getJSON(txn, key, &cat), apperrors.NotFoundf("category %s not found", categoryID)); err != nil {
			return err
		}

		refs := countPrefix(txn, categoryRefPrefix(cat.Kind, categoryID))
		if refs > 0 {
			noun := "ingredient"
			if cat.Kind == domain.CategoryKindTag {
				noun = "tag"
			}
			return apperrors.Conflictf("category is used by %d %s(s), cannot delete", refs, noun)
		}

		if err := txn.Delete(join(categoryByNamePrefix, string(cat.Kind), cat.Name)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Delete(key)
	})
}

// CountReferencing returns how many tags or ingredients reference a
// category.
func (s *Store) CountReferencing(ctx context.Context, categoryID string) (int, error) {
	cat, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return 0, err
	}

	count := 0
	err = s.db.View(func(txn *badger.Txn) error {
		count = countPrefix(txn, categoryRefPrefix(cat.Kind, categoryID))
		return nil
	})
	return count, err
}

// findOrCreateCategoryTxn resolves a category by kind and exact name,
// creating an uncolored one if absent. Colors come later via backfill.
func (s *Store) findOrCreateCategoryTxn(txn *badger.Txn, kind domain.CategoryKind, name string) (*domain.Category, error) {
	nameKey := join(categoryByNamePrefix, string(kind), name)
	item, err := txn.Get(nameKey)
	if err == nil {
		var categoryID string
		if err := item.Value(func(val []byte) error {
			categoryID = string(val)
			return nil
		}); err != nil {
			return nil, err
		}
		var cat domain.Category
		if err := getJSON(txn, join(categoryPrefix, categoryID), &cat); err != nil {
			return nil, err
		}
		return &cat, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}

	categoryID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	cat := &domain.Category{
		ID:        categoryID,
		Kind:      kind,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.createCategoryTxn(txn, cat); err != nil {
		return nil, err
	}
	return cat, nil
}
