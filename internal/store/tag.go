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

// CreateTag creates a new tag. Names are unique across all tags.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return s.createTagTxn(txn, t)
	})
}

// createTagTxn writes a tag and its indexes inside an existing
// transaction. Used by CreateTag and the archive importer.
func (s *Store) createTagTxn(txn *badger.Txn, t *domain.Tag) error {
	nameKey := join(tagByNamePrefix, t.Name)
	if exists, err := keyExists(txn, nameKey); err != nil {
		return err
	} else if exists {
		return apperrors.Conflictf("tag %q already exists", t.Name)
	}

	if t.CategoryID != "" {
		catKey := join(categoryPrefix, t.CategoryID)
		if exists, err := keyExists(txn, catKey); err != nil {
			return err
		} else if !exists {
			return apperrors.NotFoundf("tag category %s not found", t.CategoryID)
		}
		if err := txn.Set(join(tagsByCategoryPrefix, t.CategoryID, t.ID), []byte{}); err != nil {
			return err
		}
	}

	if err := setJSON(txn, join(tagPrefix, t.ID), t); err != nil {
		return err
	}
	return txn.Set(nameKey, []byte(t.ID))
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	err := s.db.View(func(txn *badger.Txn) error {
		return notFoundAs(getJSON(txn, join(tagPrefix, tagID), &t), apperrors.NotFoundf("tag %s not found", tagID))
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTagByName retrieves a tag by its exact name.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tagID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(join(tagByNamePrefix, name))
		if err != nil {
			return notFoundAs(err, apperrors.NotFoundf("tag %q not found", name))
		}
		return item.Value(func(val []byte) error {
			tagID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetTag(ctx, tagID)
}

// ListTags returns all tags ordered by category then name, matching the
// sidebar grouping clients render.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(tagPrefix)
	var tags []*domain.Tag

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var t domain.Tag
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				continue
			}
			tags = append(tags, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].CategoryID != tags[j].CategoryID {
			return tags[i].CategoryID < tags[j].CategoryID
		}
		return tags[i].Name < tags[j].Name
	})

	return tags, nil
}

// UpdateTag applies non-nil fields of the patch to an existing tag.
func (s *Store) UpdateTag(ctx context.Context, tagID string, name *string, categoryID *string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated domain.Tag
	err := s.db.Update(func(txn *badger.Txn) error {
		var t domain.Tag
		key := join(tagPrefix, tagID)
		if err := notFoundAs(getJSON(txn, key, &t), apperrors.NotFoundf("tag %s not found", tagID)); err != nil {
			return err
		}

		if name != nil && *name != t.Name {
			newNameKey := join(tagByNamePrefix, *name)
			if exists, err := keyExists(txn, newNameKey); err != nil {
				return err
			} else if exists {
				return apperrors.Conflictf("tag %q already exists", *name)
			}
			if err := txn.Delete(join(tagByNamePrefix, t.Name)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(newNameKey, []byte(t.ID)); err != nil {
				return err
			}
			t.Name = *name
		}

		if categoryID != nil && *categoryID != t.CategoryID {
			if t.CategoryID != "" {
				if err := txn.Delete(join(tagsByCategoryPrefix, t.CategoryID, t.ID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
					return err
				}
			}
			if *categoryID != "" {
				if exists, err := keyExists(txn, join(categoryPrefix, *categoryID)); err != nil {
					return err
				} else if !exists {
					return apperrors.NotFoundf("tag category %s not found", *categoryID)
				}
				if err := txn.Set(join(tagsByCategoryPrefix, *categoryID, t.ID), []byte{}); err != nil {
					return err
				}
			}
			t.CategoryID = *categoryID
		}

		t.Touch()
		updated = t
		return setJSON(txn, key, &t)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTag deletes a tag. Fails with a conflict if any recipe still
// references it; the message carries the referencing count.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var t domain.Tag
		key := join(tagPrefix, tagID)
		if err := notFoundAs(getJSON(txn, key, &t), apperrors.NotFoundf("tag %s not found", tagID)); err != nil {
			return err
		}

		refs := countPrefix(txn, join(tagRecipesPrefix, tagID, ""))
		if refs > 0 {
			return apperrors.Conflictf("tag is used by %d recipe(s), cannot delete", refs)
		}

		if err := txn.Delete(join(tagByNamePrefix, t.Name)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if t.CategoryID != "" {
			if err := txn.Delete(join(tagsByCategoryPrefix, t.CategoryID, t.ID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return txn.Delete(key)
	})
}

// CountRecipesForTag returns how many recipes currently carry a tag.
func (s *Store) CountRecipesForTag(ctx context.Context, tagID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		count = countPrefix(txn, join(tagRecipesPrefix, tagID, ""))
		return nil
	})
	return count, err
}

// RecipeIDsForTag returns the ids of recipes carrying a tag. Used to
// reindex affected recipes after a tag rename.
func (s *Store) RecipeIDsForTag(ctx context.Context, tagID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		ids = suffixesForPrefix(txn, join(tagRecipesPrefix, tagID, ""))
		return nil
	})
	return ids, err
}

// findOrCreateTagByNameTxn resolves a tag by exact name, creating one
// without a category if absent. In-transaction half of archive import.
func (s *Store) findOrCreateTagByNameTxn(txn *badger.Txn, name string) (*domain.Tag, error) {
	nameKey := join(tagByNamePrefix, name)
	item, err := txn.Get(nameKey)
	if err == nil {
		var tagID string
		if err := item.Value(func(val []byte) error {
			tagID = string(val)
			return nil
		}); err != nil {
			return nil, err
		}
		var t domain.Tag
		if err := getJSON(txn, join(tagPrefix, tagID), &t); err != nil {
			return nil, err
		}
		return &t, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}

	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	t := &domain.Tag{
		ID:        tagID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.createTagTxn(txn, t); err != nil {
		return nil, err
	}
	return t, nil
}
