package service

import (
	"context"
	"log/slog"

	"github.com/pantryapp/pantry-server/internal/color"
	"github.com/pantryapp/pantry-server/internal/domain"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/store"
)

// CategoryService manages the tag and ingredient category namespaces and
// their palette colors.
type CategoryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store *store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger,
	}
}

// paletteFor returns the palette for a category kind.
func paletteFor(kind domain.CategoryKind) color.Palette {
	if kind == domain.CategoryKindTag {
		return color.TagPalette
	}
	return color.IngredientPalette
}

// Create creates a category, assigning the next palette color for its
// kind.
func (s *CategoryService) Create(ctx context.Context, kind domain.CategoryKind, name string) (*domain.Category, error) {
	if !kind.Valid() {
		return nil, apperrors.Validationf("invalid category kind %q", kind)
	}

	existing, err := s.store.CountCategories(ctx, kind)
	if err != nil {
		return nil, err
	}

	cat := domain.NewCategory(kind, name, paletteFor(kind).Next(existing))
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}

	s.logger.Info("category created", "id", cat.ID, "kind", cat.Kind, "name", cat.Name)
	return cat, nil
}

// Get returns a single category.
func (s *CategoryService) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.store.GetCategory(ctx, categoryID)
}

// List returns categories of one kind in creation order, backfilling
// palette colors for any that predate color assignment. Backfilled
// colors are persisted so they stay stable.
func (s *CategoryService) List(ctx context.Context, kind domain.CategoryKind) ([]*domain.Category, error) {
	if !kind.Valid() {
		return nil, apperrors.Validationf("invalid category kind %q", kind)
	}

	cats, err := s.store.ListCategories(ctx, kind)
	if err != nil {
		return nil, err
	}

	if color.Backfill(paletteFor(kind), cats) {
		if err := s.store.SaveCategories(ctx, cats); err != nil {
			s.logger.Warn("failed to persist backfilled category colors", "kind", kind, "error", err)
		}
	}
	return cats, nil
}

// Update renames a category. Names stay unique within the kind.
func (s *CategoryService) Update(ctx context.Context, categoryID string, name *string) (*domain.Category, error) {
	return s.store.UpdateCategory(ctx, categoryID, name)
}

// Delete removes a category. Fails with a conflict while any tag or
// ingredient still references it.
func (s *CategoryService) Delete(ctx context.Context, categoryID string) error {
	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}
	s.logger.Info("category deleted", "id", categoryID)
	return nil
}
