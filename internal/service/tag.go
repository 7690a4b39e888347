package service

import (
	"context"
	"log/slog"

	"github.com/pantryapp/pantry-server/internal/domain"
	"github.com/pantryapp/pantry-server/internal/store"
)

// TagService manages the shared tag vocabulary. Renames ripple into the
// search index through the recipes that carry the tag.
type TagService struct {
	store   *store.Store
	recipes *RecipeService
	logger  *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, recipes *RecipeService, logger *slog.Logger) *TagService {
	return &TagService{
		store:   store,
		recipes: recipes,
		logger:  logger,
	}
}

// TagView is a tag hydrated for listing: resolved category name and how
// many recipes carry it.
type TagView struct {
	domain.Tag
	Category    string `json:"category"`
	RecipeCount int    `json:"recipe_count"`
}

// Create creates a tag. An empty categoryID leaves it uncategorized.
func (s *TagService) Create(ctx context.Context, name, categoryID string) (*domain.Tag, error) {
	t := domain.NewTag(name, categoryID)
	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "id", t.ID, "name", t.Name)
	return t, nil
}

// Get returns a single tag.
func (s *TagService) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	return s.store.GetTag(ctx, tagID)
}

// List returns all tags ordered by category then name, hydrated with
// category names and recipe counts.
func (s *TagService) List(ctx context.Context) ([]TagView, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	names, err := s.categoryNames(ctx, domain.CategoryKindTag)
	if err != nil {
		return nil, err
	}

	views := make([]TagView, 0, len(tags))
	for _, t := range tags {
		count, err := s.store.CountRecipesForTag(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, TagView{
			Tag:         *t,
			Category:    names[t.CategoryID],
			RecipeCount: count,
		})
	}
	return views, nil
}

// Update applies a partial update. A rename reindexes every recipe that
// carries the tag so search reflects the new name.
func (s *TagService) Update(ctx context.Context, tagID string, name, categoryID *string) (*domain.Tag, error) {
	var affected []string
	if name != nil {
		ids, err := s.store.RecipeIDsForTag(ctx, tagID)
		if err != nil {
			return nil, err
		}
		affected = ids
	}

	t, err := s.store.UpdateTag(ctx, tagID, name, categoryID)
	if err != nil {
		return nil, err
	}

	if len(affected) > 0 {
		s.logger.Info("tag renamed, reindexing recipes", "id", tagID, "recipes", len(affected))
		go s.recipes.ReindexRecipes(context.WithoutCancel(ctx), affected)
	}
	return t, nil
}

// Delete removes a tag. Fails with a conflict while any recipe still
// carries it.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return err
	}
	s.logger.Info("tag deleted", "id", tagID)
	return nil
}

// categoryNames returns an id → name map for one category kind.
func (s *TagService) categoryNames(ctx context.Context, kind domain.CategoryKind) (map[string]string, error) {
	cats, err := s.store.ListCategories(ctx, kind)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}
