// Package service contains the application services that orchestrate
// the store, the search index, and file storage.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pantryapp/pantry-server/internal/domain"
	"github.com/pantryapp/pantry-server/internal/media/images"
	"github.com/pantryapp/pantry-server/internal/store"
)

// shareDescriptionLimit caps the description length in share text.
const shareDescriptionLimit = 200

// RecipeService orchestrates recipe CRUD, cascading file cleanup, and
// search index synchronization.
type RecipeService struct {
	store   *store.Store
	search  *SearchService
	storage *images.Storage
	logger  *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(store *store.Store, search *SearchService, storage *images.Storage, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:   store,
		search:  search,
		storage: storage,
		logger:  logger,
	}
}

// CreateRecipeInput carries a create request.
type CreateRecipeInput struct {
	Name        string
	Description string
	Steps       string
	Tips        string
	TagIDs      []string
	Ingredients []store.LineInput
}

// RecipeSummary is the list projection of a recipe: enough to render a
// card without the full aggregate.
type RecipeSummary struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	Description   string                   `json:"description,omitempty"`
	CoverImage    *domain.RecipeImage      `json:"cover_image,omitempty"`
	TotalCalories int                      `json:"total_calories"`
	Tags          []domain.TagWithCategory `json:"tags,omitempty"`
}

// ShareInfo is the public share projection of a recipe.
type ShareInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ShareText   string   `json:"share_text"`
}

// Create stores a new recipe and indexes it for search.
func (s *RecipeService) Create(ctx context.Context, input CreateRecipeInput) (*domain.RecipeAggregate, error) {
	r := domain.NewRecipe(input.Name, input.Description, input.Steps, input.Tips)

	agg, err := s.store.CreateRecipe(ctx, r, input.TagIDs, input.Ingredients)
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe created", "id", agg.ID, "name", agg.Name)
	s.syncSearch(agg)
	return agg, nil
}

// Get returns a fully hydrated recipe.
func (s *RecipeService) Get(ctx context.Context, recipeID string) (*domain.RecipeAggregate, error) {
	return s.store.GetRecipe(ctx, recipeID)
}

// List returns summaries of all recipes, newest first.
func (s *RecipeService) List(ctx context.Context) ([]RecipeSummary, error) {
	aggs, err := s.store.ListRecipes(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]RecipeSummary, 0, len(aggs))
	for _, agg := range aggs {
		summaries = append(summaries, summarize(agg))
	}
	return summaries, nil
}

// Update applies a partial update and reindexes the recipe.
func (s *RecipeService) Update(ctx context.Context, recipeID string, patch store.RecipeUpdate) (*domain.RecipeAggregate, error) {
	agg, err := s.store.UpdateRecipe(ctx, recipeID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe updated", "id", agg.ID)
	s.syncSearch(agg)
	return agg, nil
}

// Delete removes a recipe, its image files, and its search document.
// Tags and ingredients the recipe referenced survive.
func (s *RecipeService) Delete(ctx context.Context, recipeID string) error {
	imagePaths, err := s.store.DeleteRecipe(ctx, recipeID)
	if err != nil {
		return err
	}

	for _, path := range imagePaths {
		if err := s.storage.Delete(path); err != nil {
			s.logger.Warn("failed to delete image file", "recipe_id", recipeID, "path", path, "error", err)
		}
	}

	s.logger.Info("recipe deleted", "id", recipeID, "images_removed", len(imagePaths))
	s.removeFromSearch(recipeID)
	return nil
}

// Share returns the public share projection: name, description
// truncated to a phone-screen length, and tag names.
func (s *RecipeService) Share(ctx context.Context, recipeID string) (*ShareInfo, error) {
	agg, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	desc := truncateRunes(agg.Description, shareDescriptionLimit)
	tags := agg.TagNames()

	var b strings.Builder
	b.WriteString(agg.Name)
	if desc != "" {
		b.WriteString("\n")
		b.WriteString(desc)
	}
	if len(tags) > 0 {
		b.WriteString("\n")
		b.WriteString("#" + strings.Join(tags, " #"))
	}

	return &ShareInfo{
		Name:        agg.Name,
		Description: desc,
		Tags:        tags,
		ShareText:   b.String(),
	}, nil
}

// ReindexRecipes re-projects and indexes the given recipes. Missing
// recipes are skipped; used after tag or ingredient renames.
func (s *RecipeService) ReindexRecipes(ctx context.Context, recipeIDs []string) {
	if s.search == nil {
		return
	}
	for _, recipeID := range recipeIDs {
		agg, err := s.store.GetRecipe(ctx, recipeID)
		if err != nil {
			s.logger.Warn("failed to load recipe for reindex", "id", recipeID, "error", err)
			continue
		}
		if err := s.search.IndexRecipe(agg); err != nil {
			s.logger.Warn("failed to reindex recipe", "id", recipeID, "error", err)
		}
	}
}

// syncSearch indexes a recipe in a detached goroutine. Search is a
// derived view; a failed sync is logged, never surfaced, and repaired
// by the next reindex.
func (s *RecipeService) syncSearch(agg *domain.RecipeAggregate) {
	if s.search == nil {
		return
	}
	go func() {
		if err := s.search.IndexRecipe(agg); err != nil {
			s.logger.Warn("failed to index recipe", "id", agg.ID, "error", err)
		}
	}()
}

// removeFromSearch deletes a recipe's search document, best effort.
func (s *RecipeService) removeFromSearch(recipeID string) {
	if s.search == nil {
		return
	}
	go func() {
		if err := s.search.RemoveRecipe(recipeID); err != nil {
			s.logger.Warn("failed to remove recipe from index", "id", recipeID, "error", err)
		}
	}()
}

// summarize projects an aggregate to its list form. The cover is the
// first image by sort order.
func summarize(agg *domain.RecipeAggregate) RecipeSummary {
	summary := RecipeSummary{
		ID:            agg.ID,
		Name:          agg.Name,
		Description:   agg.Description,
		TotalCalories: agg.TotalCalories(),
		Tags:          agg.Tags,
	}
	if len(agg.Images) > 0 {
		cover := agg.Images[0]
		summary.CoverImage = &cover
	}
	return summary
}

// truncateRunes shortens s to at most limit runes, appending an
// ellipsis when something was cut.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
