package service

import (
	"context"
	"log/slog"

	"github.com/pantryapp/pantry-server/internal/domain"
	"github.com/pantryapp/pantry-server/internal/store"
)

// IngredientService manages the shared pantry. Renames ripple into the
// search index through the recipes whose lines reference the ingredient.
type IngredientService struct {
	store   *store.Store
	recipes *RecipeService
	logger  *slog.Logger
}

// NewIngredientService creates a new ingredient service.
func NewIngredientService(store *store.Store, recipes *RecipeService, logger *slog.Logger) *IngredientService {
	return &IngredientService{
		store:   store,
		recipes: recipes,
		logger:  logger,
	}
}

// IngredientView is an ingredient hydrated for listing with its resolved
// category name.
type IngredientView struct {
	domain.Ingredient
	Category string `json:"category"`
}

// CreateIngredientInput carries a create request. Calorie is optional.
type CreateIngredientInput struct {
	Name       string
	Unit       string
	Calorie    *float64
	CategoryID string
}

// IngredientUpdate is a partial update. Nil leaves a field unchanged;
// for Calorie the outer nil means unchanged, an inner nil clears it.
type IngredientUpdate struct {
	Name       *string
	Unit       *string
	Calorie    **float64
	CategoryID *string
}

// Create creates an ingredient.
func (s *IngredientService) Create(ctx context.Context, input CreateIngredientInput) (*domain.Ingredient, error) {
	ing := domain.NewIngredient(input.Name, input.Unit, input.Calorie, input.CategoryID)
	if err := s.store.CreateIngredient(ctx, ing); err != nil {
		return nil, err
	}

	s.logger.Info("ingredient created", "id", ing.ID, "name", ing.Name)
	return ing, nil
}

// Get returns a single ingredient.
func (s *IngredientService) Get(ctx context.Context, ingredientID string) (*domain.Ingredient, error) {
	return s.store.GetIngredient(ctx, ingredientID)
}

// List returns ingredients hydrated with category names, optionally
// filtered by a case-insensitive name substring.
func (s *IngredientService) List(ctx context.Context, query string) ([]IngredientView, error) {
	ingredients, err := s.store.ListIngredients(ctx, query)
	if err != nil {
		return nil, err
	}

	cats, err := s.store.ListCategories(ctx, domain.CategoryKindIngredient)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	views := make([]IngredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		views = append(views, IngredientView{
			Ingredient: *ing,
			Category:   names[ing.CategoryID],
		})
	}
	return views, nil
}

// Update applies a partial update. A rename or category change reindexes
// every recipe referencing the ingredient, since both feed the
// main-ingredients search field.
func (s *IngredientService) Update(ctx context.Context, ingredientID string, patch IngredientUpdate) (*domain.Ingredient, error) {
	var affected []string
	if patch.Name != nil || patch.CategoryID != nil {
		ids, err := s.store.RecipeIDsForIngredient(ctx, ingredientID)
		if err != nil {
			return nil, err
		}
		affected = ids
	}

	ing, err := s.store.UpdateIngredient(ctx, ingredientID, patch.Name, patch.Unit, patch.Calorie, patch.CategoryID)
	if err != nil {
		return nil, err
	}

	if len(affected) > 0 {
		s.logger.Info("ingredient changed, reindexing recipes", "id", ingredientID, "recipes", len(affected))
		go s.recipes.ReindexRecipes(context.WithoutCancel(ctx), affected)
	}
	return ing, nil
}

// Delete removes an ingredient. Fails with a conflict while any recipe
// line still references it.
func (s *IngredientService) Delete(ctx context.Context, ingredientID string) error {
	if err := s.store.DeleteIngredient(ctx, ingredientID); err != nil {
		return err
	}
	s.logger.Info("ingredient deleted", "id", ingredientID)
	return nil
}
