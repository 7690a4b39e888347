package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pantryapp/pantry-server/internal/domain"
	"github.com/pantryapp/pantry-server/internal/service"
)

func (s *Server) registerIngredientRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listIngredients",
		Method:      http.MethodGet,
		Path:        "/api/v1/ingredients",
		Summary:     "List ingredients",
		Description: "Returns ingredients, optionally filtered by a name substring",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListIngredients)

	huma.Register(s.api, huma.Operation{
		OperationID: "createIngredient",
		Method:      http.MethodPost,
		Path:        "/api/v1/ingredients",
		Summary:     "Create ingredient",
		Description: "Creates a new shared ingredient",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIngredient",
		Method:      http.MethodGet,
		Path:        "/api/v1/ingredients/{id}",
		Summary:     "Get ingredient",
		Description: "Returns an ingredient by ID",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateIngredient",
		Method:      http.MethodPatch,
		Path:        "/api/v1/ingredients/{id}",
		Summary:     "Update ingredient",
		Description: "Updates an ingredient; a null calorie clears it",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateIngredient)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteIngredient",
		Method:      http.MethodDelete,
		Path:        "/api/v1/ingredients/{id}",
		Summary:     "Delete ingredient",
		Description: "Deletes an ingredient; fails if any recipe still uses it",
		Tags:        []string{"Ingredients"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteIngredient)
}

// === DTOs ===

// ListIngredientsInput contains parameters for listing ingredients.
type ListIngredientsInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Case-insensitive name substring filter"`
}

// IngredientResponse contains ingredient data in API responses.
type IngredientResponse struct {
	ID         string    `json:"id" doc:"Ingredient ID"`
	Name       string    `json:"name" doc:"Ingredient name"`
	Unit       string    `json:"unit" doc:"Display unit, e.g. g or piece"`
	Calorie    *float64  `json:"calorie,omitempty" doc:"Calories per one unit"`
	CategoryID string    `json:"category_id,omitempty" doc:"Category ID, empty for uncategorized"`
	Category   string    `json:"category,omitempty" doc:"Category name"`
	CreatedAt  time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt  time.Time `json:"updated_at" doc:"Last update time"`
}

// ListIngredientsResponse contains a list of ingredients.
type ListIngredientsResponse struct {
	Ingredients []IngredientResponse `json:"ingredients" doc:"List of ingredients"`
}

// ListIngredientsOutput wraps the list ingredients response for Huma.
type ListIngredientsOutput struct {
	Body ListIngredientsResponse
}

// CreateIngredientRequest is the request body for creating an ingredient.
type CreateIngredientRequest struct {
	Name       string   `json:"name" validate:"required,min=1,max=100" doc:"Ingredient name"`
	Unit       string   `json:"unit" validate:"required,min=1,max=20" doc:"Display unit"`
	Calorie    *float64 `json:"calorie,omitempty" validate:"omitempty,gte=0" doc:"Calories per one unit"`
	CategoryID string   `json:"category_id,omitempty" doc:"Category ID, empty for uncategorized"`
}

// CreateIngredientInput wraps the create ingredient request for Huma.
type CreateIngredientInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateIngredientRequest
}

// IngredientOutput wraps the ingredient response for Huma.
type IngredientOutput struct {
	Body IngredientResponse
}

// GetIngredientInput contains parameters for getting an ingredient.
type GetIngredientInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Ingredient ID"`
}

// UpdateIngredientRequest is the request body for updating an
// ingredient. ClearCalorie removes the calorie value; it wins over
// Calorie when both are set.
type UpdateIngredientRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100" doc:"Ingredient name"`
	Unit         *string  `json:"unit,omitempty" validate:"omitempty,min=1,max=20" doc:"Display unit"`
	Calorie      *float64 `json:"calorie,omitempty" validate:"omitempty,gte=0" doc:"Calories per one unit"`
	ClearCalorie bool     `json:"clear_calorie,omitempty" doc:"Remove the calorie value"`
	CategoryID   *string  `json:"category_id,omitempty" doc:"Category ID, empty string clears it"`
}

// UpdateIngredientInput wraps the update ingredient request for Huma.
type UpdateIngredientInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Ingredient ID"`
	Body          UpdateIngredientRequest
}

// DeleteIngredientInput contains parameters for deleting an ingredient.
type DeleteIngredientInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Ingredient ID"`
}

// === Handlers ===

func (s *Server) handleListIngredients(ctx context.Context, input *ListIngredientsInput) (*ListIngredientsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	views, err := s.services.Ingredients.List(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	resp := make([]IngredientResponse, len(views))
	for i, v := range views {
		resp[i] = ingredientViewResponse(v)
	}

	return &ListIngredientsOutput{Body: ListIngredientsResponse{Ingredients: resp}}, nil
}

func (s *Server) handleCreateIngredient(ctx context.Context, input *CreateIngredientInput) (*IngredientOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	ing, err := s.services.Ingredients.Create(ctx, service.CreateIngredientInput{
		Name:       input.Body.Name,
		Unit:       input.Body.Unit,
		Calorie:    input.Body.Calorie,
		CategoryID: input.Body.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	return &IngredientOutput{Body: ingredientResponse(ing)}, nil
}

func (s *Server) handleGetIngredient(ctx context.Context, input *GetIngredientInput) (*IngredientOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	ing, err := s.services.Ingredients.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &IngredientOutput{Body: ingredientResponse(ing)}, nil
}

func (s *Server) handleUpdateIngredient(ctx context.Context, input *UpdateIngredientInput) (*IngredientOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	patch := service.IngredientUpdate{
		Name:       input.Body.Name,
		Unit:       input.Body.Unit,
		CategoryID: input.Body.CategoryID,
	}
	if input.Body.ClearCalorie {
		var cleared *float64
		patch.Calorie = &cleared
	} else if input.Body.Calorie != nil {
		patch.Calorie = &input.Body.Calorie
	}

	ing, err := s.services.Ingredients.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, err
	}

	return &IngredientOutput{Body: ingredientResponse(ing)}, nil
}

func (s *Server) handleDeleteIngredient(ctx context.Context, input *DeleteIngredientInput) (*struct{}, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Ingredients.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

func ingredientResponse(ing *domain.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:         ing.ID,
		Name:       ing.Name,
		Unit:       ing.Unit,
		Calorie:    ing.Calorie,
		CategoryID: ing.CategoryID,
		CreatedAt:  ing.CreatedAt,
		UpdatedAt:  ing.UpdatedAt,
	}
}

func ingredientViewResponse(v service.IngredientView) IngredientResponse {
	resp := ingredientResponse(&v.Ingredient)
	resp.Category = v.Category
	return resp
}
