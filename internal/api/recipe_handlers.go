package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pantryapp/pantry-server/internal/domain"
	"github.com/pantryapp/pantry-server/internal/service"
	"github.com/pantryapp/pantry-server/internal/store"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes",
		Summary:     "List recipes",
		Description: "Returns summaries of all recipes",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID: "createRecipe",
		Method:      http.MethodPost,
		Path:        "/api/v1/recipes",
		Summary:     "Create recipe",
		Description: "Creates a new recipe with tags and ingredient lines",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Get recipe",
		Description: "Returns a fully hydrated recipe by ID",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Update recipe",
		Description: "Partially updates a recipe; omitted fields stay unchanged",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteRecipe",
		Method:      http.MethodDelete,
		Path:        "/api/v1/recipes/{id}",
		Summary:     "Delete recipe",
		Description: "Deletes a recipe, its images, and its search entry",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteRecipe)

	// Share pages are public by design: the link is the credential.
	huma.Register(s.api, huma.Operation{
		OperationID: "getShare",
		Method:      http.MethodGet,
		Path:        "/api/v1/share/{id}",
		Summary:     "Get share info",
		Description: "Returns the public share projection of a recipe",
		Tags:        []string{"Recipes"},
	}, s.handleGetShare)
}

// === DTOs ===

// RecipeImageResponse contains image data in API responses.
type RecipeImageResponse struct {
	ID        string `json:"id" doc:"Image ID"`
	ImagePath string `json:"image_path" doc:"Path to the image file, e.g. uploads/ab12.jpg"`
	BlurHash  string `json:"blur_hash,omitempty" doc:"BlurHash placeholder string"`
	SortOrder int    `json:"sort_order" doc:"Display position, zero first"`
}

// RecipeLineResponse contains an ingredient line in API responses.
type RecipeLineResponse struct {
	ID           string   `json:"id" doc:"Line ID"`
	IngredientID string   `json:"ingredient_id" doc:"Shared ingredient ID"`
	Name         string   `json:"name" doc:"Ingredient name"`
	Amount       string   `json:"amount" doc:"Free-text amount"`
	Unit         string   `json:"unit" doc:"Display unit"`
	Calorie      *float64 `json:"calorie,omitempty" doc:"Calories per unit"`
	Category     string   `json:"category,omitempty" doc:"Ingredient category name"`
}

// RecipeTagResponse contains a tag with its resolved category name.
type RecipeTagResponse struct {
	ID       string `json:"id" doc:"Tag ID"`
	Name     string `json:"name" doc:"Tag name"`
	Category string `json:"category,omitempty" doc:"Tag category name"`
}

// RecipeResponse contains a fully hydrated recipe.
type RecipeResponse struct {
	ID            string                `json:"id" doc:"Recipe ID"`
	Name          string                `json:"name" doc:"Recipe name"`
	Description   string                `json:"description,omitempty" doc:"Short description"`
	Steps         string                `json:"steps,omitempty" doc:"Preparation steps"`
	Tips          string                `json:"tips,omitempty" doc:"Cooking tips"`
	TotalCalories int                   `json:"total_calories" doc:"Sum over all ingredient lines"`
	Images        []RecipeImageResponse `json:"images" doc:"Images ordered by sort_order"`
	Ingredients   []RecipeLineResponse  `json:"ingredients" doc:"Ingredient lines"`
	Tags          []RecipeTagResponse   `json:"tags" doc:"Tags with category names"`
	CreatedAt     time.Time             `json:"created_at" doc:"Creation time"`
	UpdatedAt     time.Time             `json:"updated_at" doc:"Last update time"`
}

// RecipeSummaryResponse is the list projection of a recipe.
type RecipeSummaryResponse struct {
	ID            string               `json:"id" doc:"Recipe ID"`
	Name          string               `json:"name" doc:"Recipe name"`
	Description   string               `json:"description,omitempty" doc:"Short description"`
	CoverImage    *RecipeImageResponse `json:"cover_image,omitempty" doc:"First image by sort order"`
	TotalCalories int                  `json:"total_calories" doc:"Sum over all ingredient lines"`
	Tags          []RecipeTagResponse  `json:"tags,omitempty" doc:"Tags with category names"`
}

// ListRecipesInput contains parameters for listing recipes.
type ListRecipesInput struct {
	Authorization string `header:"Authorization"`
}

// ListRecipesResponse contains a list of recipe summaries.
type ListRecipesResponse struct {
	Recipes []RecipeSummaryResponse `json:"recipes" doc:"Recipe summaries"`
}

// ListRecipesOutput wraps the list recipes response for Huma.
type ListRecipesOutput struct {
	Body ListRecipesResponse
}

// LineRequest is one ingredient line in a create or update request.
type LineRequest struct {
	IngredientID string `json:"ingredient_id" validate:"required" doc:"Shared ingredient ID"`
	Amount       string `json:"amount" doc:"Free-text amount"`
}

// CreateRecipeRequest is the request body for creating a recipe.
type CreateRecipeRequest struct {
	Name        string        `json:"name" validate:"required,min=1,max=200" doc:"Recipe name"`
	Description string        `json:"description,omitempty" doc:"Short description"`
	Steps       string        `json:"steps,omitempty" doc:"Preparation steps"`
	Tips        string        `json:"tips,omitempty" doc:"Cooking tips"`
	TagIDs      []string      `json:"tag_ids,omitempty" doc:"Tag IDs to attach"`
	Ingredients []LineRequest `json:"ingredients,omitempty" doc:"Ingredient lines"`
}

// CreateRecipeInput wraps the create recipe request for Huma.
type CreateRecipeInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateRecipeRequest
}

// RecipeOutput wraps the recipe response for Huma.
type RecipeOutput struct {
	Body RecipeResponse
}

// GetRecipeInput contains parameters for getting a recipe.
type GetRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Recipe ID"`
}

// UpdateRecipeRequest is the request body for updating a recipe. A
// present-but-empty tag_ids or ingredients clears the whole set.
type UpdateRecipeRequest struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=200" doc:"Recipe name"`
	Description *string        `json:"description,omitempty" doc:"Short description"`
	Steps       *string        `json:"steps,omitempty" doc:"Preparation steps"`
	Tips        *string        `json:"tips,omitempty" doc:"Cooking tips"`
	TagIDs      *[]string      `json:"tag_ids,omitempty" doc:"Replacement tag set"`
	Ingredients *[]LineRequest `json:"ingredients,omitempty" doc:"Replacement ingredient lines"`
}

// UpdateRecipeInput wraps the update recipe request for Huma.
type UpdateRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Recipe ID"`
	Body          UpdateRecipeRequest
}

// DeleteRecipeInput contains parameters for deleting a recipe.
type DeleteRecipeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Recipe ID"`
}

// GetShareInput contains parameters for the public share endpoint.
type GetShareInput struct {
	ID string `path:"id" doc:"Recipe ID"`
}

// ShareResponse contains the public share projection of a recipe.
type ShareResponse struct {
	Name        string   `json:"name" doc:"Recipe name"`
	Description string   `json:"description,omitempty" doc:"Description, truncated for previews"`
	Tags        []string `json:"tags,omitempty" doc:"Tag names"`
	ShareText   string   `json:"share_text" doc:"Ready-to-paste share text with hashtags"`
}

// ShareOutput wraps the share response for Huma.
type ShareOutput struct {
	Body ShareResponse
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, input *ListRecipesInput) (*ListRecipesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	summaries, err := s.services.Recipes.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]RecipeSummaryResponse, len(summaries))
	for i, sum := range summaries {
		resp[i] = summaryResponse(sum)
	}

	return &ListRecipesOutput{Body: ListRecipesResponse{Recipes: resp}}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	agg, err := s.services.Recipes.Create(ctx, service.CreateRecipeInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Steps:       input.Body.Steps,
		Tips:        input.Body.Tips,
		TagIDs:      input.Body.TagIDs,
		Ingredients: lineInputs(input.Body.Ingredients),
	})
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: recipeResponse(agg)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *GetRecipeInput) (*RecipeOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	agg, err := s.services.Recipes.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: recipeResponse(agg)}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *UpdateRecipeInput) (*RecipeOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	patch := store.RecipeUpdate{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Steps:       input.Body.Steps,
		Tips:        input.Body.Tips,
		TagIDs:      input.Body.TagIDs,
	}
	if input.Body.Ingredients != nil {
		lines := lineInputs(*input.Body.Ingredients)
		patch.Ingredients = &lines
	}

	agg, err := s.services.Recipes.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: recipeResponse(agg)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *DeleteRecipeInput) (*struct{}, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Recipes.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

func (s *Server) handleGetShare(ctx context.Context, input *GetShareInput) (*ShareOutput, error) {
	info, err := s.services.Recipes.Share(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ShareOutput{
		Body: ShareResponse{
			Name:        info.Name,
			Description: info.Description,
			Tags:        info.Tags,
			ShareText:   info.ShareText,
		},
	}, nil
}

// === Mapping ===

func lineInputs(lines []LineRequest) []store.LineInput {
	out := make([]store.LineInput, len(lines))
	for i, l := range lines {
		out[i] = store.LineInput{IngredientID: l.IngredientID, Amount: l.Amount}
	}
	return out
}

func imageResponse(img *domain.RecipeImage) RecipeImageResponse {
	return RecipeImageResponse{
		ID:        img.ID,
		ImagePath: img.ImagePath,
		BlurHash:  img.BlurHash,
		SortOrder: img.SortOrder,
	}
}

func tagResponses(tags []domain.TagWithCategory) []RecipeTagResponse {
	out := make([]RecipeTagResponse, len(tags))
	for i, t := range tags {
		out[i] = RecipeTagResponse{ID: t.ID, Name: t.Name, Category: t.Category}
	}
	return out
}

func recipeResponse(agg *domain.RecipeAggregate) RecipeResponse {
	images := make([]RecipeImageResponse, len(agg.Images))
	for i := range agg.Images {
		images[i] = imageResponse(&agg.Images[i])
	}

	lines := make([]RecipeLineResponse, len(agg.Ingredients))
	for i, l := range agg.Ingredients {
		lines[i] = RecipeLineResponse{
			ID:           l.ID,
			IngredientID: l.IngredientID,
			Name:         l.Name,
			Amount:       l.Amount,
			Unit:         l.Unit,
			Calorie:      l.Calorie,
			Category:     l.Category,
		}
	}

	return RecipeResponse{
		ID:            agg.ID,
		Name:          agg.Name,
		Description:   agg.Description,
		Steps:         agg.Steps,
		Tips:          agg.Tips,
		TotalCalories: agg.TotalCalories(),
		Images:        images,
		Ingredients:   lines,
		Tags:          tagResponses(agg.Tags),
		CreatedAt:     agg.CreatedAt,
		UpdatedAt:     agg.UpdatedAt,
	}
}

func summaryResponse(sum service.RecipeSummary) RecipeSummaryResponse {
	resp := RecipeSummaryResponse{
		ID:            sum.ID,
		Name:          sum.Name,
		Description:   sum.Description,
		TotalCalories: sum.TotalCalories,
		Tags:          tagResponses(sum.Tags),
	}
	if sum.CoverImage != nil {
		cover := imageResponse(sum.CoverImage)
		resp.CoverImage = &cover
	}
	return resp
}
