package api

import (
	"github.com/pantryapp/pantry-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Auth        *service.AuthService
	Recipes     *service.RecipeService
	Tags        *service.TagService
	Ingredients *service.IngredientService
	Categories  *service.CategoryService
	Search      *service.SearchService
	Images      *service.ImageService
	Archives    *service.ArchiveService
}
