package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/pantryapp/pantry-server/internal/id"
)

// Recipe is the aggregate root. Images and ingredient lines are
// exclusively owned and cascade-deleted with it; tags are shared and only
// the join rows go.
type Recipe struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Steps       string    `json:"steps"`
	Tips        string    `json:"tips"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRecipe builds a recipe with a fresh id and equal create/update
// timestamps.
func NewRecipe(name, description, steps, tips string) *Recipe {
	now := time.Now()
	return &Recipe{
		ID:          id.MustGenerate(id.PrefixRecipe),
		Name:        name,
		Description: description,
		Steps:       steps,
		Tips:        tips,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (r *Recipe) Touch() {
	r.UpdatedAt = time.Now()
}

// RecipeImage is one uploaded photo of a recipe. SortOrder is dense and
// zero-based within the owning recipe after any reorder.
type RecipeImage struct {
	ID        string    `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	ImagePath string    `json:"image_path"` // Path relative to the upload root, e.g. "uploads/ab12.jpg"
	BlurHash  string    `json:"blur_hash,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// RecipeIngredient links a recipe to a shared ingredient with a free-text
// amount ("2", "1.5", "a pinch").
type RecipeIngredient struct {
	ID           string    `json:"id"`
	RecipeID     string    `json:"recipe_id"`
	IngredientID string    `json:"ingredient_id"`
	Amount       string    `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// AmountValue parses the free-text amount as a number. Non-numeric
// amounts contribute zero to calorie math but stay verbatim for display.
func (ri *RecipeIngredient) AmountValue() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(ri.Amount), 64)
	if err != nil {
		return 0
	}
	return v
}

// Staple category names. Ingredients in these categories are the
// "main ingredients" surfaced in summaries and the search index.
const (
	CategoryMain      = "main"
	CategorySecondary = "secondary"
)

// IsStapleCategory reports whether a category name marks main ingredients.
func IsStapleCategory(name string) bool {
	return name == CategoryMain || name == CategorySecondary
}
