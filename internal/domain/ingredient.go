package domain

import (
	"time"

	"github.com/pantryapp/pantry-server/internal/id"
)

// Ingredient is a shared pantry item referenced by recipes. It outlives
// any one recipe; deleting a recipe never deletes its ingredients.
// Name is unique and is the key used to resolve ingredients during
// archive import.
type Ingredient struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`                  // Display unit: "g", "piece", "serving"
	Calorie    *float64  `json:"calorie,omitempty"`     // Calories per one unit; nil when unknown
	CategoryID string    `json:"category_id,omitempty"` // Weak reference; empty for uncategorized
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewIngredient builds an ingredient with a fresh id. Calorie may be
// nil, CategoryID may be empty.
func NewIngredient(name, unit string, calorie *float64, categoryID string) *Ingredient {
	now := time.Now()
	return &Ingredient{
		ID:         id.MustGenerate(id.PrefixIngredient),
		Name:       name,
		Unit:       unit,
		Calorie:    calorie,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (i *Ingredient) Touch() {
	i.UpdatedAt = time.Now()
}

// CaloriesFor returns the calorie contribution for a free-text amount.
// Amounts that don't parse as a number ("a pinch") contribute zero, as
// does an ingredient with no calorie data.
func (i *Ingredient) CaloriesFor(amount float64) float64 {
	if i.Calorie == nil {
		return 0
	}
	return amount * *i.Calorie
}
