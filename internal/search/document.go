// Package search provides full-text recipe search using Bleve.
// Recipes are indexed by name, tag names, and main ingredient names,
// with an admin-managed synonym table expanding matches at query time.
package search

import "github.com/pantryapp/pantry-server/internal/domain"

// RecipeDocument is the indexed shape of a recipe.
type RecipeDocument struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Tags            []string `json:"tags,omitempty"`
	MainIngredients []string `json:"main_ingredients,omitempty"`
}

// DocumentFromRecipe projects an aggregate into its search document.
// Only main-category ingredients are indexed; staples like salt or oil
// appear in nearly every recipe and would drown out relevance.
func DocumentFromRecipe(agg *domain.RecipeAggregate) *RecipeDocument {
	return &RecipeDocument{
		ID:              agg.ID,
		Name:            agg.Name,
		Tags:            agg.TagNames(),
		MainIngredients: agg.MainIngredients(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *RecipeDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":   d.ID,
		"name": d.Name,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if len(d.MainIngredients) > 0 {
		m["main_ingredients"] = d.MainIngredients
	}
	return m
}
