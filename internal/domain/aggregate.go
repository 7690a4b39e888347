package domain

import "math"

// TagWithCategory is a tag hydrated with its resolved category name.
type TagWithCategory struct {
	Tag
	Category string `json:"category"` // Category name, "" for uncategorized
}

// IngredientLine is a recipe ingredient hydrated with the shared
// ingredient's name, unit, calorie data, and category name.
type IngredientLine struct {
	RecipeIngredient
	Name     string   `json:"name"`
	Unit     string   `json:"unit"`
	Calorie  *float64 `json:"calorie,omitempty"`
	Category string   `json:"category"` // Category name, "" for uncategorized
}

// RecipeAggregate is a fully hydrated recipe: images ordered by
// sort_order, tags with resolved category names, ingredient lines with
// resolved ingredient data. This is the shape services, the archive
// codec, and the search projection all work from.
type RecipeAggregate struct {
	Recipe
	Images      []RecipeImage     `json:"images"`
	Ingredients []IngredientLine  `json:"ingredients"`
	Tags        []TagWithCategory `json:"tags"`
}

// TotalCalories sums amount × calories-per-unit over all ingredient
// lines, rounded to the nearest whole calorie. Unparseable amounts and
// ingredients without calorie data contribute zero.
func (a *RecipeAggregate) TotalCalories() int {
	total := 0.0
	for i := range a.Ingredients {
		line := &a.Ingredients[i]
		if line.Calorie == nil {
			continue
		}
		total += line.AmountValue() * *line.Calorie
	}
	return int(math.Round(total))
}

// MainIngredients returns the names of ingredients in staple categories,
// in line order.
func (a *RecipeAggregate) MainIngredients() []string {
	var names []string
	for i := range a.Ingredients {
		if IsStapleCategory(a.Ingredients[i].Category) {
			names = append(names, a.Ingredients[i].Name)
		}
	}
	return names
}

// TagNames returns the recipe's tag names in association order.
func (a *RecipeAggregate) TagNames() []string {
	var names []string
	for i := range a.Tags {
		names = append(names, a.Tags[i].Name)
	}
	return names
}
