package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(f float64) *float64 { return &f }

func TestTotalCalories(t *testing.T) {
	agg := &RecipeAggregate{
		Ingredients: []IngredientLine{
			{RecipeIngredient: RecipeIngredient{Amount: "2"}, Calorie: fptr(18.0)},
			{RecipeIngredient: RecipeIngredient{Amount: "abc"}, Calorie: fptr(5.0)},
		},
	}

	assert.Equal(t, 36, agg.TotalCalories())
}

func TestTotalCalories_NilCalorieContributesZero(t *testing.T) {
	agg := &RecipeAggregate{
		Ingredients: []IngredientLine{
			{RecipeIngredient: RecipeIngredient{Amount: "3"}},
			{RecipeIngredient: RecipeIngredient{Amount: "1.5"}, Calorie: fptr(10.0)},
		},
	}

	assert.Equal(t, 15, agg.TotalCalories())
}

func TestTotalCalories_Rounds(t *testing.T) {
	agg := &RecipeAggregate{
		Ingredients: []IngredientLine{
			{RecipeIngredient: RecipeIngredient{Amount: "1"}, Calorie: fptr(0.5)},
		},
	}

	// math.Round: halfway rounds away from zero.
	assert.Equal(t, 1, agg.TotalCalories())
}

func TestTotalCalories_Empty(t *testing.T) {
	agg := &RecipeAggregate{}
	assert.Equal(t, 0, agg.TotalCalories())
}

func TestAmountValue(t *testing.T) {
	tests := []struct {
		amount string
		want   float64
	}{
		{"2", 2},
		{"1.5", 1.5},
		{" 3 ", 3},
		{"a pinch", 0},
		{"", 0},
		{"2个", 0}, // mixed text doesn't parse
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			ri := &RecipeIngredient{Amount: tt.amount}
			assert.Equal(t, tt.want, ri.AmountValue())
		})
	}
}

func TestMainIngredients(t *testing.T) {
	agg := &RecipeAggregate{
		Ingredients: []IngredientLine{
			{Name: "pork belly", Category: CategoryMain},
			{Name: "soy sauce", Category: "sauce"},
			{Name: "scallion", Category: CategorySecondary},
			{Name: "salt", Category: ""},
		},
	}

	assert.Equal(t, []string{"pork belly", "scallion"}, agg.MainIngredients())
}

func TestMainIngredients_NoneReturnsNil(t *testing.T) {
	agg := &RecipeAggregate{
		Ingredients: []IngredientLine{
			{Name: "salt", Category: "spice"},
		},
	}

	assert.Nil(t, agg.MainIngredients())
}

func TestCategoryKind_Valid(t *testing.T) {
	assert.True(t, CategoryKindTag.Valid())
	assert.True(t, CategoryKindIngredient.Valid())
	assert.False(t, CategoryKind("recipe").Valid())
	assert.False(t, CategoryKind("").Valid())
}
