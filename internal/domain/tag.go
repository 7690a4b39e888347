package domain

import (
	"time"

	"github.com/pantryapp/pantry-server/internal/id"
)

// Tag labels recipes ("spicy", "sichuan"). Tags are global and shared —
// no ownership model. Name is unique and is the key used to resolve tags
// during archive import.
type Tag struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CategoryID string    `json:"category_id,omitempty"` // Weak reference; empty for uncategorized
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewTag builds a tag with a fresh id. CategoryID may be empty.
func NewTag(name, categoryID string) *Tag {
	now := time.Now()
	return &Tag{
		ID:         id.MustGenerate(id.PrefixTag),
		Name:       name,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}

// RecipeTag represents the many-to-many relationship between recipes and
// tags. No payload; the pair is the whole fact.
type RecipeTag struct {
	RecipeID  string    `json:"recipe_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}
