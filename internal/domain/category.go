package domain

import (
	"time"

	"github.com/pantryapp/pantry-server/internal/id"
)

// CategoryKind distinguishes the two independent category namespaces.
// Tag categories group tags ("cuisine", "occasion"); ingredient categories
// group ingredients ("main", "spice"). Names are unique per kind, not
// globally.
type CategoryKind string

const (
	CategoryKindTag        CategoryKind = "tag"
	CategoryKindIngredient CategoryKind = "ingredient"
)

// Valid reports whether k is one of the known kinds.
func (k CategoryKind) Valid() bool {
	return k == CategoryKindTag || k == CategoryKindIngredient
}

// Category groups tags or ingredients. Color is assigned lazily from a
// fixed palette and stable once set.
type Category struct {
	ID        string       `json:"id"`
	Kind      CategoryKind `json:"kind"`
	Name      string       `json:"name"`
	Color     string       `json:"color,omitempty"` // 7-char hex, e.g. "#2e86ab"
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewCategory builds a category with a fresh id. Color may be empty;
// the palette allocator fills it in.
func NewCategory(kind CategoryKind, name, color string) *Category {
	now := time.Now()
	return &Category{
		ID:        id.MustGenerate(id.PrefixCategory),
		Kind:      kind,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp.
func (c *Category) Touch() {
	c.UpdatedAt = time.Now()
}

// GetColor implements color.Colorable.
func (c *Category) GetColor() string { return c.Color }

// SetColor implements color.Colorable.
func (c *Category) SetColor(s string) { c.Color = s }
