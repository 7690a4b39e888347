// Package color provides palette-based color assignment for categories.
package color

// Palette is a fixed ordered sequence of hex colors. Allocation cycles
// through it by index, so a palette never runs out.
type Palette []string

// Twelve distinct hues. Tag and ingredient categories use the same hues
// with a different starting rotation, so the two sidebars don't start on
// identical colors.
var IngredientPalette = Palette{
	"#2e86ab", // blue
	"#a0522d", // sienna
	"#5b7a5e", // sage green
	"#6b5b95", // purple
	"#d4726a", // coral
	"#b8860b", // goldenrod
	"#3d7068", // teal
	"#c45d3e", // warm red
	"#708090", // slate
	"#8b6914", // khaki
	"#c44569", // rose
	"#3c6382", // steel blue
}

var TagPalette = Palette{
	"#c45d3e", // warm red
	"#b8860b", // goldenrod
	"#6b5b95", // purple
	"#2e86ab", // blue
	"#5b7a5e", // sage green
	"#d4726a", // coral
	"#3d7068", // teal
	"#a0522d", // sienna
	"#c44569", // rose
	"#708090", // slate
	"#3c6382", // steel blue
	"#8b6914", // khaki
}

// Next returns the color for a newly created category given how many
// categories of that kind already exist.
func (p Palette) Next(existingCount int) string {
	if existingCount < 0 {
		existingCount = 0
	}
	return p[existingCount%len(p)]
}

// At returns the color for a category at the given listing position.
func (p Palette) At(position int) string {
	return p.Next(position)
}

// Colorable is anything with a lazily assigned color.
type Colorable interface {
	GetColor() string
	SetColor(string)
}

// Backfill assigns palette colors to any entry lacking one, keyed by its
// position in listing order. Already-assigned colors are never touched.
// Returns true if any assignment occurred so the caller knows to persist.
func Backfill[T Colorable](p Palette, entries []T) bool {
	changed := false
	for i, e := range entries {
		if e.GetColor() == "" {
			e.SetColor(p.At(i))
			changed = true
		}
	}
	return changed
}
