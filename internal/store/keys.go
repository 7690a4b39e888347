package store

// Key prefixes. Primary rows hold JSON values; idx: rows hold either the
// target id (name indexes) or nothing (membership indexes, where the key
// itself is the whole fact).
const (
	recipePrefix     = "recipe:"     // recipe:{id} → Recipe JSON
	imagePrefix      = "recipeimg:"  // recipeimg:{recipeID}:{imageID} → RecipeImage JSON
	linePrefix       = "recipeline:" // recipeline:{recipeID}:{lineID} → RecipeIngredient JSON
	tagPrefix        = "tag:"        // tag:{id} → Tag JSON
	ingredientPrefix = "ingredient:" // ingredient:{id} → Ingredient JSON
	categoryPrefix   = "category:"   // category:{id} → Category JSON

	// Name indexes for lookup-by-name and uniqueness checks.
	tagByNamePrefix        = "idx:tags:name:"        // idx:tags:name:{name} → tagID
	ingredientByNamePrefix = "idx:ingredients:name:" // idx:ingredients:name:{name} → ingredientID
	categoryByNamePrefix   = "idx:categories:name:"  // idx:categories:name:{kind}:{name} → categoryID

	// Recipe-tag join, both directions.
	recipeTagsPrefix = "idx:recipes:tags:" // idx:recipes:tags:{recipeID}:{tagID} → empty
	tagRecipesPrefix = "idx:tags:recipes:" // idx:tags:recipes:{tagID}:{recipeID} → empty

	// Reverse-reference indexes backing the referential guards.
	tagsByCategoryPrefix        = "idx:tags:category:"        // idx:tags:category:{categoryID}:{tagID} → empty
	ingredientsByCategoryPrefix = "idx:ingredients:category:" // idx:ingredients:category:{categoryID}:{ingredientID} → empty
	ingredientUsesPrefix        = "idx:ingredients:uses:"     // idx:ingredients:uses:{ingredientID}:{lineID} → empty

	// Synonym table for the search engine.
	synonymGroupsKey   = "synonyms:groups"   // raw groups as entered, JSON map[string][]string
	synonymExpandedKey = "synonyms:expanded" // bidirectional expansion, JSON map[string][]string
)

// join builds a composite key part by part, colon-separated.
func join(prefix string, parts ...string) []byte {
	n := len(prefix)
	for _, p := range parts {
		n += len(p) + 1
	}
	buf := make([]byte, 0, n)
	buf = append(buf, prefix...)
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, p...)
	}
	return buf
}
