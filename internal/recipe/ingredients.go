package recipe

import "strings"

// ParseIngredients splits a comma-separated model response into trimmed,
// non-empty ingredient names. Order and duplicates are preserved.
func ParseIngredients(raw string) []string {
	var ingredients []string
	for _, item := range strings.Split(strings.TrimSpace(raw), ",") {
		if item = strings.TrimSpace(item); item != "" {
			ingredients = append(ingredients, item)
		}
	}
	return ingredients
}

// JoinIngredients is the inverse used when prompting for recipes.
func JoinIngredients(ingredients []string) string {
	return strings.Join(ingredients, ", ")
}
