package recipe

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

const identificationPrompt = `List in detail and clearly all food ingredients you can identify in this image of a refrigerator. Separate them by comma and be concise.`

const recipesPrompt = `
	With the following ingredients available: %s.
	Suggest 3 creative and simple recipes that can be made with these ingredients.
	For each recipe, provide:
	1. The name of the recipe.
	2. A brief description.
	3. A list of the main ingredients used from this list.
	4. Concise preparation instructions, in step-by-step format.`

func formatPrompt(prompt string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(prompt)), a...)
}

// RecipesPrompt returns the text-only prompt sent to the recipe generator.
func RecipesPrompt(ingredients []string) string {
	return formatPrompt(recipesPrompt, JoinIngredients(ingredients))
}
