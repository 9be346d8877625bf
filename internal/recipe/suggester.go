package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raine/recipe-suggester/internal/llm"
	"github.com/rs/zerolog/log"
)

// Stage identifies which model call of the pipeline failed.
type Stage string

const (
	StageIdentify Stage = "identify"
	StageGenerate Stage = "generate"
)

// ErrNoIngredients is returned when the identifier response contains no
// usable ingredient.
var ErrNoIngredients = errors.New("no ingredients identified")

// StageError wraps a failed model call.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	switch e.Stage {
	case StageIdentify:
		return fmt.Sprintf("ingredient identification failed: %v", e.Err)
	case StageGenerate:
		return fmt.Sprintf("recipe generation failed: %v", e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Suggestion is the outcome of one upload.
type Suggestion struct {
	Ingredients []string
	Recipes     string
	Usage       llm.Usage
}

// Suggester runs the identify-then-generate pipeline. It keeps no state
// between calls and is safe for concurrent use.
type Suggester struct {
	model llm.Model
}

// NewSuggester creates a Suggester backed by model.
func NewSuggester(model llm.Model) *Suggester {
	return &Suggester{model: model}
}

// ModelName returns the identifier of the underlying model.
func (s *Suggester) ModelName() string {
	return s.model.Name()
}

// IdentifyIngredients asks the model for the ingredients visible in img.
// It returns ErrNoIngredients if the response parses to an empty list.
func (s *Suggester) IdentifyIngredients(ctx context.Context, img llm.Image) ([]string, llm.Usage, error) {
	resp, err := s.model.Generate(ctx, identificationPrompt, img)
	if err != nil {
		return nil, llm.Usage{}, &StageError{Stage: StageIdentify, Err: err}
	}

	ingredients := ParseIngredients(resp.Text)
	if len(ingredients) == 0 {
		log.Warn().Str("response", resp.Text).Msg("no ingredients in identifier response")
		return nil, resp.Usage, ErrNoIngredients
	}

	log.Info().Strs("ingredients", ingredients).Msg("identified ingredients")
	return ingredients, resp.Usage, nil
}

// GenerateRecipes asks the model for recipe suggestions using ingredients.
// The returned text is trimmed but otherwise unmodified.
func (s *Suggester) GenerateRecipes(ctx context.Context, ingredients []string) (string, llm.Usage, error) {
	if len(ingredients) == 0 {
		return "", llm.Usage{}, ErrNoIngredients
	}

	resp, err := s.model.Generate(ctx, RecipesPrompt(ingredients))
	if err != nil {
		return "", llm.Usage{}, &StageError{Stage: StageGenerate, Err: err}
	}

	return strings.TrimSpace(resp.Text), resp.Usage, nil
}

// Suggest identifies the ingredients in img and generates recipes for them.
// When generation fails the returned Suggestion is non-nil and holds the
// identified ingredients alongside the error.
func (s *Suggester) Suggest(ctx context.Context, img llm.Image) (*Suggestion, error) {
	ingredients, usage, err := s.IdentifyIngredients(ctx, img)
	if err != nil {
		return nil, err
	}

	suggestion := &Suggestion{Ingredients: ingredients, Usage: usage}

	recipes, usage, err := s.GenerateRecipes(ctx, ingredients)
	suggestion.Usage = suggestion.Usage.Add(usage)
	if err != nil {
		return suggestion, err
	}
	suggestion.Recipes = recipes

	log.Info().
		Int("ingredientCount", len(ingredients)).
		Int64("totalTokens", suggestion.Usage.TotalTokens).
		Float64("costUSD", suggestion.Usage.CostUSD).
		Msg("recipe suggestion complete")

	return suggestion, nil
}
