package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/raine/recipe-suggester/internal/config"
	"github.com/raine/recipe-suggester/internal/llm"
	"github.com/raine/recipe-suggester/internal/recipe"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required\n")
		os.Exit(1)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	config.LoadEnvFile()

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		config.FatalWithWait("%v", err)
	}

	imagePath := os.Args[1]
	data, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	img, err := recipe.NewUpload(imagePath, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	model, err := llm.NewGeminiModel(ctx, cfg.GeminiAPIKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating Gemini model: %v\n", err)
		os.Exit(1)
	}

	suggester := recipe.NewSuggester(model)
	suggestion, err := suggester.Suggest(ctx, img)
	if suggestion != nil {
		fmt.Printf("Ingredients: %s\n", recipe.JoinIngredients(suggestion.Ingredients))
	}
	if err != nil {
		notice := recipe.Describe(err, suggester.ModelName())
		fmt.Fprintln(os.Stderr, notice.Message)
		if notice.Hint != "" {
			fmt.Fprintln(os.Stderr, notice.Hint)
		}
		if errors.Is(err, recipe.ErrNoIngredients) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	printResult(suggestion)
}

func printResult(s *recipe.Suggestion) {
	fmt.Println()
	fmt.Println(recipe.MsgRecipesHeading)
	fmt.Println()
	fmt.Println(s.Recipes)
	fmt.Println()
	fmt.Printf("Tokens:      %d in / %d out / %d total\n",
		s.Usage.InputTokens, s.Usage.OutputTokens, s.Usage.TotalTokens)
	fmt.Printf("Cost:        $%.6f\n", s.Usage.CostUSD)
}
