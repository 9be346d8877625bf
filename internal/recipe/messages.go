package recipe

import (
	"errors"
	"fmt"
)

const (
	MsgTitle            = "Hi, I'm Chiller, your AI Recipe Assistant"
	MsgIntro            = "Upload a photo of the ingredients you have and discover delicious recipes!"
	MsgAnalyzing        = "Analyzing your image with Gemini... Please wait a moment."
	MsgGenerating       = "Generating recipe suggestions for you..."
	MsgIdentified       = "Identified Ingredients: %s"
	MsgRecipesHeading   = "RECIPE SUGGESTIONS FOR YOU"
	MsgNoIngredients    = "Could not identify significant ingredients in the image. Try a clearer image or one with more food items."
	MsgProcessingFailed = "An error occurred while processing your request: %s"
	MsgCheckSetupHint   = "Please check your API key and that the image is clear. Ensure that the '%s' model is correct and active."
	MsgInvalidImage     = "Please upload a JPG, JPEG or PNG image: %s"
)

// Level is the severity of a Notice.
type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-facing description of a failed run.
type Notice struct {
	Level   Level
	Message string
	Hint    string
}

// Describe maps a pipeline error to the message shown to the user.
func Describe(err error, modelName string) Notice {
	switch {
	case errors.Is(err, ErrNoIngredients):
		return Notice{Level: LevelWarning, Message: MsgNoIngredients}
	case errors.Is(err, ErrInvalidImage):
		return Notice{Level: LevelError, Message: fmt.Sprintf(MsgInvalidImage, err)}
	default:
		return Notice{
			Level:   LevelError,
			Message: fmt.Sprintf(MsgProcessingFailed, err),
			Hint:    fmt.Sprintf(MsgCheckSetupHint, modelName),
		}
	}
}
