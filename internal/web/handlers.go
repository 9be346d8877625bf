package web

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raine/recipe-suggester/internal/llm"
	"github.com/raine/recipe-suggester/internal/recipe"
	"github.com/rs/zerolog"
)

const formField = "image"

// page is the data rendered by index.html.
type page struct {
	Title          string
	Intro          string
	Accept         string
	Preview        template.URL
	Statuses       []string
	Notice         *recipe.Notice
	Ingredients    string
	RecipesHeading string
	Recipes        string
}

func newPage() page {
	accept := make([]string, len(recipe.AllowedExtensions))
	for i, ext := range recipe.AllowedExtensions {
		accept[i] = "." + ext
	}
	return page{
		Title:  recipe.MsgTitle,
		Intro:  recipe.MsgIntro,
		Accept: strings.Join(accept, ","),
	}
}

// SuggestionResponse is the JSON body of a successful API call.
type SuggestionResponse struct {
	Ingredients []string `json:"ingredients"`
	Recipes     string   `json:"recipes"`
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", newPage())
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// upload handles the form post and renders the results below the preview.
func (s *Server) upload(c *gin.Context) {
	p := newPage()

	img, status, err := readUpload(c)
	if err != nil {
		notice := recipe.Describe(err, s.suggester.ModelName())
		p.Notice = &notice
		c.HTML(status, "index.html", p)
		return
	}

	p.Preview = template.URL(fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data)))
	p.Statuses = append(p.Statuses, recipe.MsgAnalyzing)

	suggestion, err := s.suggester.Suggest(c.Request.Context(), img)
	if suggestion != nil {
		p.Ingredients = fmt.Sprintf(recipe.MsgIdentified, recipe.JoinIngredients(suggestion.Ingredients))
		p.Statuses = append(p.Statuses, recipe.MsgGenerating)
	}
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("recipe suggestion failed")
		notice := recipe.Describe(err, s.suggester.ModelName())
		p.Notice = &notice
		c.HTML(statusFor(err), "index.html", p)
		return
	}

	p.RecipesHeading = recipe.MsgRecipesHeading
	p.Recipes = suggestion.Recipes
	c.HTML(http.StatusOK, "index.html", p)
}

// createSuggestion is the JSON equivalent of upload.
func (s *Server) createSuggestion(c *gin.Context) {
	img, status, err := readUpload(c)
	if err != nil {
		c.JSON(status, gin.H{
			"error":   "Invalid upload",
			"message": err.Error(),
		})
		return
	}

	suggestion, err := s.suggester.Suggest(c.Request.Context(), img)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("recipe suggestion failed")
		notice := recipe.Describe(err, s.suggester.ModelName())
		body := gin.H{
			"error":   err.Error(),
			"message": notice.Message,
		}
		if notice.Hint != "" {
			body["hint"] = notice.Hint
		}
		if suggestion != nil {
			body["ingredients"] = suggestion.Ingredients
		}
		c.JSON(statusFor(err), body)
		return
	}

	c.JSON(http.StatusOK, SuggestionResponse{
		Ingredients: suggestion.Ingredients,
		Recipes:     suggestion.Recipes,
	})
}

// readUpload reads and validates the multipart image field. The returned
// status is meaningful only when err is non-nil.
func readUpload(c *gin.Context) (llm.Image, int, error) {
	fh, err := c.FormFile(formField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return llm.Image{}, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: upload exceeds %d bytes", recipe.ErrInvalidImage, maxErr.Limit)
		}
		return llm.Image{}, http.StatusBadRequest, fmt.Errorf("%w: missing %q file field", recipe.ErrInvalidImage, formField)
	}

	f, err := fh.Open()
	if err != nil {
		return llm.Image{}, http.StatusBadRequest, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, recipe.MaxImageSize+1))
	if err != nil {
		return llm.Image{}, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err)
	}

	img, err := recipe.NewUpload(fh.Filename, data)
	if err != nil {
		return llm.Image{}, http.StatusBadRequest, err
	}
	return img, http.StatusOK, nil
}

func statusFor(err error) int {
	var stageErr *recipe.StageError
	switch {
	case errors.Is(err, recipe.ErrNoIngredients):
		return http.StatusUnprocessableEntity
	case errors.As(err, &stageErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
