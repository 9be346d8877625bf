package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/raine/recipe-suggester/internal/llm"
	"github.com/raine/recipe-suggester/internal/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeModel answers image requests with identify and text-only requests
// with generate.
type fakeModel struct {
	identify func() (*llm.Response, error)
	generate func(prompt string) (*llm.Response, error)

	identifyCalls int
	generateCalls int
}

func (f *fakeModel) Generate(ctx context.Context, prompt string, images ...llm.Image) (*llm.Response, error) {
	if len(images) > 0 {
		f.identifyCalls++
		return f.identify()
	}
	f.generateCalls++
	return f.generate(prompt)
}

func (f *fakeModel) Name() string {
	return "test-model"
}

func text(s string) func() (*llm.Response, error) {
	return func() (*llm.Response, error) { return &llm.Response{Text: s}, nil }
}

func recipes(s string) func(string) (*llm.Response, error) {
	return func(string) (*llm.Response, error) { return &llm.Response{Text: s}, nil }
}

func newTestServer(model *fakeModel) *Server {
	return NewServer(":0", recipe.NewSuggester(model))
}

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, path, filename string, data []byte) *http.Request {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile(formField, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s := newTestServer(&fakeModel{})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), recipe.MsgTitle)
	assert.Contains(t, rec.Body.String(), `accept=".jpg,.jpeg,.png"`)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestHealth(t *testing.T) {
	rec := serve(newTestServer(&fakeModel{}), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUpload_Success(t *testing.T) {
	var prompt string
	model := &fakeModel{
		identify: text("Tomato, Basil"),
		generate: func(p string) (*llm.Response, error) {
			prompt = p
			return &llm.Response{Text: "1. Caprese salad"}, nil
		},
	}
	rec := serve(newTestServer(model), uploadRequest(t, "/", "fridge.png", pngBytes(t)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "data:image/png;base64,")
	assert.Contains(t, body, recipe.MsgAnalyzing)
	assert.Contains(t, body, "Identified Ingredients: Tomato, Basil")
	assert.Contains(t, body, recipe.MsgRecipesHeading)
	assert.Contains(t, body, "1. Caprese salad")
	assert.Contains(t, prompt, "Tomato, Basil")
}

func TestUpload_NoIngredients(t *testing.T) {
	model := &fakeModel{identify: text(" , , ")}
	rec := serve(newTestServer(model), uploadRequest(t, "/", "fridge.png", pngBytes(t)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), recipe.MsgNoIngredients)
	assert.NotContains(t, rec.Body.String(), recipe.MsgRecipesHeading)
	assert.Equal(t, 0, model.generateCalls)
}

func TestUpload_IdentifyError(t *testing.T) {
	model := &fakeModel{identify: func() (*llm.Response, error) { return nil, errors.New("boom") }}
	rec := serve(newTestServer(model), uploadRequest(t, "/", "fridge.png", pngBytes(t)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "An error occurred while processing your request: ingredient identification failed: boom")
	assert.Contains(t, body, "test-model")
	assert.NotContains(t, body, "Identified Ingredients")
	assert.Equal(t, 0, model.generateCalls)
}

func TestUpload_GenerateErrorKeepsIngredients(t *testing.T) {
	model := &fakeModel{
		identify: text("Eggs, Milk"),
		generate: func(string) (*llm.Response, error) { return nil, errors.New("quota") },
	}
	rec := serve(newTestServer(model), uploadRequest(t, "/", "fridge.png", pngBytes(t)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Identified Ingredients: Eggs, Milk")
	assert.Contains(t, body, "recipe generation failed: quota")
	assert.NotContains(t, body, recipe.MsgRecipesHeading)
}

func TestUpload_InvalidExtension(t *testing.T) {
	model := &fakeModel{}
	rec := serve(newTestServer(model), uploadRequest(t, "/", "fridge.gif", pngBytes(t)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please upload a JPG, JPEG or PNG image")
	assert.Equal(t, 0, model.identifyCalls)
}

func TestUpload_ReuploadDoesNotLeakIngredients(t *testing.T) {
	responses := []string{"Eggs, Milk", "Rice"}
	var prompts []string
	model := &fakeModel{
		generate: func(p string) (*llm.Response, error) {
			prompts = append(prompts, p)
			return &llm.Response{Text: "recipes"}, nil
		},
	}
	model.identify = func() (*llm.Response, error) {
		r := responses[model.identifyCalls-1]
		return &llm.Response{Text: r}, nil
	}
	s := newTestServer(model)

	first := serve(s, uploadRequest(t, "/", "a.png", pngBytes(t)))
	second := serve(s, uploadRequest(t, "/", "b.png", pngBytes(t)))

	assert.Contains(t, first.Body.String(), "Identified Ingredients: Eggs, Milk")
	assert.Contains(t, second.Body.String(), "Identified Ingredients: Rice")
	assert.NotContains(t, second.Body.String(), "Eggs")
	require.Len(t, prompts, 2)
	assert.NotContains(t, prompts[1], "Eggs")
}

func TestAPI_Success(t *testing.T) {
	model := &fakeModel{identify: text("Tomato, Basil, Tomato"), generate: recipes("  recipe text \n")}
	rec := serve(newTestServer(model), uploadRequest(t, "/api/v1/suggestions", "fridge.png", pngBytes(t)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SuggestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Tomato", "Basil", "Tomato"}, resp.Ingredients)
	assert.Equal(t, "recipe text", resp.Recipes)
}

func TestAPI_NoIngredients(t *testing.T) {
	model := &fakeModel{identify: text("")}
	rec := serve(newTestServer(model), uploadRequest(t, "/api/v1/suggestions", "fridge.png", pngBytes(t)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, recipe.ErrNoIngredients.Error(), body["error"])
	assert.Equal(t, recipe.MsgNoIngredients, body["message"])
	assert.Equal(t, 0, model.generateCalls)
}

func TestAPI_GenerateError(t *testing.T) {
	model := &fakeModel{
		identify: text("Eggs"),
		generate: func(string) (*llm.Response, error) { return nil, errors.New("unavailable") },
	}
	rec := serve(newTestServer(model), uploadRequest(t, "/api/v1/suggestions", "fridge.png", pngBytes(t)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []any{"Eggs"}, body["ingredients"])
	assert.Contains(t, body["hint"], "test-model")
}

func TestAPI_MissingFile(t *testing.T) {
	rec := serve(newTestServer(&fakeModel{}), uploadRequest(t, "/api/v1/suggestions", "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid upload")
}
