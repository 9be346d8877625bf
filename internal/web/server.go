package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/raine/recipe-suggester/internal/llm"
	"github.com/raine/recipe-suggester/internal/recipe"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 5 * time.Second

// maxRequestSize leaves room for multipart overhead around the image.
const maxRequestSize = recipe.MaxImageSize + 1024*1024

// Suggester runs the recipe pipeline for one image.
type Suggester interface {
	Suggest(ctx context.Context, img llm.Image) (*recipe.Suggestion, error)
	ModelName() string
}

// Server serves the upload page and the JSON API.
type Server struct {
	router    *gin.Engine
	http      *http.Server
	suggester Suggester
}

// NewServer creates a server listening on addr.
func NewServer(addr string, suggester Suggester) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), limitBody(maxRequestSize))
	router.MaxMultipartMemory = maxRequestSize
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	s := &Server{
		router:    router,
		suggester: suggester,
	}

	router.GET("/", s.index)
	router.POST("/", s.upload)
	router.GET("/healthz", s.health)

	v1 := router.Group("/api/v1")
	v1.Use(cors.Default())
	{
		v1.POST("/suggestions", s.createSuggestion)
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("http server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
