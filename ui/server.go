package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"sentinel/internal"
	"sentinel/internal/profiling"
	"sentinel/ports"
	"sentinel/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed templates/*
var embeddedFiles embed.FS

// Config holds dashboard settings
type Config struct {
	GinMode        string
	DefaultMinRank int
	DefaultMaxRank int
}

// Server represents the web server for the dashboard
type Server struct {
	router    *gin.Engine
	source    ports.TableSource
	profiler  *profiling.Profiler
	templates *template.Template
	briefing  template.HTML
	config    Config
	logger    *internal.Logger
}

// NewServer creates a dashboard server reading tables from source
func NewServer(source ports.TableSource, config Config, logger *internal.Logger) (*Server, error) {
	if source == nil {
		return nil, fmt.Errorf("table source cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.DefaultMinRank < 1 {
		config.DefaultMinRank = 1
	}
	if config.DefaultMaxRank < config.DefaultMinRank {
		config.DefaultMaxRank = config.DefaultMinRank
	}
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}

	s := &Server{
		router:   gin.New(),
		source:   source,
		profiler: profiling.NewProfiler(),
		config:   config,
		logger:   logger.Named("Server"),
	}

	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s.templates = templates

	briefing, err := renderBriefing()
	if err != nil {
		return nil, err
	}
	s.briefing = briefing

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// renderBriefing converts the embedded methodology notes to HTML once
func renderBriefing() (template.HTML, error) {
	source, err := embeddedFiles.ReadFile("templates/briefing.md")
	if err != nil {
		return "", fmt.Errorf("failed to read briefing: %w", err)
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML(source, p, renderer)), nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	if s.logger.GetLevel() >= internal.LogLevelInfo {
		s.router.Use(gin.Logger())
	}
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/briefing", s.handleBriefing)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/countries", s.handleCountries)
	api.GET("/table", s.handleTable)
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/radar", s.handleRadar)
	api.GET("/profile", s.handleProfile)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting Global Sentinel on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// renderTemplate renders to a buffer first so a failing template never
// produces a truncated page
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
