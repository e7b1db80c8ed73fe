// Package server exposes the question answering chain over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/time/rate"

	"pdfchat/internal/config"
	"pdfchat/internal/domain"
	"pdfchat/internal/service"
)

// Chain is the subset of service.ChainManager the handlers need.
type Chain interface {
	Ask(ctx context.Context, question string) (service.Answer, error)
	RetrieveDocuments(ctx context.Context, question string) (domain.ParsedContext, error)
}

type Server struct {
	chain   Chain
	cfg     config.ServerConfig
	logger  arbor.ILogger
	md      goldmark.Markdown
	engine  *gin.Engine
	version string
}

func New(chain Chain, cfg config.ServerConfig, version string, logger arbor.ILogger) *Server {
	s := &Server{
		chain:   chain,
		cfg:     cfg,
		logger:  logger,
		version: version,
		md:      goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify)),
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware(logger))
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "X-Request-Id"},
		ExposeHeaders:   []string{"X-Request-Id"},
		MaxAge:          12 * time.Hour,
	}))
	s.RegisterRoutes(engine)
	s.engine = engine
	return s
}

// RegisterRoutes attaches the health and question endpoints.
func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", s.health)
	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	if s.cfg.RateLimitRPS > 0 {
		burst := s.cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		api.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), burst)))
	}
	api.POST("/ask", s.ask)
	api.POST("/retrieve", s.retrieve)
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}
