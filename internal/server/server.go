// Package server exposes the loaded dataset and its query views over
// HTTP. The dataset is held behind a read lock and swapped whole on
// reload, so in-flight queries always see one consistent snapshot.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/popvault/popdash/internal/config"
	"github.com/popvault/popdash/internal/pipeline"
	"github.com/popvault/popdash/internal/snapshot"
)

// Server serves dataset and query endpoints over a loaded snapshot.
type Server struct {
	cfg    config.ServerConfig
	query  config.QueryConfig
	runner *pipeline.Runner

	mu sync.RWMutex
	ds *snapshot.Dataset
}

// New creates a Server around an initial dataset. Reloads go through
// the runner and swap the dataset in one step.
func New(cfg config.ServerConfig, query config.QueryConfig, runner *pipeline.Runner, ds *snapshot.Dataset) *Server {
	return &Server{cfg: cfg, query: query, runner: runner, ds: ds}
}

func (s *Server) dataset() *snapshot.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

func (s *Server) swap(ds *snapshot.Dataset) {
	s.mu.Lock()
	s.ds = ds
	s.mu.Unlock()
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/dataset", s.handleDataset)
		r.Get("/query", s.handleQuery)
		r.Post("/reload", s.handleReload)
	})

	return r
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zap.L().Info("server: listening", zap.Int("port", s.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		zap.L().Info("server: shutting down")

		timeout := time.Duration(s.cfg.ShutdownTimeoutSecs) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server: shutdown")
		}
		return nil
	})

	return g.Wait()
}
