// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vizserver exposes the analysis pipeline over HTTP: upload a
// dataset with a question, get back chart URLs servable as SVG or PNG.
package vizserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/teradata-labs/vizflow/pkg/dataset"
	"github.com/teradata-labs/vizflow/pkg/pipeline"
)

// Analyzer runs one analysis. *pipeline.Pipeline satisfies it; tests
// substitute their own.
type Analyzer interface {
	Run(ctx context.Context, ds *dataset.Dataset, question string) (*pipeline.Result, error)
}

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Analyzer runs uploads through the prompt chain. Required.
	Analyzer Analyzer

	// MaxUploadBytes caps dataset uploads. Default: 32 MiB.
	MaxUploadBytes int64

	// AnalysisTimeout bounds one full chain run. Default: 5m.
	AnalysisTimeout time.Duration

	// MaxStoredAnalyses caps the in-memory store.
	MaxStoredAnalyses int

	// AllowedOrigins for CORS. Empty allows any origin, which suits the
	// local single-user deployment this serves.
	AllowedOrigins []string

	Logger *zap.Logger
}

// Server is the HTTP front end.
type Server struct {
	config   Config
	store    *Store
	analyzer Analyzer
	logger   *zap.Logger
	http     *http.Server
}

// New creates a server. Config.Analyzer is required.
func New(cfg Config) (*Server, error) {
	if cfg.Analyzer == nil {
		return nil, errors.New("server requires an analyzer")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	s := &Server{
		config:   cfg,
		store:    NewStore(cfg.MaxStoredAnalyses),
		analyzer: cfg.Analyzer,
		logger:   cfg.Logger,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Routes builds the router. Exposed for httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.AnalysisTimeout + 30*time.Second))

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyses", s.handleCreateAnalysis)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Get("/analyses/{id}/charts/{n:[0-9]+}.svg", s.handleChartSVG)
		r.Get("/analyses/{id}/charts/{n:[0-9]+}.png", s.handleChartPNG)
	})
	return r
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.config.Addr))
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
