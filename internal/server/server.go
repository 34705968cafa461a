// Package server exposes the generate/prune/delete operations over
// HTTP. Prune streams its progress as server-sent events; everything
// else is plain JSON.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"adforge/internal/creative"
	"adforge/internal/generator"
	"adforge/internal/pruning"
	"adforge/internal/scoring"
)

// Store is the persistence surface the handlers consume. Implemented
// by internal/store.
type Store interface {
	generator.ComponentStore
	generator.CombinationWriter
	pruning.CombinationStore
	pruning.ComponentResolver
	BulkDelete(ctx context.Context, ids []string) (int, error)
	CountByAdSet(ctx context.Context, adsetID string) (int, error)
}

// Server wires the handlers to their dependencies.
type Server struct {
	store      Store
	generator  *generator.Generator
	oracle     scoring.Oracle
	logger     *zap.Logger
	minScore   int
	itemTO     time.Duration
	eventBuf   int
	httpServer *http.Server
}

// Options configures a Server.
type Options struct {
	Addr            string
	DefaultMinScore int
	ItemTimeout     time.Duration
	EventBuffer     int
}

// New builds a Server and its route table.
func New(store Store, oracle scoring.Oracle, logger *zap.Logger, opts Options) *Server {
	if opts.DefaultMinScore <= 0 {
		opts.DefaultMinScore = pruning.DefaultMinScore
	}
	if opts.ItemTimeout <= 0 {
		opts.ItemTimeout = pruning.DefaultItemTimeout
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 64
	}

	s := &Server{
		store:     store,
		generator: generator.New(store, store),
		oracle:    oracle,
		logger:    logger,
		minScore:  opts.DefaultMinScore,
		itemTO:    opts.ItemTimeout,
		eventBuf:  opts.EventBuffer,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/adsets/{id}/combinations", s.handleListCombinations)
	mux.HandleFunc("POST /api/adsets/{id}/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/adsets/{id}/prune", s.handlePrune)
	mux.HandleFunc("DELETE /api/combinations/{id}", s.handleDeleteCombination)
	mux.HandleFunc("POST /api/combinations/bulk-delete", s.handleBulkDelete)

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.withRequestLog(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route table, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// withRequestLog logs one line per request.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	var (
		emptySel   *creative.EmptySelectionError
		invalidSel *creative.InvalidSelectionError
	)
	switch {
	case errors.As(err, &emptySel), errors.As(err, &invalidSel):
		return http.StatusBadRequest
	case errors.Is(err, creative.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, creative.ErrDeployedImmutable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
