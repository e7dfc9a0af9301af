package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"kvstore/internal/platform/config"
	"kvstore/internal/platform/server/handler/dbentry"
	"kvstore/internal/platform/server/handler/health"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Server struct {
	httpAddr string
	engine   *chi.Mux
	srv      *http.Server
	logger   *zap.SugaredLogger
}

func NewServer(cfg config.Config, entries *dbentry.DbEntryHandler, logger *zap.SugaredLogger) *Server {
	url := fmt.Sprintf("%s:%d", cfg.HttpHost, cfg.ServerPort)
	s := &Server{
		engine:   chi.NewRouter(),
		httpAddr: url,
		logger:   logger,
	}
	s.engine.Use(middleware.RequestID)
	// chi's default logger writes to stdout, which carries command replies
	s.engine.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(logger.Desugar()),
		NoColor: true,
	}))
	s.engine.Use(middleware.Recoverer)
	s.registerRoutes(entries)
	s.srv = &http.Server{Addr: s.httpAddr, Handler: s.engine}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks until the server stops. A shutdown through Close is not an error.
func (s *Server) Run() error {
	s.logger.Infow("HTTP server running", "addr", s.httpAddr)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) registerRoutes(entries *dbentry.DbEntryHandler) {
	s.engine.Get("/health", health.CheckHandler)
	s.engine.Get("/stats", entries.Stats)
	s.engine.Get("/db", entries.ListEntries)
	s.engine.Get("/db/{key}", entries.GetEntry)
	s.engine.Post("/db/{key}", entries.SaveEntry)
}
