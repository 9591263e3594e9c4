package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/ukaji3/jsonsheet-go/internal/config"
	"github.com/ukaji3/jsonsheet-go/internal/handler"
	"github.com/ukaji3/jsonsheet-go/internal/router"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet"
)

// Server serves one conversion session over HTTP.
type Server struct {
	httpServer *http.Server
	session    *jsonsheet.Session
	logger     *log.Logger
}

// New wires a session, its handlers and the router into an HTTP server.
func New(cfg *config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	opts := cfg.SessionOptions()
	opts.Logger = logger
	session := jsonsheet.NewSession(opts)

	r := router.Setup(
		handler.NewSessionHandler(session),
		handler.NewStateStreamHandler(session),
		cfg.Server.MaxUploadMB<<20,
		logger,
	)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		session: session,
		logger:  logger,
	}
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens and serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Printf("server: listening on %s (session %s)", s.httpServer.Addr, s.session.ID())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and cancels any running session work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.session.Clear()
	return s.httpServer.Shutdown(ctx)
}
