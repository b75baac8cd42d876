package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/permflow/engine/internal/logger"
	apiauth "github.com/permflow/engine/pkg/api/auth"
	"github.com/permflow/engine/pkg/api/handlers"
	"github.com/permflow/engine/pkg/catalogue/store"
	"github.com/permflow/engine/pkg/requests"
)

// Server is the HTTP control surface: an http.Server wrapping NewRouter
// with graceful shutdown, grounded on the teacher's controlplane API
// server lifecycle.
type Server struct {
	httpServer   *http.Server
	port         int
	shutdownOnce sync.Once
}

// NewServer constructs the API server. The JWT service is built here from
// cfg.JWT so callers only need the top-level Config plus the runtime
// collaborators it fronts.
func NewServer(cfg Config, s store.Store, engine *requests.Engine, admin handlers.AdminCredentials) (*Server, error) {
	tokens, err := apiauth.NewService(apiauth.Config{
		Secret: cfg.JWT.Secret,
		Issuer: "accessreq",
		TTL:    cfg.JWT.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("create token service: %w", err)
	}

	router := NewRouter(s, engine, tokens, admin)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		port: cfg.Port,
	}, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("API server failed: %w", err)
	}
}

func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown: %w", err)
			logger.Error("API server shutdown error", "error", err)
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}
