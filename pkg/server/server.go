// Package server runs the emulator's listener fleet: one HTTP server per
// registered service on its own port, plus the admin listener serving health
// and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stratuslocal/stratus/internal/logger"
	"github.com/stratuslocal/stratus/internal/telemetry"
	"github.com/stratuslocal/stratus/pkg/metrics"
	"github.com/stratuslocal/stratus/pkg/registry"
)

// Server owns the HTTP servers for every registered service and the admin
// listener. Create it with New and run it with Serve.
type Server struct {
	reg             *registry.Registry
	adminPort       int
	shutdownTimeout time.Duration

	mu       sync.Mutex
	servers  []*http.Server
	stopOnce sync.Once
}

// New creates a server fleet for the registry. adminPort hosts /health and
// /metrics; shutdownTimeout caps graceful shutdown.
func New(reg *registry.Registry, adminPort int, shutdownTimeout time.Duration) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &Server{
		reg:             reg,
		adminPort:       adminPort,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve starts every listener and blocks until the context is cancelled or a
// listener fails. On cancellation it shuts all servers down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	services := s.reg.Services()
	errChan := make(chan error, len(services)+1)

	s.mu.Lock()
	for _, svc := range services {
		hs := &http.Server{
			Addr:              fmt.Sprintf(":%d", svc.Port),
			Handler:           traced(svc.Name, svc.Handler),
			ReadHeaderTimeout: 10 * time.Second,
		}
		s.servers = append(s.servers, hs)
		go func(name string, hs *http.Server) {
			logger.Info("service listening", "service", name, "addr", hs.Addr)
			if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("%s listener failed: %w", name, err)
			}
		}(svc.Name, hs)
	}

	admin := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.adminPort),
		Handler:           s.adminRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.servers = append(s.servers, admin)
	s.mu.Unlock()

	go func() {
		logger.Info("admin listening", "addr", admin.Addr)
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("admin listener failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		_ = s.Stop(shutdownCtx)
		return err
	}
}

// Stop shuts down every listener. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var firstErr error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		servers := s.servers
		s.mu.Unlock()

		for _, hs := range servers {
			if err := hs.Shutdown(ctx); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("shutdown %s: %w", hs.Addr, err)
			}
		}
		if firstErr == nil {
			logger.Info("all listeners stopped")
		}
	})
	return firstErr
}

// adminRouter serves liveness, readiness, the per-service health snapshot,
// and Prometheus metrics.
func (s *Server) adminRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ready"})
	})
	r.Get("/health/services", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.reg.Health())
	})
	r.Handle("/metrics", metrics.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// traced wraps a service handler in a server span. Request metrics are
// recorded inside the wire handlers where the action name is known.
func traced(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := telemetry.StartServiceSpan(r.Context(), service, r.Method, r.URL.Path,
			telemetry.ClientAddr(r.RemoteAddr))
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
