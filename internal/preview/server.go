package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sitesmith/internal/logfields"
)

// Server serves a generated site directory.
type Server struct {
	Dir string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	Status  *Status
	Logger  *slog.Logger

	srv *http.Server
	ln  net.Listener
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.Dir)))
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics)
	}
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := s.Status
	if status == nil {
		status = &Status{}
	}
	lastErr, good := status.Get()
	body := map[string]any{"healthy": lastErr == nil, "has_good_build": good}
	code := http.StatusOK
	if lastErr != nil {
		body["error"] = lastErr.Error()
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// Start binds addr and serves in the background. It returns once the
// listener is bound.
func (s *Server) Start(addr string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Preview server error", logfields.Error(err))
		}
	}()
	logger.Info("Preview server listening", logfields.URL("http://"+ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
