package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"gocloud.dev/server/requestlog"
)

// Greeting is the body served on GET /.
const Greeting = "Hello, Client!!. I am Server"

// Options configures a Server.
type Options struct {
	// Logger receives the startup line and lifecycle events.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// AccessLog, when non-nil, receives one NCSA common log line per request.
	AccessLog io.Writer
}

// Server serves the greeting over HTTP.
type Server struct {
	handler http.Handler
	server  *http.Server
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a server with its own mux. Only GET / is routed; the mux
// answers everything else with 404, or 405 for other methods on /.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger: logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.greet)

	var h http.Handler = mux
	if opts.AccessLog != nil {
		h = requestlog.NewHandler(requestlog.NewNCSALogger(opts.AccessLog, func(err error) {
			s.logger.Error("access log write failed", "error", err)
		}), mux)
	}

	s.handler = h
	s.server = &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenTCP binds addr and serves until Shutdown. A bind failure is returned
// before anything is logged.
func (s *Server) ListenTCP(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve announces ln and serves on it until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	port := 0
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	s.logger.Info(fmt.Sprintf("Server is running at http://localhost:%d", port), "port", port)

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address, or nil before the server is listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) greet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, Greeting)
}
