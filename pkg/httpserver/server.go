package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/apptrack/pkg/logger"
)

// Server runs an http.Handler until its context ends or the process receives
// SIGINT/SIGTERM, then drains in-flight requests.
type Server struct {
	opts options

	mu    sync.Mutex
	srv   *http.Server
	addr  net.Addr
	ready chan struct{}
}

// New returns a Server listening on 127.0.0.1:8080 unless configured otherwise.
func New(opts ...Option) *Server {
	o := options{
		addr:            "127.0.0.1:8080",
		readTimeout:     10 * time.Second,
		writeTimeout:    10 * time.Second,
		shutdownTimeout: 5 * time.Second,
		log:             logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{opts: o, ready: make(chan struct{})}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or nil before Ready is closed.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run serves handler and blocks until shutdown completes. A Server runs once.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	ln, err := net.Listen("tcp", s.opts.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrStart, err)
	}
	s.srv = &http.Server{
		Handler:      handler,
		ReadTimeout:  s.opts.readTimeout,
		WriteTimeout: s.opts.writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.addr = ln.Addr()
	s.mu.Unlock()
	close(s.ready)

	s.opts.log.InfoContext(ctx, "http server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(ln) }()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%w: %w", ErrStart, err)
		}
		return nil
	case <-sigCtx.Done():
	}

	shutdownErr := s.Shutdown(context.WithoutCancel(ctx))
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(fmt.Errorf("%w: %w", ErrStart, err), shutdownErr)
	}
	return shutdownErr
}

// Shutdown drains the server within the configured shutdown timeout.
// Calling it before Run or more than once is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.opts.log.ErrorContext(ctx, "http server shutdown failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrShutdown, err)
	}
	s.opts.log.InfoContext(ctx, "http server stopped")
	return nil
}
