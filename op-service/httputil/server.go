package httputil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPServer wraps a http.Server, exposing its running state and bound address.
//
// Start brings it online; Stop, Shutdown and Close take it offline with decreasing gracefulness.
// A 0 port in the listen address binds to any free port, see Addr and HTTPEndpoint.
type HTTPServer struct {
	// mu guards bringing the server online/offline, and the listener.
	mu sync.RWMutex

	// nil while offline
	listener net.Listener

	srv *http.Server

	// BaseContext of the http.Server, cancelled on shutdown
	srvCtx    context.Context
	srvCancel context.CancelFunc

	config *config
}

// NewHTTPServer creates an inactive HTTPServer that serves the given handler.
func NewHTTPServer(addr string, handler http.Handler, opts ...Option) *HTTPServer {
	cfg := &config{
		listenAddr: addr,
		handler:    handler,
	}
	cfg.ApplyOptions(opts...)
	return &HTTPServer{config: cfg}
}

func StartHTTPServer(addr string, handler http.Handler, opts ...Option) (*HTTPServer, error) {
	out := NewHTTPServer(addr, handler, opts...)
	return out, out.Start()
}

// Start binds the listener and checks that the server does not fail right away.
func (s *HTTPServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return errors.New("already have existing server")
	}

	srvCtx, srvCancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler:           s.config.handler,
		ReadTimeout:       DefaultTimeouts.ReadTimeout,
		ReadHeaderTimeout: DefaultTimeouts.ReadHeaderTimeout,
		WriteTimeout:      DefaultTimeouts.WriteTimeout,
		IdleTimeout:       DefaultTimeouts.IdleTimeout,
		BaseContext: func(listener net.Listener) context.Context {
			return srvCtx
		},
	}
	for _, opt := range s.config.httpOpts {
		if err := opt(srv); err != nil {
			srvCancel()
			return fmt.Errorf("failed to apply HTTP option: %w", err)
		}
	}

	listener, err := net.Listen("tcp", s.config.listenAddr)
	if err != nil {
		srvCancel()
		return fmt.Errorf("failed to bind to address %q: %w", s.config.listenAddr, err)
	}
	s.listener = listener
	s.srv = srv
	s.srvCtx = srvCtx
	s.srvCancel = srvCancel

	// buffered, the serve goroutine must not block after a late failure
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	standupTimer := time.NewTimer(10 * time.Millisecond)
	defer standupTimer.Stop()
	select {
	case err := <-errCh:
		s.srvCancel()
		s.cleanup()
		return fmt.Errorf("http server failed: %w", err)
	case <-standupTimer.C:
		return nil
	}
}

func (s *HTTPServer) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.srv == nil
}

// Stop shuts down gracefully, and force-closes the remaining connections if ctx ends first.
// The ctx error is not returned when the force-close succeeds.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if err := s.Shutdown(ctx); err != nil {
		if errors.Is(err, ctx.Err()) {
			return s.Close()
		}
		return err
	}
	return nil
}

func (s *HTTPServer) cleanup() {
	s.srv = nil
	s.listener = nil
	s.srvCtx = nil
	s.srvCancel = nil
}

// Shutdown closes the listener and waits for active connections to finish, or for ctx to end.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	s.srvCancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	s.cleanup()
	return nil
}

// Close force-closes the listener and all active connections.
func (s *HTTPServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	s.srvCancel()
	if err := s.srv.Close(); err != nil {
		return err
	}
	s.cleanup()
	return nil
}

// Addr returns the bound address, or nil when offline.
func (s *HTTPServer) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// HTTPEndpoint returns the http:// endpoint the server is serving, or an empty string when offline.
func (s *HTTPServer) HTTPEndpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}
