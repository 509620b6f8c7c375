package httputil

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// DefaultTimeouts are applied to every server, before any HTTPOption runs.
var DefaultTimeouts = rpc.DefaultHTTPTimeouts

type config struct {
	// listenAddr is the configured address to listen to when started.
	// use listener.Addr to retrieve the address when online.
	listenAddr string

	handler http.Handler

	httpOpts []HTTPOption
}

func (c *config) ApplyOptions(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Option is a general config option.
type Option func(cfg *config)

// HTTPOption applies a change to an HTTP server, just before standup.
// It re-runs for each new underlying *http.Server on a restart.
type HTTPOption func(config *http.Server) error

func WithHTTPOptions(options ...HTTPOption) Option {
	return func(cfg *config) {
		cfg.httpOpts = append(cfg.httpOpts, options...)
	}
}

func WithMaxHeaderBytes(max int) HTTPOption {
	return func(srv *http.Server) error {
		srv.MaxHeaderBytes = max
		return nil
	}
}

// WithWriteTimeout overrides the write timeout. Handlers that wait on
// upstream RPC calls need it to be longer than their own deadline.
func WithWriteTimeout(d time.Duration) HTTPOption {
	return func(srv *http.Server) error {
		srv.WriteTimeout = d
		return nil
	}
}
