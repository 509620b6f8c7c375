package httputil

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ethereum/go-ethereum/log"
)

const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID returns the request id attached by WithRequestLogging, or an empty string.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestLogging tags each request with an id (reusing a well-formed
// X-Request-Id from the client) and logs one line per completed request.
func WithRequestLogging(logger log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)

		start := time.Now()
		ww := NewWrappedResponseWriter(w)
		next.ServeHTTP(ww, r.WithContext(ctx))

		lvl := log.LevelDebug
		if ww.StatusCode >= http.StatusInternalServerError {
			lvl = log.LevelWarn
		}
		logger.Log(lvl, "Served HTTP request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.StatusCode,
			"bytes", ww.ResponseLen,
			"remote", r.RemoteAddr,
			"duration", time.Since(start))
	})
}
