package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/testnet-faucet/op-service/testlog"
)

func TestWithRequestLogging(t *testing.T) {
	logger, logs := testlog.CaptureLogger(log.LevelDebug)
	var seenID string
	h := WithRequestLogging(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/kettle", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
		id := rec.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		require.Equal(t, id, seenID)

		rec2 := logs.FindLog(log.LevelDebug, "Served HTTP request")
		require.NotNil(t, rec2)
		require.Equal(t, "/kettle", rec2.Attrs["path"])
		require.EqualValues(t, http.StatusTeapot, rec2.Attrs["status"])
		require.EqualValues(t, len("short and stout"), rec2.Attrs["bytes"])
	})

	t.Run("keeps client id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, id)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, id, rec.Header().Get(RequestIDHeader))
		require.Equal(t, id, seenID)
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.NotEqual(t, "<script>", rec.Header().Get(RequestIDHeader))
	})
}

func TestWrappedResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWrappedResponseWriter(rec)
	require.Equal(t, http.StatusOK, w.StatusCode)
	w.WriteHeader(http.StatusAccepted)
	w.WriteHeader(http.StatusInternalServerError)
	n, err := w.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, http.StatusAccepted, w.StatusCode)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 3, w.ResponseLen)
	require.Same(t, rec, w.Unwrap())
}
