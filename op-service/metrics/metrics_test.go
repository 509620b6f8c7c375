package metrics

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type codedErr struct{}

func (codedErr) Error() string  { return "execution reverted" }
func (codedErr) ErrorCode() int { return -32000 }

func TestRPCClientMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	factory := With(registry)
	m := MakeRPCClientMetrics("test", factory)

	m.RecordRPCClientRequest("eth_gasPrice")(nil)
	m.RecordRPCClientRequest("eth_gasPrice")(codedErr{})
	m.RecordRPCClientRequest("eth_chainId")(errors.New("connection refused"))

	c := NewMetricChecker(t, registry)
	reqs := c.FindByName("test_rpc_client_requests_total").FindByLabels(map[string]string{"method": "eth_gasPrice"})
	require.Equal(t, 2.0, reqs.Counter.GetValue())

	resps := c.FindByName("test_rpc_client_responses_total")
	require.Equal(t, 1.0, resps.FindByLabels(map[string]string{"method": "eth_gasPrice", "error": "<nil>"}).Counter.GetValue())
	require.Equal(t, 1.0, resps.FindByLabels(map[string]string{"method": "eth_gasPrice", "error": "rpc_-32000"}).Counter.GetValue())
	require.Equal(t, 1.0, resps.FindByLabels(map[string]string{"method": "eth_chainId", "error": "<non-rpc-error>"}).Counter.GetValue())

	docs := factory.Document()
	require.Len(t, docs, 3)
	require.Equal(t, "test_rpc_client_request_duration_seconds", docs[1].Name)
	require.Equal(t, "histogram", docs[1].Type)
	require.Equal(t, []string{"method", "error"}, docs[2].Labels)
}

func TestStartServer(t *testing.T) {
	registry := NewRegistry()
	With(registry).NewCounter(prometheus.CounterOpts{Namespace: "test", Name: "hits_total", Help: "hits"}).Add(3)

	srv, err := StartServer(registry, "127.0.0.1", 0)
	require.NoError(t, err)
	defer func() { require.NoError(t, srv.Close()) }()

	resp, err := http.Get(srv.HTTPEndpoint() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "test_hits_total 3")
	require.Contains(t, string(body), "go_goroutines")
}

func TestCLIConfigCheck(t *testing.T) {
	cfg := DefaultCLIConfig()
	require.NoError(t, cfg.Check())
	cfg.Enabled = true
	require.NoError(t, cfg.Check())
	for _, port := range []int{-1, 65536} {
		cfg.ListenPort = port
		require.ErrorIs(t, cfg.Check(), ErrInvalidPort, strconv.Itoa(port))
	}
	cfg.Enabled = false
	require.NoError(t, cfg.Check())
}
