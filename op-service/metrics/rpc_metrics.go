package metrics

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"
)

const RPCClientSubsystem = "rpc_client"

// RPCClientMetricer times outgoing JSON-RPC calls.
type RPCClientMetricer interface {
	RecordRPCClientRequest(method string) func(err error)
}

// RPCClientMetrics is meant to be embedded into a service metrics type.
type RPCClientMetrics struct {
	clientRequestsTotal          *prometheus.CounterVec
	clientRequestDurationSeconds *prometheus.HistogramVec
	clientResponsesTotal         *prometheus.CounterVec
}

var _ RPCClientMetricer = (*RPCClientMetrics)(nil)

// MakeRPCClientMetrics creates the RPC client metrics under the given namespace.
func MakeRPCClientMetrics(ns string, factory Factory) RPCClientMetrics {
	return RPCClientMetrics{
		clientRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: RPCClientSubsystem,
			Name:      "requests_total",
			Help:      "Total RPC requests initiated",
		}, []string{
			"method",
		}),
		clientRequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: RPCClientSubsystem,
			Name:      "request_duration_seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			Help:      "Histogram of RPC client request durations",
		}, []string{
			"method",
		}),
		clientResponsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: RPCClientSubsystem,
			Name:      "responses_total",
			Help:      "Total RPC request responses received",
		}, []string{
			"method",
			"error",
		}),
	}
}

// RecordRPCClientRequest counts a request and returns a callback that records
// its duration and outcome. JSON-RPC error objects are labeled by code.
func (m *RPCClientMetrics) RecordRPCClientRequest(method string) func(err error) {
	m.clientRequestsTotal.WithLabelValues(method).Inc()
	timer := prometheus.NewTimer(m.clientRequestDurationSeconds.WithLabelValues(method))
	return func(err error) {
		m.clientResponsesTotal.WithLabelValues(method, rpcErrorLabel(err)).Inc()
		timer.ObserveDuration()
	}
}

func rpcErrorLabel(err error) string {
	if err == nil {
		return "<nil>"
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fmt.Sprintf("rpc_%d", rpcErr.ErrorCode())
	}
	return "<non-rpc-error>"
}

type NoopRPCClientMetrics struct{}

func (NoopRPCClientMetrics) RecordRPCClientRequest(method string) func(err error) {
	return func(err error) {}
}

var _ RPCClientMetricer = NoopRPCClientMetrics{}
