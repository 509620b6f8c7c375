package metrics

import (
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	ftypes "github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	opmetrics "github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
)

const Namespace = "faucet"

type Metrics struct {
	ns       string
	registry *prometheus.Registry
	factory  opmetrics.Factory

	opmetrics.RPCClientMetrics

	totalFundingWei *prometheus.CounterVec
	totalRequests   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	gateWait      prometheus.Histogram
	nonce         prometheus.Gauge
	gasPrice      prometheus.Gauge
	balance       prometheus.Gauge
	claimFailures prometheus.Counter
	rateLimited   *prometheus.CounterVec

	info *prometheus.GaugeVec
	up   prometheus.Gauge
}

var _ Metricer = (*Metrics)(nil)

func NewMetrics(procName string) *Metrics {
	return newMetrics(procName, opmetrics.NewRegistry())
}

func newMetrics(procName string, registry *prometheus.Registry) *Metrics {
	if procName == "" {
		procName = "default"
	}
	ns := Namespace + "_" + procName

	factory := opmetrics.With(registry)
	return &Metrics{
		ns:       ns,
		registry: registry,
		factory:  factory,

		info: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "info",
			Help:      "Pseudo-metric tracking version and config info",
		}, []string{
			"version",
		}),
		up: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "up",
			Help:      "1 if the faucet has finished starting up",
		}),

		RPCClientMetrics: opmetrics.MakeRPCClientMetrics(ns, factory),

		totalFundingWei: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "funding_wei_total",
			Help:      "Total wei sent, by channel",
		}, []string{"channel"}),
		totalRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "requests_total",
			Help:      "Count of funding requests, by channel and outcome",
		}, []string{"channel", "outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "request_duration_seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			Help:      "Duration from request to broadcast",
		}, []string{"channel"}),
		gateWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "send_gate_wait_seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
			Help:      "Time spent waiting for the send gate",
		}),
		nonce: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "nonce",
			Help:      "Last pending nonce used for a funding tx",
		}),
		gasPrice: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "gas_price_wei",
			Help:      "Last gas price used for a funding tx",
		}),
		balance: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "balance_wei",
			Help:      "Last observed balance of the funding account",
		}),
		claimFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "claim_write_failures_total",
			Help:      "Broadcast transactions whose claim could not be recorded",
		}),
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"channel"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Document() []opmetrics.DocumentedMetric {
	return m.factory.Document()
}

// RecordInfo sets a pseudo-metric that contains versioning and config info.
func (m *Metrics) RecordInfo(version string) {
	m.info.WithLabelValues(version).Set(1)
}

func (m *Metrics) RecordUp() {
	m.up.Set(1)
}

func (m *Metrics) RecordFundAction(channel ftypes.Channel, amount eth.ETH) (onDone func(outcome string)) {
	timer := prometheus.NewTimer(m.requestDuration.WithLabelValues(channel.String()))
	return func(outcome string) {
		timer.ObserveDuration()
		m.totalRequests.WithLabelValues(channel.String(), outcome).Inc()
		if outcome == "success" {
			m.totalFundingWei.WithLabelValues(channel.String()).Add(amount.WeiFloat())
		}
	}
}

func (m *Metrics) RecordGateWait(d time.Duration) {
	m.gateWait.Observe(d.Seconds())
}

func (m *Metrics) RecordNonce(nonce uint64) {
	m.nonce.Set(float64(nonce))
}

func (m *Metrics) RecordGasPrice(wei *big.Int) {
	f, _ := new(big.Float).SetInt(wei).Float64()
	m.gasPrice.Set(f)
}

func (m *Metrics) RecordBalance(balance eth.ETH) {
	m.balance.Set(balance.WeiFloat())
}

func (m *Metrics) RecordClaimWriteFailure() {
	m.claimFailures.Inc()
}

func (m *Metrics) RecordRateLimited(channel ftypes.Channel) {
	m.rateLimited.WithLabelValues(channel.String()).Inc()
}
