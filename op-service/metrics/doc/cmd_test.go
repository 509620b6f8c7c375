package doc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
)

func newTestApp(out *bytes.Buffer) *cli.App {
	f := metrics.With(prometheus.NewRegistry())
	f.NewCounterVec(prometheus.CounterOpts{Namespace: "svc", Name: "sent_total", Help: "Sent things"}, []string{"channel", "outcome"})
	f.NewGauge(prometheus.GaugeOpts{Namespace: "svc", Name: "up", Help: "Up"})
	app := cli.NewApp()
	app.Writer = out
	app.Commands = []*cli.Command{{Name: "doc", Subcommands: NewSubcommands(f)}}
	return app
}

func TestMetricsMarkdown(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestApp(&out).Run([]string{"app", "doc", "metrics"}))
	require.Contains(t, out.String(), "svc_sent_total")
	require.Contains(t, out.String(), "channel,outcome")
	require.Contains(t, out.String(), "gauge")
}

func TestMetricsJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestApp(&out).Run([]string{"app", "doc", "metrics", "--format", "json"}))
	var docs []metrics.DocumentedMetric
	require.NoError(t, json.Unmarshal(out.Bytes(), &docs))
	require.Len(t, docs, 2)
	require.Equal(t, "svc_up", docs[1].Name)
}

func TestMetricsBadFormat(t *testing.T) {
	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"app", "doc", "metrics", "--format", "yaml"})
	require.ErrorContains(t, err, "invalid format")
}
