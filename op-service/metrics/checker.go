package metrics

import (
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	gocl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// MetricFamilyChecker searches the series of one gathered metric family.
type MetricFamilyChecker struct {
	fam *gocl.MetricFamily
	t   require.TestingT
}

func hasAllLabels(m *gocl.Metric, labels map[string]string) bool {
	for k, v := range labels {
		found := false
		for _, lab := range m.Label {
			if lab.GetName() == k && lab.GetValue() == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FindByLabels returns the single series carrying all the given labels, failing the test otherwise.
func (f *MetricFamilyChecker) FindByLabels(labels map[string]string) *gocl.Metric {
	var found *gocl.Metric
	for _, m := range f.fam.Metric {
		if hasAllLabels(m, labels) {
			require.Nil(f.t, found, "labels %v match more than one series of %s", labels, f.fam.GetName())
			found = m
		}
	}
	require.NotNil(f.t, found, "no series of %s with labels %v", f.fam.GetName(), labels)
	return found
}

// Len returns the number of series in the family.
func (f *MetricFamilyChecker) Len() int {
	return len(f.fam.Metric)
}

type MetricFamiliesChecker struct {
	families []*gocl.MetricFamily
	t        require.TestingT
}

// FindByName returns the family with the given full name, failing the test if it is absent.
func (m *MetricFamiliesChecker) FindByName(name string) *MetricFamilyChecker {
	var found *gocl.MetricFamily
	for _, f := range m.families {
		if f.GetName() == name {
			found = f
			break
		}
	}
	require.NotNil(m.t, found, "no metric family named %s", name)
	return &MetricFamilyChecker{fam: found, t: m.t}
}

// Has reports whether a family with the given name was gathered.
func (m *MetricFamiliesChecker) Has(name string) bool {
	for _, f := range m.families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}

// Dump renders the gathered families as indented JSON, for debugging.
func (m *MetricFamiliesChecker) Dump() string {
	outStr, _ := json.MarshalIndent(m.families, "  ", "  ")
	return string(outStr)
}

// NewMetricChecker gathers the registry once, for assertions in tests.
func NewMetricChecker(t require.TestingT, reg *prometheus.Registry) *MetricFamiliesChecker {
	families, err := reg.Gather()
	require.NoError(t, err, "must gather metrics")
	return &MetricFamiliesChecker{families: families, t: t}
}
