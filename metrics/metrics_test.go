// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := Gatherer().Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestNoopAndLazy(t *testing.T) {
	var m Metrics = noopMetrics{}
	backend.Store(&m)

	assert.IsType(t, noopMeter{}, Gauge("g"))
	assert.IsType(t, noopMeter{}, CounterVec("c", nil))
	assert.Nil(t, HTTPHandler())
	assert.Nil(t, Gatherer())

	lazy := LazyLoadGauge("lazy_gauge")
	lazyVec := LazyLoadCounterVec("lazy_counter", []string{"kind"})

	InitializePrometheusMetrics()
	assert.IsType(t, promGauge{}, lazy())
	assert.IsType(t, promCounterVec{}, lazyVec())
}

func TestPrometheus(t *testing.T) {
	var m Metrics = noopMetrics{}
	backend.Store(&m)
	InitializePrometheusMetrics()

	Counter("calls").Add(2)
	Counter("calls").Add(3)
	Gauge("round").Set(7)
	GaugeVec("stake", []string{"kind"}).SetWithLabel(10, map[string]string{"kind": "collators"})
	GaugeVec("stake", []string{"kind"}).SetWithLabel(4, map[string]string{"kind": "delegators"})
	h := HistogramVec("duration", []string{"route"}, BucketHTTPReqs)
	h.ObserveWithLabels(5, map[string]string{"route": "a"})
	h.ObserveWithLabels(15, map[string]string{"route": "a"})

	got := gather(t)
	assert.Equal(t, float64(5), got["parastaking_calls"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(7), got["parastaking_round"].Metric[0].GetGauge().GetValue())
	assert.Len(t, got["parastaking_stake"].Metric, 2)
	assert.Equal(t, float64(20), got["parastaking_duration"].Metric[0].GetHistogram().GetSampleSum())
	assert.Equal(t, uint64(2), got["parastaking_duration"].Metric[0].GetHistogram().GetSampleCount())

	rec := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "parastaking_round 7")
}
