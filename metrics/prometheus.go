// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vechain/parastaking/log"
)

const namespace = "parastaking"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the backend to prometheus. Meters
// created before the switch stay no-op. Calling it twice keeps the first registry.
func InitializePrometheusMetrics() {
	if _, ok := current().(*prometheusMetrics); ok {
		return
	}
	var m Metrics = newPrometheusMetrics()
	backend.Store(&m)
}

// Gatherer exposes the registry of the prometheus backend, nil otherwise.
func Gatherer() prometheus.Gatherer {
	if p, ok := current().(*prometheusMetrics); ok {
		return p.registry
	}
	return nil
}

type prometheusMetrics struct {
	registry *prometheus.Registry
	mu       sync.Mutex
	meters   map[string]any
}

func newPrometheusMetrics() *prometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &prometheusMetrics{registry: reg, meters: make(map[string]any)}
}

// getOrCreate returns the meter registered under name, building it with mk
// on first use. A name reused with another meter kind panics in the type assertion
// of the caller, which is a programming error.
func (p *prometheusMetrics) getOrCreate(name string, mk func() (prometheus.Collector, any)) any {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.meters[name]; ok {
		return m
	}
	c, m := mk()
	if err := p.registry.Register(c); err != nil {
		logger.Warn("unable to register metric", "name", name, "err", err)
	}
	p.meters[name] = m
	return m
}

func floatBuckets(buckets []int64) []float64 {
	if len(buckets) == 0 {
		return nil
	}
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = float64(b)
	}
	return out
}

func (p *prometheusMetrics) Counter(name string) CountMeter {
	return p.getOrCreate(name, func() (prometheus.Collector, any) {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		return c, promCounter{c}
	}).(CountMeter)
}

func (p *prometheusMetrics) CounterVec(name string, labels []string) CountVecMeter {
	return p.getOrCreate(name, func() (prometheus.Collector, any) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		return c, promCounterVec{c}
	}).(CountVecMeter)
}

func (p *prometheusMetrics) Gauge(name string) GaugeMeter {
	return p.getOrCreate(name, func() (prometheus.Collector, any) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		return g, promGauge{g}
	}).(GaugeMeter)
}

func (p *prometheusMetrics) GaugeVec(name string, labels []string) GaugeVecMeter {
	return p.getOrCreate(name, func() (prometheus.Collector, any) {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
		return g, promGaugeVec{g}
	}).(GaugeVecMeter)
}

func (p *prometheusMetrics) Histogram(name string, buckets []int64) HistogramMeter {
	return p.getOrCreate(name, func() (prometheus.Collector, any) {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		})
		return h, promHistogram{h}
	}).(HistogramMeter)
}

func (p *prometheusMetrics) HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return p.getOrCreate(name, func() (prometheus.Collector, any) {
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		}, labels)
		return h, promHistogramVec{h}
	}).(HistogramVecMeter)
}

func (p *prometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

type promCounter struct{ c prometheus.Counter }

func (m promCounter) Add(i int64) { m.c.Add(float64(i)) }

type promCounterVec struct{ c *prometheus.CounterVec }

func (m promCounterVec) AddWithLabel(i int64, labels map[string]string) {
	m.c.With(labels).Add(float64(i))
}

type promGauge struct{ g prometheus.Gauge }

func (m promGauge) Add(i int64) { m.g.Add(float64(i)) }
func (m promGauge) Set(i int64) { m.g.Set(float64(i)) }

type promGaugeVec struct{ g *prometheus.GaugeVec }

func (m promGaugeVec) AddWithLabel(i int64, labels map[string]string) {
	m.g.With(labels).Add(float64(i))
}

func (m promGaugeVec) SetWithLabel(i int64, labels map[string]string) {
	m.g.With(labels).Set(float64(i))
}

type promHistogram struct{ h prometheus.Histogram }

func (m promHistogram) Observe(i int64) { m.h.Observe(float64(i)) }

type promHistogramVec struct{ h *prometheus.HistogramVec }

func (m promHistogramVec) ObserveWithLabels(i int64, labels map[string]string) {
	m.h.With(labels).Observe(float64(i))
}
