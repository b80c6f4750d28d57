// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// Metrics is implemented by the metric backends.
type Metrics interface {
	Counter(name string) CountMeter
	CounterVec(name string, labels []string) CountVecMeter
	Gauge(name string) GaugeMeter
	GaugeVec(name string, labels []string) GaugeVecMeter
	Histogram(name string, buckets []int64) HistogramMeter
	HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter
	Handler() http.Handler
}

var backend atomic.Pointer[Metrics]

func init() {
	var m Metrics = noopMetrics{}
	backend.Store(&m)
}

func current() Metrics { return *backend.Load() }

var BucketHTTPReqs = []int64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000}

// CountMeter only goes up.
type CountMeter interface {
	Add(int64)
}

type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter holds a value that can go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

type GaugeVecMeter interface {
	AddWithLabel(int64, map[string]string)
	SetWithLabel(int64, map[string]string)
}

type HistogramMeter interface {
	Observe(int64)
}

type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

func Counter(name string) CountMeter { return current().Counter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return current().CounterVec(name, labels)
}

func Gauge(name string) GaugeMeter { return current().Gauge(name) }

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return current().GaugeVec(name, labels)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return current().Histogram(name, buckets)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return current().HistogramVec(name, labels, buckets)
}

// HTTPHandler serves the collected metrics, nil when metrics are disabled.
func HTTPHandler() http.Handler { return current().Handler() }

// LazyLoad defers creating a meter until first use, so meters declared as
// package variables bind to the backend enabled at startup.
func LazyLoad[T any](f func() T) func() T {
	var (
		once sync.Once
		v    T
	)
	return func() T {
		once.Do(func() { v = f() })
		return v
	}
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter { return GaugeVec(name, labels) })
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter { return Histogram(name, buckets) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}
