// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/epochfarm/farm/log"
)

const namespace = "farm_metrics"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics installs the prometheus backend as the
// process-wide metrics service. Once installed it cannot be reset.
func InitializePrometheusMetrics() {
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics()
	}
}

type prometheusMetrics struct {
	counters    sync.Map
	counterVecs sync.Map
	gauges      sync.Map
	gaugeVecs   sync.Map
	histograms  sync.Map
}

func newPrometheusMetrics() Metrics {
	return &prometheusMetrics{}
}

func (p *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	item, ok := p.counters.Load(name)
	if !ok {
		item, _ = p.counters.LoadOrStore(name, p.newCountMeter(name))
	}
	return item.(CountMeter)
}

func (p *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	item, ok := p.counterVecs.Load(name)
	if !ok {
		item, _ = p.counterVecs.LoadOrStore(name, p.newCountVecMeter(name, labels))
	}
	return item.(CountVecMeter)
}

func (p *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	item, ok := p.gauges.Load(name)
	if !ok {
		item, _ = p.gauges.LoadOrStore(name, p.newGaugeMeter(name))
	}
	return item.(GaugeMeter)
}

func (p *prometheusMetrics) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	item, ok := p.gaugeVecs.Load(name)
	if !ok {
		item, _ = p.gaugeVecs.LoadOrStore(name, p.newGaugeVecMeter(name, labels))
	}
	return item.(GaugeVecMeter)
}

func (p *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	item, ok := p.histograms.Load(name)
	if !ok {
		item, _ = p.histograms.LoadOrStore(name, p.newHistogramMeter(name, buckets))
	}
	return item.(HistogramMeter)
}

func (p *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

func register(c prometheus.Collector, name string) {
	if err := prometheus.Register(c); err != nil {
		logger.Warn("unable to register metric", "name", name, "error", err)
	}
}

func (p *prometheusMetrics) newCountMeter(name string) CountMeter {
	meter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	})
	register(meter, name)
	return &promCountMeter{meter}
}

func (p *prometheusMetrics) newCountVecMeter(name string, labels []string) CountVecMeter {
	meter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
	}, labels)
	register(meter, name)
	return &promCountVecMeter{meter}
}

func (p *prometheusMetrics) newGaugeMeter(name string) GaugeMeter {
	meter := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
	})
	register(meter, name)
	return &promGaugeMeter{meter}
}

func (p *prometheusMetrics) newGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	meter := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
	}, labels)
	register(meter, name)
	return &promGaugeVecMeter{meter}
}

func (p *prometheusMetrics) newHistogramMeter(name string, buckets []int64) HistogramMeter {
	floatBuckets := make([]float64, 0, len(buckets))
	for _, bucket := range buckets {
		floatBuckets = append(floatBuckets, float64(bucket))
	}
	meter := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Buckets:   floatBuckets,
	})
	register(meter, name)
	return &promHistogramMeter{meter}
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (g *promGaugeMeter) Add(i int64) {
	g.gauge.Add(float64(i))
}

func (g *promGaugeMeter) Set(i int64) {
	g.gauge.Set(float64(i))
}

type promGaugeVecMeter struct {
	gauge *prometheus.GaugeVec
}

func (g *promGaugeVecMeter) AddWithLabel(i int64, labels map[string]string) {
	g.gauge.With(labels).Add(float64(i))
}

func (g *promGaugeVecMeter) SetWithLabel(i int64, labels map[string]string) {
	g.gauge.With(labels).Set(float64(i))
}

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (h *promHistogramMeter) Observe(i int64) {
	h.histogram.Observe(float64(i))
}
