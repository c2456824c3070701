// Package prometheus exports collection metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	users, err := docstore.New("users",
//	    docstore.WithMetricsCollector(promcollector.New(reg, promcollector.WithCollection("users"))),
//	)
package prometheus

import (
	"time"

	"github.com/hupe1980/docstore"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name. Defaults to "docstore".
	Namespace string
	// Collection is attached as a constant "collection" label when set.
	Collection string
	// Buckets are the latency histogram buckets in seconds.
	Buckets []float64
}

// Option configures a Collector.
type Option func(*Options)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(o *Options) { o.Namespace = ns }
}

// WithCollection labels all metrics with the collection name.
func WithCollection(name string) Option {
	return func(o *Options) { o.Collection = name }
}

// WithBuckets sets the latency histogram buckets.
func WithBuckets(buckets ...float64) Option {
	return func(o *Options) { o.Buckets = buckets }
}

// Collector implements docstore.MetricsCollector with Prometheus metrics.
type Collector struct {
	operations *prom.CounterVec
	documents  *prom.CounterVec
	latency    *prom.HistogramVec
	results    prom.Histogram
	rebuilds   *prom.CounterVec
	checks     *prom.CounterVec
}

var _ docstore.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prom.Registerer, optFns ...Option) *Collector {
	opts := Options{
		Namespace: "docstore",
		Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	var labels prom.Labels
	if opts.Collection != "" {
		labels = prom.Labels{"collection": opts.Collection}
	}
	factory := promauto.With(reg)

	return &Collector{
		operations: factory.NewCounterVec(prom.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "operations_total",
			Help:        "Total number of collection operations by type and status",
			ConstLabels: labels,
		}, []string{"op", "status"}),
		documents: factory.NewCounterVec(prom.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "documents_total",
			Help:        "Total number of documents written by operation",
			ConstLabels: labels,
		}, []string{"op"}),
		latency: factory.NewHistogramVec(prom.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "operation_duration_seconds",
			Help:        "Latency of collection operations",
			Buckets:     opts.Buckets,
			ConstLabels: labels,
		}, []string{"op"}),
		results: factory.NewHistogram(prom.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "find_results",
			Help:        "Number of documents returned per read",
			Buckets:     prom.ExponentialBuckets(1, 4, 8),
			ConstLabels: labels,
		}),
		rebuilds: factory.NewCounterVec(prom.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "index_rebuilds_total",
			Help:        "Total number of full index rebuilds",
			ConstLabels: labels,
		}, []string{"field"}),
		checks: factory.NewCounterVec(prom.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "index_checks_total",
			Help:        "Total number of index integrity checks by result",
			ConstLabels: labels,
		}, []string{"field", "result"}),
	}
}

func (c *Collector) recordWrite(op string, count int, d time.Duration, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	c.operations.WithLabelValues(op, status).Inc()
	c.latency.WithLabelValues(op).Observe(d.Seconds())
	if err == nil {
		c.documents.WithLabelValues(op).Add(float64(count))
	}
}

// RecordInsert implements docstore.MetricsCollector.
func (c *Collector) RecordInsert(count int, d time.Duration, err error) {
	c.recordWrite("insert", count, d, err)
}

// RecordUpdate implements docstore.MetricsCollector.
func (c *Collector) RecordUpdate(count int, d time.Duration, err error) {
	c.recordWrite("update", count, d, err)
}

// RecordRemove implements docstore.MetricsCollector.
func (c *Collector) RecordRemove(count int, d time.Duration, err error) {
	c.recordWrite("remove", count, d, err)
}

// RecordFind implements docstore.MetricsCollector.
func (c *Collector) RecordFind(results int, d time.Duration) {
	c.operations.WithLabelValues("find", statusSuccess).Inc()
	c.latency.WithLabelValues("find").Observe(d.Seconds())
	c.results.Observe(float64(results))
}

// RecordRebuild implements docstore.MetricsCollector.
func (c *Collector) RecordRebuild(field string, d time.Duration) {
	c.rebuilds.WithLabelValues(field).Inc()
	c.latency.WithLabelValues("rebuild").Observe(d.Seconds())
}

// RecordCheck implements docstore.MetricsCollector.
func (c *Collector) RecordCheck(field string, valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	c.checks.WithLabelValues(field, result).Inc()
}
