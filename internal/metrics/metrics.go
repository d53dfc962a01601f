// Package metrics exposes Prometheus collectors for the HTTP surface and the record store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nazolog"

// Metrics owns a private registry so tests can build independent instances.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recordsCreated  prometheus.Counter
	recordsUpdated  prometheus.Counter
	storageFailures prometheus.Counter
	recordsStored   prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		recordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Records created through the store.",
		}),
		recordsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_updated_total",
			Help:      "Records updated through the store.",
		}),
		storageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_write_failures_total",
			Help:      "Collection saves that failed and were kept in memory only.",
		}),
		recordsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records currently held by the store.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.recordsCreated,
		m.recordsUpdated,
		m.storageFailures,
		m.recordsStored,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordCreated counts a created record.
func (m *Metrics) RecordCreated() {
	if m == nil {
		return
	}
	m.recordsCreated.Inc()
}

// RecordUpdated counts an updated record.
func (m *Metrics) RecordUpdated() {
	if m == nil {
		return
	}
	m.recordsUpdated.Inc()
}

// StorageWriteFailed counts a save that did not reach the storage slot.
func (m *Metrics) StorageWriteFailed() {
	if m == nil {
		return
	}
	m.storageFailures.Inc()
}

// SetRecordCount reports the current collection size.
func (m *Metrics) SetRecordCount(n int) {
	if m == nil {
		return
	}
	m.recordsStored.Set(float64(n))
}
