package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/panecraft/pkg/observability"
)

const namespace = "panecraft"

// Metrics collects Prometheus metrics for the server and implements the
// observability hooks, so tree mutations, code generation, cache lookups
// and storage calls are counted alongside HTTP requests.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec

	generations     prometheus.Counter
	generatedBytes  prometheus.Histogram
	generatedNodes  prometheus.Histogram
	generateSeconds prometheus.Histogram

	cacheLookups *prometheus.CounterVec
	cacheWrites  *prometheus.CounterVec

	storageOps      *prometheus.CounterVec
	storageDuration *prometheus.HistogramVec
}

// NewMetrics registers the server's collectors, plus the Go runtime and
// process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "design", Name: "mutations_total",
			Help: "Design tree operations by kind and result.",
		}, []string{"op", "result"}),
		mutationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "design", Name: "mutation_duration_seconds",
			Help:    "Design tree operation latency.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"op"}),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "codegen", Name: "runs_total",
			Help: "Rust sources generated.",
		}),
		generatedBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "codegen", Name: "output_bytes",
			Help:    "Size of generated sources.",
			Buckets: prometheus.ExponentialBuckets(512, 2, 10),
		}),
		generatedNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "codegen", Name: "design_nodes",
			Help:    "Nodes per generated design.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		generateSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "codegen", Name: "duration_seconds",
			Help:    "Code generation latency.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "lookups_total",
			Help: "Artifact cache lookups by artifact kind and result.",
		}, []string{"kind", "result"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "written_bytes_total",
			Help: "Bytes written to the artifact cache.",
		}, []string{"kind"}),
		storageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "storage", Name: "ops_total",
			Help: "Project and session backend calls.",
		}, []string{"backend", "op", "result"}),
		storageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "storage", Name: "op_duration_seconds",
			Help:    "Project and session backend latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration,
		m.mutations, m.mutationDuration,
		m.generations, m.generatedBytes, m.generatedNodes, m.generateSeconds,
		m.cacheLookups, m.cacheWrites,
		m.storageOps, m.storageDuration,
	)
	return m
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Install registers m as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetDesignHooks(m)
	observability.SetCodegenHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStorageHooks(m)
}

func (m *Metrics) observeRequest(method, route, status string, d time.Duration) {
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnMutation(op string, d time.Duration, err error) {
	m.mutations.WithLabelValues(op, result(err)).Inc()
	m.mutationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) OnGenerate(nodeCount, size int, d time.Duration) {
	m.generations.Inc()
	m.generatedNodes.Observe(float64(nodeCount))
	m.generatedBytes.Observe(float64(size))
	m.generateSeconds.Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.cacheLookups.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.cacheLookups.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.cacheWrites.WithLabelValues(kind).Add(float64(size))
}

func (m *Metrics) OnStorageOp(_ context.Context, backend, op string, d time.Duration, err error) {
	m.storageOps.WithLabelValues(backend, op, result(err)).Inc()
	m.storageDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

var (
	_ observability.DesignHooks  = (*Metrics)(nil)
	_ observability.CodegenHooks = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.StorageHooks = (*Metrics)(nil)
)
