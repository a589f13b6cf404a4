package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the gateway:
// HTTP traffic, query-store behaviour and upstream round trips.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	queryHits       prometheus.Counter
	queryMisses     prometheus.Counter
	queryDedup      prometheus.Counter
	invalidations   prometheus.Counter
	staleEntries    prometheus.Counter
	refetches       prometheus.Counter
	upstreamCalls   *prometheus.HistogramVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	queryHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_hits_total",
		Help: "Query store lookups served from cache",
	})

	queryMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_cache_misses_total",
		Help: "Query store lookups that required a fetch",
	})

	queryDedup := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_dedup_joins_total",
		Help: "Concurrent queries collapsed into a shared in-flight request",
	})

	invalidations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_invalidations_total",
		Help: "Tag invalidation passes triggered by mutations",
	})

	staleEntries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_stale_entries_total",
		Help: "Cache entries touched by invalidations",
	})

	refetches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "query_refetches_total",
		Help: "Automatic refetches fanned out to subscribed queries",
	})

	upstreamCalls := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Round-trip duration of upstream backend calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, queryHits, queryMisses,
		queryDedup, invalidations, staleEntries, refetches, upstreamCalls, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		queryHits:       queryHits,
		queryMisses:     queryMisses,
		queryDedup:      queryDedup,
		invalidations:   invalidations,
		staleEntries:    staleEntries,
		refetches:       refetches,
		upstreamCalls:   upstreamCalls,
	}
}

// Handler exposes the /metrics scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one handled request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordQueryLookup implements query.Metrics.
func (s *MetricsService) RecordQueryLookup(hit bool) {
	if hit {
		s.queryHits.Inc()
		return
	}
	s.queryMisses.Inc()
}

// RecordQueryDedup implements query.Metrics.
func (s *MetricsService) RecordQueryDedup() {
	s.queryDedup.Inc()
}

// RecordInvalidation implements query.Metrics.
func (s *MetricsService) RecordInvalidation(entries int) {
	s.invalidations.Inc()
	s.staleEntries.Add(float64(entries))
}

// RecordRefetch implements query.Metrics.
func (s *MetricsService) RecordRefetch() {
	s.refetches.Inc()
}

// ObserveUpstreamCall implements upstream.Observer.
func (s *MetricsService) ObserveUpstreamCall(method, path string, status int, duration time.Duration) {
	s.upstreamCalls.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
