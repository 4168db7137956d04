package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// MetricsService owns the Prometheus registry for HTTP, feed cache and catalog ingestion.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	ingestRecords   *prometheus.CounterVec
	ingestEntities  *prometheus.CounterVec
	ingestDuration  prometheus.Observer
	classifications *prometheus.CounterVec

	requestCount   uint64
	cacheHitCount  uint64
	cacheMissCount uint64
	recordsOK      uint64
	recordsFailed  uint64
}

// NewMetricsService registers the collectors on a private registry.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_cache_latency_seconds",
		Help:    "Latency of feed cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_cache_hits_total",
		Help: "Feed cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_cache_misses_total",
		Help: "Feed cache misses",
	})

	ingestRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_ingest_records_total",
		Help: "Course records processed by outcome",
	}, []string{"outcome"})

	ingestEntities := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_ingest_entities_created_total",
		Help: "Catalog entities created by ingestion",
	}, []string{"entity"})

	ingestDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_ingest_duration_seconds",
		Help:    "Duration of catalog batch ingestion",
		Buckets: []float64{.05, .1, .5, 1, 5, 15, 60},
	})

	classifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_classifications_total",
		Help: "Schedule submissions by resulting kind and category",
	}, []string{"kind", "category"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses,
		ingestRecords, ingestEntities, ingestDuration, classifications, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		ingestRecords:   ingestRecords,
		ingestEntities:  ingestEntities,
		ingestDuration:  ingestDuration,
		classifications: classifications,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// RecordCacheOperation records a feed cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheMisses.Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// RecordIngestion accounts for one finished batch.
func (m *MetricsService) RecordIngestion(summary models.IngestionSummary, duration time.Duration) {
	if m == nil {
		return
	}
	m.ingestDuration.Observe(duration.Seconds())
	m.ingestRecords.WithLabelValues("committed").Add(float64(summary.Processed))
	m.ingestRecords.WithLabelValues("failed").Add(float64(summary.Failed))
	atomic.AddUint64(&m.recordsOK, uint64(summary.Processed))
	atomic.AddUint64(&m.recordsFailed, uint64(summary.Failed))

	created := map[string]int{
		"major":     summary.Created.Majors,
		"semester":  summary.Created.Semesters,
		"classroom": summary.Created.Classrooms,
		"professor": summary.Created.Professors,
		"time_slot": summary.Created.TimeSlots,
		"chat_room": summary.Created.ChatRooms,
	}
	for entity, n := range created {
		if n > 0 {
			m.ingestEntities.WithLabelValues(entity).Add(float64(n))
		}
	}
}

// RecordClassification counts a classified schedule submission.
func (m *MetricsService) RecordClassification(item *models.ScheduleItem) {
	if m == nil || item == nil {
		return
	}
	m.classifications.WithLabelValues(string(item.Kind), string(item.Category)).Inc()
}

// MetricsSnapshot is a compact view of process counters.
type MetricsSnapshot struct {
	RequestsTotal    uint64    `json:"requests_total"`
	CacheHits        uint64    `json:"cache_hits"`
	CacheMisses      uint64    `json:"cache_misses"`
	RecordsCommitted uint64    `json:"records_committed"`
	RecordsFailed    uint64    `json:"records_failed"`
	Goroutines       int       `json:"goroutines"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Snapshot returns the aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		RequestsTotal:    atomic.LoadUint64(&m.requestCount),
		CacheHits:        atomic.LoadUint64(&m.cacheHitCount),
		CacheMisses:      atomic.LoadUint64(&m.cacheMissCount),
		RecordsCommitted: atomic.LoadUint64(&m.recordsOK),
		RecordsFailed:    atomic.LoadUint64(&m.recordsFailed),
		Goroutines:       runtime.NumGoroutine(),
		GeneratedAt:      time.Now().UTC(),
	}
}
