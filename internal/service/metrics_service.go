package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-timetable-board/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the board API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	movesTotal      *prometheus.CounterVec
	discardedTotal  prometheus.Counter
	moveDuration    prometheus.Histogram
	storeLatency    *prometheus.HistogramVec
	storeLookups    *prometheus.CounterVec
	boardsCreated   prometheus.Counter
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

	movesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_moves_total",
		Help: "Applied board moves by outcome",
	}, []string{"outcome"})

	discardedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_entries_discarded_total",
		Help: "Displaced entries dropped because no free cell was left",
	})

	moveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_move_duration_seconds",
		Help:    "Time to load, reassign and store a board move",
		Buckets: prometheus.DefBuckets,
	})

	storeLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "board_store_latency_seconds",
		Help:    "Latency for board session store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	storeLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_store_lookups_total",
		Help: "Board session lookups by result",
	}, []string{"result"})

	boardsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_boards_created_total",
		Help: "Board sessions opened",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, movesTotal, discardedTotal, moveDuration, storeLatency, storeLookups, boardsCreated, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		movesTotal:      movesTotal,
		discardedTotal:  discardedTotal,
		moveDuration:    moveDuration,
		storeLatency:    storeLatency,
		storeLookups:    storeLookups,
		boardsCreated:   boardsCreated,
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
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordMove counts a move by outcome; discarded outcomes also bump the discard counter.
func (m *MetricsService) RecordMove(outcome models.MoveOutcome, duration time.Duration) {
	if m == nil {
		return
	}
	m.movesTotal.WithLabelValues(string(outcome)).Inc()
	m.moveDuration.Observe(duration.Seconds())
	if outcome == models.MoveOutcomeDiscarded {
		m.discardedTotal.Inc()
	}
}

// RecordBoardLookup records a session store read.
func (m *MetricsService) RecordBoardLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.storeLookups.WithLabelValues(result).Inc()
	m.storeLatency.WithLabelValues("get").Observe(duration.Seconds())
}

// ObserveBoardWrite tracks the duration of session store writes.
func (m *MetricsService) ObserveBoardWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues("save").Observe(duration.Seconds())
}

// RecordBoardCreated counts a newly opened session.
func (m *MetricsService) RecordBoardCreated() {
	if m == nil {
		return
	}
	m.boardsCreated.Inc()
}
