package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	HeartbeatResultOK           = "ok"
	HeartbeatResultPrimaryError = "primary_error"
	HeartbeatResultMirrorError  = "mirror_error"
)

// Config carries constant labels attached to every instrument.
type Config struct {
	ServiceName string
	Environment string
}

// HTTPMetrics instruments the gin request path.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// DualWriteMetrics captures coordinator health signals. Mirror failures are
// invisible to callers, so this is the only place they surface besides logs.
type DualWriteMetrics struct {
	primaryErrors  prometheus.Counter
	mirrorFailures prometheus.Counter
	heartbeats     *prometheus.CounterVec
	lockWait       prometheus.Histogram
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "orsta"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{"service": serviceName, "env": environment}
}

// NewHTTPMetrics registers request instruments on the default registry.
func NewHTTPMetrics(cfg Config) *HTTPMetrics {
	return newHTTPMetrics(prometheus.DefaultRegisterer, cfg)
}

func newHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "orsta_http_requests_total",
		Help:        "HTTP requests by route, method and status.",
		ConstLabels: labels,
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "orsta_http_request_duration_seconds",
		Help:        "HTTP request latency by route.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: labels,
	}, []string{"route"})

	registerer.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// ObserveRequest records one completed request.
func (m *HTTPMetrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// GinMiddleware records request metrics for every handled route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// NewDualWriteMetrics registers coordinator instruments on the default registry.
func NewDualWriteMetrics(cfg Config) *DualWriteMetrics {
	return newDualWriteMetrics(prometheus.DefaultRegisterer, cfg)
}

func newDualWriteMetrics(registerer prometheus.Registerer, cfg Config) *DualWriteMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	primaryErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "orsta_primary_write_errors_total",
		Help:        "Failed writes against the authoritative store.",
		ConstLabels: labels,
	})
	mirrorFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "orsta_mirror_write_failures_total",
		Help:        "Mirror writes dropped after a primary success.",
		ConstLabels: labels,
	})
	heartbeats := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "orsta_heartbeat_total",
		Help:        "Coordinator heartbeat outcomes.",
		ConstLabels: labels,
	}, []string{"result"})
	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "orsta_coordinator_lock_wait_seconds",
		Help:        "Time spent waiting for the coordinator lock.",
		Buckets:     []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		ConstLabels: labels,
	})

	registerer.MustRegister(primaryErrors, mirrorFailures, heartbeats, lockWait)
	return &DualWriteMetrics{
		primaryErrors:  primaryErrors,
		mirrorFailures: mirrorFailures,
		heartbeats:     heartbeats,
		lockWait:       lockWait,
	}
}

// RecordPrimaryError counts a failed authoritative write.
func (m *DualWriteMetrics) RecordPrimaryError() {
	if m == nil {
		return
	}
	m.primaryErrors.Inc()
}

// RecordMirrorFailure counts a dropped mirror write.
func (m *DualWriteMetrics) RecordMirrorFailure() {
	if m == nil {
		return
	}
	m.mirrorFailures.Inc()
}

// RecordHeartbeat counts one heartbeat outcome.
func (m *DualWriteMetrics) RecordHeartbeat(result string) {
	if m == nil {
		return
	}
	m.heartbeats.WithLabelValues(result).Inc()
}

// ObserveLockWait records time spent queueing on the coordinator lock.
func (m *DualWriteMetrics) ObserveLockWait(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(elapsed.Seconds())
}
