package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the catalog API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	autofillTotal   prometheus.Counter
	parseFallbacks  prometheus.Counter
	logoSubstituted prometheus.Counter
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

	autofillTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autofill_generations_total",
		Help: "Total AI field-generation requests",
	})

	parseFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autofill_parse_fallbacks_total",
		Help: "Generations whose model output required repair or defaulted empty",
	})

	logoSubstituted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "autofill_logo_substitutions_total",
		Help: "Generations where the proposed logo URL was replaced by a placeholder",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, autofillTotal, parseFallbacks, logoSubstituted, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		autofillTotal:   autofillTotal,
		parseFallbacks:  parseFallbacks,
		logoSubstituted: logoSubstituted,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records duration and count for a completed request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// CountAutofill increments the generation counter.
func (s *MetricsService) CountAutofill() {
	s.autofillTotal.Inc()
}

// CountParseFallback records a generation whose model output needed repair.
func (s *MetricsService) CountParseFallback() {
	s.parseFallbacks.Inc()
}

// CountLogoSubstitution records a proposed logo replaced by a placeholder.
func (s *MetricsService) CountLogoSubstitution() {
	s.logoSubstituted.Inc()
}
