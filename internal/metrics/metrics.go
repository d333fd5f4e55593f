package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	uploaded     *prometheus.CounterVec
	deduplicated *prometheus.CounterVec
	uploadFailed *prometheus.CounterVec
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		uploaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_uploaded_total",
			Help: "Media records added to a list after an upload.",
		}, []string{"kind"}),
		deduplicated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_deduplicated_total",
			Help: "Uploaded media records dropped because their etag was already listed.",
		}, []string{"kind"}),
		uploadFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_upload_failed_total",
			Help: "Upload batches that failed.",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.uploaded, m.deduplicated, m.uploadFailed, m.requests, m.duration)
	return m
}

// ObserveUpload records the outcome of one applied upload batch.
func (m *Metrics) ObserveUpload(kind string, added, dropped int) {
	if m == nil {
		return
	}
	m.uploaded.WithLabelValues(normalizeLabel(kind)).Add(float64(added))
	m.deduplicated.WithLabelValues(normalizeLabel(kind)).Add(float64(dropped))
}

func (m *Metrics) IncUploadFailed(kind string) {
	if m == nil {
		return
	}
	m.uploadFailed.WithLabelValues(normalizeLabel(kind)).Inc()
}

// Middleware records request counts and latency keyed by the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
