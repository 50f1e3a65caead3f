package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "watermap", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "watermap", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "watermap", Name: "submissions_total", Help: "Restaurant submissions."},
		[]string{"result"}, // result: ok|duplicate|invalid|error
	)
	Reviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "watermap", Name: "reviews_total", Help: "Moderation decisions."},
		[]string{"action", "result"}, // result: ok|conflict|invalid|error
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "watermap", Name: "cache_events_total", Help: "Cache operations by outcome."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|incr
	)
)

// Serve starts a standalone metrics listener when METRICS_ADDR is set.
// It serves the given registry, the one the watermap collectors are
// registered on.
func Serve(reg *prometheus.Registry) {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := metricsMux(reg)

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))
	return mux
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, Submissions, Reviews, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveSubmission(result string) {
	Submissions.WithLabelValues(result).Inc()
}

func ObserveReview(action, result string) {
	Reviews.WithLabelValues(action, result).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del|incr
	CacheEvents.WithLabelValues(cache, event).Inc()
}
