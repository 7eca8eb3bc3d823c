package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "apartinvest", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apartinvest", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	CatalogRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "apartinvest", Name: "catalog_records_total", Help: "Records seen while loading the catalog."},
		[]string{"outcome"}, // outcome: accepted|rejected|duplicate
	)
	SourceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "apartinvest", Name: "catalog_source_errors_total", Help: "Unavailable catalog sources."},
		[]string{"source"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "apartinvest", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apartinvest", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "apartinvest", Name: "lead_notifications_total", Help: "Lead notifications by outcome."},
		[]string{"outcome"}, // outcome: sent|failed|dropped
	)
)

// InitRegistry returns a registry with every collector of the service registered.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, CatalogRecords, SourceErrors,
		ExternalRequests, ExternalLatency, Notifications)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveExternal records an outbound call. status 0 means the request never got a response.
func ObserveExternal(service string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service).Observe(dur.Seconds())
}

func ObserveCatalog(accepted, rejected, duplicates int) {
	CatalogRecords.WithLabelValues("accepted").Add(float64(accepted))
	CatalogRecords.WithLabelValues("rejected").Add(float64(rejected))
	CatalogRecords.WithLabelValues("duplicate").Add(float64(duplicates))
}

func ObserveSourceError(source string) {
	SourceErrors.WithLabelValues(source).Inc()
}

func ObserveNotification(outcome string) { // outcome: sent|failed|dropped
	Notifications.WithLabelValues(outcome).Inc()
}
