package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookkeeper_refreshes_total",
			Help: "Account refresh requests by outcome",
		},
		[]string{"status"},
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookkeeper_cache_lookups_total",
			Help: "Accounts cache lookups by result",
		},
		[]string{"result"},
	)

	WebhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookkeeper_webhook_requests_total",
			Help: "Webhook requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	AggregatorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookkeeper_aggregator_request_duration_seconds",
			Help:    "Latency of calls to the aggregation service",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(
		RefreshesTotal,
		CacheLookupsTotal,
		WebhookRequestsTotal,
		AggregatorLatency,
	)
}

// Handler exposes the registered metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveAggregatorCall(path string, d time.Duration) {
	AggregatorLatency.WithLabelValues(path).Observe(d.Seconds())
}

func RecordRefresh(status string) {
	RefreshesTotal.WithLabelValues(status).Inc()
}

func RecordCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

func RecordWebhook(method, route, status string) {
	WebhookRequestsTotal.WithLabelValues(method, route, status).Inc()
}
