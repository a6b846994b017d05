// Package metrics provides Prometheus instrumentation for the storefront.
//
// Collectors are registered on a private registry so tests can build several
// servers in one process. Scrape it through Handler():
//
//	mux.Handle("GET /metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spiritflow"

var (
	// RequestDuration tracks how long each HTTP request takes.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// StoreMutations counts store operations by name, whether or not they changed anything.
	StoreMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Store mutation operations by operation name.",
		},
		[]string{"op"},
	)

	PersistWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "persist_writes_total",
			Help:      "Durable writes by collection.",
		},
		[]string{"collection"},
	)

	PersistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "persist_failures_total",
			Help:      "Durable writes that failed, by collection.",
		},
		[]string{"collection"},
	)

	// LoadFallbacks counts collections replaced by their defaults at startup.
	LoadFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "load_fallbacks_total",
			Help:      "Collections that fell back to built-in defaults on load.",
		},
		[]string{"collection", "reason"},
	)

	CheckoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "checkouts_total",
		Help:      "Orders created through checkout.",
	})

	OrderValue = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "value",
		Help:      "Order totals at checkout.",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000},
	})

	StatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_changes_total",
			Help:      "Order status updates by target status.",
		},
		[]string{"status"},
	)
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestDuration,
		RequestTotal,
		StoreMutations,
		PersistWrites,
		PersistFailures,
		LoadFallbacks,
		CheckoutsTotal,
		OrderValue,
		StatusChanges,
	)
}

// Registry exposes the registry so callers can add their own collectors.
func Registry() *prometheus.Registry {
	return registry
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	RequestTotal.WithLabelValues(method, route, code).Inc()
	RequestDuration.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
}
