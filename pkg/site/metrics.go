package site

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smokypeaks",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smokypeaks",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	galleryChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smokypeaks",
			Subsystem: "gallery",
			Name:      "changes_total",
			Help:      "Applied photo collection mutations.",
		},
		[]string{"property", "op"},
	)
	itineraries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smokypeaks",
			Subsystem: "planner",
			Name:      "itineraries_total",
			Help:      "Finished itinerary requests.",
		},
		[]string{"outcome"},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "smokypeaks",
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Visitor sessions currently held in memory.",
		},
	)
)

// RegisterMetrics adds the site's collectors to the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, galleryChanges, itineraries, activeSessions)
	})
}

func recordHTTPRequest(method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

func recordGalleryChange(property string, op string) {
	RegisterMetrics()
	galleryChanges.WithLabelValues(property, op).Inc()
}

func recordItinerary(outcome string) {
	RegisterMetrics()
	itineraries.WithLabelValues(outcome).Inc()
}
