// server/internal/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ShipmentsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shipments_created_total",
			Help: "Total number of shipments created",
		},
	)

	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipment_status_transitions_total",
			Help: "Shipment status changes by source and target status",
		},
		[]string{"from", "to"},
	)

	TrackingCodeCollisionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_code_collisions_total",
			Help: "Tracking code draws rejected because the code was taken",
		},
	)

	GeocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_requests_total",
			Help: "Calls to the geocoding provider by result (ok, error)",
		},
		[]string{"result"},
	)

	GeocodeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_cache_total",
			Help: "Geocode cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	GeocodeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geocode_duration_seconds",
			Help:    "Duration of calls to the geocoding provider",
			Buckets: prometheus.DefBuckets,
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ShipmentsCreatedTotal,
			StatusTransitionsTotal,
			TrackingCodeCollisionsTotal,
			GeocodeRequestsTotal,
			GeocodeCacheTotal,
			GeocodeDuration,
			HTTPRequestsTotal,
			HTTPRequestDuration,
		)
	})
}
