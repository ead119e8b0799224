package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors of the geocoding worker.
type Metrics struct {
	TaskProcessed  *prometheus.CounterVec   // labels: status={success,failure,skipped}
	APIErrors      *prometheus.CounterVec   // labels: provider, kind
	RequestSeconds *prometheus.HistogramVec // labels: provider
	ResultsFound   prometheus.Histogram
	ActiveWorkers  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if any of them is already registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		TaskProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_tasks_processed_total",
			Help: "Total number of processed geocoding tasks.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider, by error kind.",
		}, []string{"provider", "kind"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocoding_provider_request_duration_seconds",
			Help:    "Duration of forward geocoding requests to the provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ResultsFound: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "geocoding_provider_results",
			Help:    "Number of locations returned per successful provider request.",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geocoding_active_workers",
			Help: "Current number of active workers processing tasks.",
		}),
	}
}
