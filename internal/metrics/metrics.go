package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Dataset loader metrics
	DatasetFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relaisblick_dataset_fetches_total",
			Help: "Total number of dataset fetches",
		},
		[]string{"result"}, // result: success|network_error|http_error|parse_error|superseded
	)

	DatasetFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relaisblick_dataset_fetch_duration_seconds",
			Help:    "Dataset fetch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	DatasetRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relaisblick_dataset_records",
			Help: "Number of repeater records in the loaded dataset",
		},
	)

	DatasetLastLoad = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "relaisblick_dataset_last_load_timestamp",
			Help: "Unix timestamp of the last successful dataset load",
		},
	)

	// API metrics
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relaisblick_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "code"},
	)

	FilteredResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relaisblick_filtered_results",
			Help:    "Number of records returned by filter queries",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)

var initOnce sync.Once

// Init registers all collectors with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(DatasetFetches)
		prometheus.MustRegister(DatasetFetchDuration)
		prometheus.MustRegister(DatasetRecords)
		prometheus.MustRegister(DatasetLastLoad)
		prometheus.MustRegister(APIRequests)
		prometheus.MustRegister(FilteredResults)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
