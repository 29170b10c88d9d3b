// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "product_descriptions"

	productsFetchedTotal       = "products_fetched_total"
	descriptionGenerationTotal = "description_generation_total"
	descriptionUpdatesTotal    = "description_updates_total"
	pipelineRunsTotal          = "pipeline_runs_total"
	pipelineRunDuration        = "pipeline_run_duration_seconds"

	// Labels
	resultLabel = "result"
	stateLabel  = "state"
)

// Generation results.
const (
	GenerationGenerated = "generated"
	GenerationEmpty     = "empty"
	GenerationFailed    = "failed"
)

// Update results.
const (
	UpdateSucceeded = "succeeded"
	UpdateRejected  = "rejected"
	UpdateFailed    = "failed"
)

/**
* Metrics definition
**/
var productsFetchedMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      productsFetchedTotal,
		Help:      "number of products fetched from the catalog",
	},
)

var generationTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      descriptionGenerationTotal,
		Help:      "number of description generations partitioned by result",
	},
	[]string{resultLabel},
)

var updatesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      descriptionUpdatesTotal,
		Help:      "number of description writes partitioned by result",
	},
	[]string{resultLabel},
)

var runsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      pipelineRunsTotal,
		Help:      "number of pipeline runs partitioned by terminal state",
	},
	[]string{stateLabel},
)

var runDurationMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      pipelineRunDuration,
		Help:      "duration of pipeline runs",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
	},
)

func AddProductsFetched(n int) {
	productsFetchedMetric.Add(float64(n))
}

func IncreaseGenerationTotal(result string) {
	generationTotalMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func IncreaseUpdatesTotal(result string) {
	updatesTotalMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func ObserveRun(state string, d time.Duration) {
	runsTotalMetric.With(prometheus.Labels{stateLabel: state}).Inc()
	runDurationMetric.Observe(d.Seconds())
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(productsFetchedMetric)
	prometheus.MustRegister(generationTotalMetric)
	prometheus.MustRegister(updatesTotalMetric)
	prometheus.MustRegister(runsTotalMetric)
	prometheus.MustRegister(runDurationMetric)
}
