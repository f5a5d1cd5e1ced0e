package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes pipeline activity as Prometheus metrics.
type Recorder struct {
	runsTotal     *prometheus.CounterVec
	sequences     *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec
}

// New registers the metrics on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seqprep_runs_total",
				Help: "Total number of dataset preparation runs",
			},
			[]string{"symbol", "status"},
		),
		sequences: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "seqprep_sequences",
				Help: "Number of sequences produced by the last run",
			},
			[]string{"symbol", "split"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seqprep_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// ObserveStage records how long a pipeline stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun counts a finished run. A nil err counts as "ok".
func (r *Recorder) RecordRun(symbol string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.runsTotal.WithLabelValues(symbol, status).Inc()
}

// RecordSequences records the train and test sizes of the last run.
func (r *Recorder) RecordSequences(symbol string, train, test int) {
	r.sequences.WithLabelValues(symbol, "train").Set(float64(train))
	r.sequences.WithLabelValues(symbol, "test").Set(float64(test))
}
