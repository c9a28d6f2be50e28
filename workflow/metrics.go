package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/azrulhm/eplingest/metrics"
)

// pipelineMetrics holds the run-level metrics reported by the pipeline.
type pipelineMetrics struct {
	runsTotal          metrics.CounterVec
	extractionFailures metrics.Counter
	runDuration        metrics.Gauge
	recordsExtracted   metrics.Gauge
}

func newPipelineMetrics(reg metrics.Registry, namespace string) (*pipelineMetrics, error) {
	runsTotal, err := reg.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Ingestion runs by terminal result.",
	}, []string{"result"})
	if err != nil {
		return nil, err
	}

	extractionFailures, err := reg.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extraction_failures_total",
		Help:      "Club extractions that failed after exhausting retries.",
	})
	if err != nil {
		return nil, err
	}

	runDuration, err := reg.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of the most recent run.",
	})
	if err != nil {
		return nil, err
	}

	recordsExtracted, err := reg.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records_extracted",
		Help:      "Player records aggregated by the most recent run.",
	})
	if err != nil {
		return nil, err
	}

	return &pipelineMetrics{
		runsTotal:          runsTotal,
		extractionFailures: extractionFailures,
		runDuration:        runDuration,
		recordsExtracted:   recordsExtracted,
	}, nil
}

// recordRun reports the terminal outcome of one run.
func (m *pipelineMetrics) recordRun(phase Phase, elapsed time.Duration, records int) {
	m.runsTotal.With(prometheus.Labels{"result": phase.String()}).Inc()
	m.runDuration.Set(elapsed.Seconds())
	m.recordsExtracted.Set(float64(records))
}
