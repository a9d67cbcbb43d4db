package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the pipeline's Prometheus collectors.
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	SectionsScored prometheus.Histogram
	JobsRejected   prometheus.Counter
	QueueDepth     prometheus.Gauge
}

// NewMetrics registers the collectors with reg. A nil reg registers with the
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docrank",
				Name:      "runs_total",
				Help:      "Analysis runs by final status",
			},
			[]string{"status"},
		),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docrank",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of analysis runs in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SectionsScored: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docrank",
			Name:      "sections_scored",
			Help:      "Number of sections scored per run",
			Buckets:   []float64{1, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		JobsRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: "docrank",
			Name:      "jobs_rejected_total",
			Help:      "Jobs rejected because the queue was full",
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "docrank",
			Name:      "queue_depth",
			Help:      "Jobs waiting for a worker",
		}),
	}
}

func (m *Metrics) recordRun(status JobStatus, seconds float64, sections int) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(string(status)).Inc()
	if status == StatusCompleted {
		m.RunDuration.Observe(seconds)
		m.SectionsScored.Observe(float64(sections))
	}
}
