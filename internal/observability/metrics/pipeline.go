package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/digitalfte/taskvault/internal/core/domain"
)

// PipelineMetrics instruments the per-document lifecycle stages in the
// worker.
type PipelineMetrics struct {
	registry *prometheus.Registry
	service  string

	triageTotal        *prometheus.CounterVec
	triageDuration     *prometheus.HistogramVec
	triageInFlight     prometheus.Gauge
	moveTotal          *prometheus.CounterVec
	completedTotal     *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	queueLag           *prometheus.HistogramVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	triageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fte",
			Subsystem: "pipeline",
			Name:      "triage_total",
			Help:      "Total triaged documents by resulting status.",
		},
		[]string{"service", "status"},
	)
	triageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fte",
			Subsystem: "pipeline",
			Name:      "triage_duration_seconds",
			Help:      "Triage duration in seconds by resulting status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	triageInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fte",
			Subsystem: "pipeline",
			Name:      "triage_in_flight",
			Help:      "Number of in-flight triage operations.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	moveTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fte",
			Subsystem: "pipeline",
			Name:      "move_total",
			Help:      "Total document moves by reason.",
		},
		[]string{"service", "reason"},
	)
	completedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fte",
			Subsystem: "pipeline",
			Name:      "task_completed_total",
			Help:      "Total summarized completions by outcome.",
		},
		[]string{"service", "outcome"},
	)
	completionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fte",
			Subsystem: "pipeline",
			Name:      "task_completion_duration_seconds",
			Help:      "Wall-clock task duration from start to completion.",
			Buckets:   []float64{60, 300, 900, 3600, 4 * 3600, 24 * 3600, 3 * 24 * 3600},
		},
		[]string{"service", "outcome"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fte",
			Subsystem: "pipeline",
			Name:      "queue_lag_seconds",
			Help:      "Delay between document arrival and triage start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(triageTotal, triageDuration, triageInFlight, moveTotal, completedTotal, completionDuration, queueLag)

	return &PipelineMetrics{
		registry:           registry,
		service:            service,
		triageTotal:        triageTotal,
		triageDuration:     triageDuration,
		triageInFlight:     triageInFlight,
		moveTotal:          moveTotal,
		completedTotal:     completedTotal,
		completionDuration: completionDuration,
		queueLag:           queueLag,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartTriage() {
	m.triageInFlight.Inc()
}

func (m *PipelineMetrics) FinishTriage(status domain.Status, duration time.Duration, err error) {
	m.triageInFlight.Dec()

	label := string(status)
	if label == "" {
		label = "skipped"
	}
	if err != nil {
		label = "error"
	}
	m.triageTotal.WithLabelValues(m.service, label).Inc()
	m.triageDuration.WithLabelValues(m.service, label).Observe(duration.Seconds())
}

func (m *PipelineMetrics) DocumentMoved(reason domain.Reason) {
	m.moveTotal.WithLabelValues(m.service, string(reason)).Inc()
}

func (m *PipelineMetrics) TaskCompleted(outcome domain.Outcome, duration time.Duration) {
	m.completedTotal.WithLabelValues(m.service, string(outcome)).Inc()
	m.completionDuration.WithLabelValues(m.service, string(outcome)).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
