package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

// PipelineMetrics records verification runs. It satisfies the verifier's
// observer contract and the resilience executor's observer.
type PipelineMetrics struct {
	service string

	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runsInFlight    prometheus.Gauge
	pagesTotal      *prometheus.CounterVec
	scores          *prometheus.HistogramVec
	signaturesTotal *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		service: service,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Verification runs by outcome.",
		}, []string{"service", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Verification run duration in seconds by outcome.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"service", "outcome"}),
		runsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "pipeline",
			Name:        "runs_in_flight",
			Help:        "Number of verification runs in progress.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		pagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "pages_classified_total",
			Help:      "Classified pages by provenance and final class.",
		}, []string{"service", "provenance", "class"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "report_score",
			Help:      "Distribution of report scores by document type.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"service", "document_type"}),
		signaturesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "signature_verdicts_total",
			Help:      "Signature scan verdicts by status.",
		}, []string{"service", "status"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "retries_total",
			Help:      "Retried remote calls by operation.",
		}, []string{"service", "operation"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state by operation: 0 closed, 1 half-open, 2 open.",
		}, []string{"service", "operation"}),
	}
	registerer.MustRegister(
		m.runsTotal, m.runDuration, m.runsInFlight, m.pagesTotal,
		m.scores, m.signaturesTotal, m.retriesTotal, m.breakerState,
	)
	return m
}

func (m *PipelineMetrics) StartRun() {
	m.runsInFlight.Inc()
}

func (m *PipelineMetrics) ObservePage(record domain.PageRecord) {
	m.pagesTotal.WithLabelValues(m.service, string(record.Provenance), string(record.FinalClass)).Inc()
}

func (m *PipelineMetrics) ObserveSignature(verdict domain.SignatureVerdict) {
	m.signaturesTotal.WithLabelValues(m.service, string(verdict.Status)).Inc()
}

func (m *PipelineMetrics) FinishRun(outcome string, duration time.Duration, report *domain.VerificationReport) {
	m.runsInFlight.Dec()
	m.runsTotal.WithLabelValues(m.service, outcome).Inc()
	m.runDuration.WithLabelValues(m.service, outcome).Observe(duration.Seconds())
	if report != nil {
		m.scores.WithLabelValues(m.service, string(report.DocumentType)).Observe(report.Score)
	}
}

func (m *PipelineMetrics) ObserveRetry(operation string) {
	m.retriesTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *PipelineMetrics) ObserveBreakerState(operation, state string) {
	value := 0.0
	switch state {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}
