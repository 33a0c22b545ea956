package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics collects step and run measurements on a private Prometheus
// registry. The installer is a one-shot process, so nothing is exported over
// HTTP; the collected values feed the verbose end-of-run summary.
type Metrics struct {
	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	runsTotal    *prometheus.CounterVec
	warnings     prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "claude_bootstrap",
				Name:      "steps_total",
				Help:      "Installer steps executed, by step and status",
			},
			[]string{"step", "status"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "claude_bootstrap",
				Name:      "step_duration_seconds",
				Help:      "Duration of installer steps in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "claude_bootstrap",
				Name:      "runs_total",
				Help:      "Installer runs, by final status",
			},
			[]string{"status"},
		),
		warnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "claude_bootstrap",
				Name:      "warnings_total",
				Help:      "Non-fatal step failures recorded",
			},
		),
	}

	registry.MustRegister(m.stepsTotal, m.stepDuration, m.runsTotal, m.warnings)
	return m
}

// ObserveStep records one completed step.
func (m *Metrics) ObserveStep(step, status string, duration time.Duration) {
	m.stepsTotal.WithLabelValues(step, status).Inc()
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// ObserveRun records the run's terminal status.
func (m *Metrics) ObserveRun(status string) {
	m.runsTotal.WithLabelValues(status).Inc()
}

// ObserveWarning records a non-fatal step failure.
func (m *Metrics) ObserveWarning() {
	m.warnings.Inc()
}

// Summary renders the step timings for the verbose report, slowest first.
func (m *Metrics) Summary() string {
	families, err := m.registry.Gather()
	if err != nil {
		return ""
	}

	type timing struct {
		step    string
		seconds float64
	}
	var timings []timing

	for _, family := range families {
		if family.GetName() != "claude_bootstrap_step_duration_seconds" {
			continue
		}
		for _, metric := range family.GetMetric() {
			timings = append(timings, timing{
				step:    labelValue(metric, "step"),
				seconds: metric.GetHistogram().GetSampleSum(),
			})
		}
	}

	sort.Slice(timings, func(i, j int) bool {
		return timings[i].seconds > timings[j].seconds
	})

	var b strings.Builder
	for _, t := range timings {
		fmt.Fprintf(&b, "  %-12s %.2fs\n", t.step, t.seconds)
	}
	return b.String()
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}
