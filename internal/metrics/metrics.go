// Package metrics exposes Prometheus counters for a formatting run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters and gauges updated during a run.
type Metrics struct {
	Files             *prometheus.CounterVec
	Employees         *prometheus.CounterVec
	RejectedEmployees *prometheus.CounterVec
	RunDuration       prometheus.Gauge
	LastRun           prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Files: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "empfmt_files_total",
			Help: "Input files seen, by outcome (written, not_array, empty, failed).",
		}, []string{"status"}),
		Employees: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "empfmt_employees_total",
			Help: "Employee entries processed, by outcome (accepted, rejected).",
		}, []string{"status"}),
		RejectedEmployees: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "empfmt_employees_rejected_total",
			Help: "Rejected employee entries by reason.",
		}, []string{"reason"}),
		RunDuration: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "empfmt_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		LastRun: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "empfmt_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}

	m.Employees.WithLabelValues("accepted")
	m.Employees.WithLabelValues("rejected")

	return m
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}
