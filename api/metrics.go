/*
metrics.go - Prometheus metrics for the compliance service

Counters and histograms for the work the service actually does:
windows generated, analyses run (by verdict), analysis latency, and
renewal alerts recorded by the monitor. Exposed on /metrics.
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	windowsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliance_windows_generated_total",
		Help: "Total number of reporting windows derived for licenses",
	})

	analysesPerformed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_analyses_total",
		Help: "Total number of compliance analyses by verdict",
	}, []string{"verdict"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "compliance_analysis_duration_seconds",
		Help:    "Duration of compliance analysis runs",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	alertsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliance_renewal_alerts_total",
		Help: "Total number of renewal alerts recorded by the monitor",
	})
)
