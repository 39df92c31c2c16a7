package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	passesTotal       prometheus.Counter
	assignmentsTotal  *prometheus.CounterVec
	contestedTriggers prometheus.Counter
	passFailures      prometheus.Counter
	passDuration      prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, *prometheus.CounterVec, prometheus.Counter, prometheus.Counter, prometheus.Histogram) {
	passes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_dispatch_passes_total",
		Help: "Number of dispatch passes executed",
	})
	assignments := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_dispatch_assignments_total",
			Help: "Number of orders assigned to bots",
		},
		[]string{"class"},
	)
	contested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_dispatch_contested_triggers_total",
		Help: "Triggers that found a dispatch pass already running",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_dispatch_failures_total",
		Help: "Recovered failures inside dispatch passes",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderbot_dispatch_pass_duration_seconds",
		Help:    "Duration of a dispatch pass",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
	return passes, assignments, contested, failures, duration
}

func init() {
	passesTotal, assignmentsTotal, contestedTriggers, passFailures, passDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(passesTotal, assignmentsTotal, contestedTriggers, passFailures, passDuration)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	passesTotal, assignmentsTotal, contestedTriggers, passFailures, passDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
