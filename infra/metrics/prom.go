package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/orderbot/core/metrics"
)

// PromSink records order completions and lifecycle events in Prometheus
// metrics.
type PromSink struct {
	events     *prometheus.CounterVec
	wait       *prometheus.HistogramVec
	processing *prometheus.HistogramVec
}

// NewPromSink registers order metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orderbot_events_total",
		Help: "Total number of order and bot lifecycle events",
	}, []string{"type"})
	wait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderbot_order_wait_seconds",
		Help:    "Time between order creation and processing start",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"class"})
	processing := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderbot_order_processing_seconds",
		Help:    "Time between processing start and completion",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"class"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(wait); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			wait = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(processing); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			processing = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{events: events, wait: wait, processing: processing}, nil
}

// RecordOrderCompletion observes wait and processing times per class.
func (s *PromSink) RecordOrderCompletion(recs []coremetrics.OrderCompletion) error {
	for _, r := range recs {
		class := string(r.Class)
		s.wait.WithLabelValues(class).Observe(r.WaitTime.Seconds())
		s.processing.WithLabelValues(class).Observe(r.ProcessingTime.Seconds())
	}
	return nil
}

// RecordOrderEvent increments the counter for the event type.
func (s *PromSink) RecordOrderEvent(ev coremetrics.OrderEvent) error {
	s.events.WithLabelValues(ev.Type).Inc()
	return nil
}
