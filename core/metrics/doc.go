package metrics

// Package metrics defines the sinks that observe order processing. A sink
// records completed orders and, when it implements EventRecorder, every
// lifecycle transition. Implementations live in infra/metrics and are built
// from configuration through NewMetricsSink, which wraps several sinks in a
// MultiSink.
