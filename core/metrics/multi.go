package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOrderCompletion forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordOrderCompletion(c []OrderCompletion) error {
	for _, s := range m.Sinks {
		if err := s.RecordOrderCompletion(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordOrderEvent forwards the event to every sink implementing
// EventRecorder.
func (m *MultiSink) RecordOrderEvent(ev OrderEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EventRecorder); ok {
			if err := rec.RecordOrderEvent(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
