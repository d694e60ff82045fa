package metrics

import "errors"

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOutcome forwards the outcome to every sink. All sinks are tried;
// their errors are joined.
func (m *MultiSink) RecordOutcome(ev OutcomeEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordOutcome(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordAdmission forwards admissions to sinks that support them.
func (m *MultiSink) RecordAdmission(ev AdmissionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(AdmissionRecorder); ok {
			if err := rec.RecordAdmission(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
