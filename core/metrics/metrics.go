package metrics

import "time"

// OutcomeEvent is the final result of one dispatched record.
type OutcomeEvent struct {
	RequestID     string
	Configuration string
	Priority      int
	Accepted      bool
	// Wait is the time spent between submission and dispatch.
	Wait time.Duration
	// Duration is the time spent inside dispatch.
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records dispatch outcomes for observability purposes.
type MetricsSink interface {
	RecordOutcome(ev OutcomeEvent) error
}

// AdmissionEvent describes what happened to a submission on arrival.
// Admission is one of queued, invalid, busy, overflow or inline.
type AdmissionEvent struct {
	RequestID string
	Admission string
	QueueLen  int
	Time      time.Time
}

// AdmissionRecorder is implemented by sinks able to record admissions.
type AdmissionRecorder interface {
	RecordAdmission(ev AdmissionEvent) error
}

// Closer is implemented by sinks holding connections.
type Closer interface {
	Close() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordOutcome(OutcomeEvent) error     { return nil }
func (NopSink) RecordAdmission(AdmissionEvent) error { return nil }
