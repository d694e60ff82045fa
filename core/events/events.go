package events

import (
	"time"

	"github.com/kilianp07/jobgate/core/model"
)

// Kind names an event type on the wire, for example in MQTT topics.
type Kind string

const (
	KindSubmission Kind = "submission"
	KindOutcome    Kind = "outcome"
	KindTick       Kind = "tick"
	KindControl    Kind = "control"
)

// Event is anything published by the controller.
type Event interface {
	Kind() Kind
}

// Admission describes what happened to a submission on arrival.
type Admission string

const (
	AdmissionQueued   Admission = "queued"
	AdmissionInvalid  Admission = "invalid"
	AdmissionBusy     Admission = "busy"
	AdmissionOverflow Admission = "overflow"
	AdmissionInline   Admission = "inline"
)

// SubmissionEvent is published for every processRequest that reached the
// controller.
type SubmissionEvent struct {
	RequestID     string    `json:"request_id"`
	Configuration string    `json:"configuration"`
	Priority      string    `json:"priority"`
	Sender        string    `json:"sender"`
	Admission     Admission `json:"admission"`
	QueueLen      int       `json:"queue_len"`
	Time          time.Time `json:"time"`
}

func (SubmissionEvent) Kind() Kind { return KindSubmission }

// OutcomeEvent is published once per record that left dispatch.
type OutcomeEvent struct {
	Record   model.Record  `json:"-"`
	Accepted bool          `json:"accepted"`
	Reply    string        `json:"reply"`
	Wait     time.Duration `json:"wait_ns"`
	Duration time.Duration `json:"duration_ns"`
	Time     time.Time     `json:"time"`
}

func (OutcomeEvent) Kind() Kind { return KindOutcome }

// TickEvent is published on every tick the controller observes.
type TickEvent struct {
	Time  time.Time `json:"time"`
	Count uint64    `json:"count"`
}

func (TickEvent) Kind() Kind { return KindTick }

// ControlEvent is published after a control command was applied.
type ControlEvent struct {
	Method    string    `json:"method"`
	Available bool      `json:"available"`
	Paused    bool      `json:"paused"`
	Time      time.Time `json:"time"`
}

func (ControlEvent) Kind() Kind { return KindControl }
