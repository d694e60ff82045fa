package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/jobgate/core/events"
	coremetrics "github.com/kilianp07/jobgate/core/metrics"
	"github.com/kilianp07/jobgate/core/model"
	"github.com/kilianp07/jobgate/infra/logger"
	"github.com/kilianp07/jobgate/internal/eventbus"
)

type fakeSink struct {
	mu         sync.Mutex
	outcomes   []coremetrics.OutcomeEvent
	admissions []coremetrics.AdmissionEvent
}

func (f *fakeSink) RecordOutcome(ev coremetrics.OutcomeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, ev)
	return nil
}

func (f *fakeSink) RecordAdmission(ev coremetrics.AdmissionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admissions = append(f.admissions, ev)
	return nil
}

func (f *fakeSink) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.outcomes), len(f.admissions)
}

func TestEventCollector(t *testing.T) {
	bus := eventbus.New[events.Event](16)
	sink := &fakeSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink, logger.NopLogger{})

	bus.Publish(events.SubmissionEvent{RequestID: "1", Admission: events.AdmissionQueued})
	bus.Publish(events.TickEvent{Count: 1})
	bus.Publish(events.OutcomeEvent{Record: model.Record{ID: "1", Configuration: "3x3", Priority: 4}, Accepted: true})

	deadline := time.Now().Add(time.Second)
	for {
		o, a := sink.counts()
		if o == 1 && a == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("events not recorded: outcomes=%d admissions=%d", o, a)
		}
		time.Sleep(5 * time.Millisecond)
	}
	sink.mu.Lock()
	if sink.outcomes[0].RequestID != "1" || sink.outcomes[0].Configuration != "3x3" || sink.admissions[0].Admission != "queued" {
		t.Fatalf("unexpected events %+v %+v", sink.outcomes, sink.admissions)
	}
	sink.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
	if bus.Subscribers() != 0 {
		t.Fatalf("collector still subscribed")
	}
}

func TestEventCollectorNilSink(t *testing.T) {
	done := StartEventCollector(context.Background(), eventbus.New[events.Event](1), nil, logger.NopLogger{})
	select {
	case <-done:
	default:
		t.Fatal("expected closed channel")
	}
}
