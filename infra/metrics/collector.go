package metrics

import (
	"context"

	"github.com/kilianp07/jobgate/core/events"
	"github.com/kilianp07/jobgate/core/logger"
	coremetrics "github.com/kilianp07/jobgate/core/metrics"
	"github.com/kilianp07/jobgate/core/monitoring"
	"github.com/kilianp07/jobgate/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records submissions
// and outcomes on the sink. It stops when the context is canceled or the
// bus is closed; the returned channel is closed then.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Errorf("metrics sink: %v", err)
					monitoring.CaptureException(err, map[string]string{"component": "metrics"})
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.SubmissionEvent:
		if r, ok := sink.(coremetrics.AdmissionRecorder); ok {
			return r.RecordAdmission(coremetrics.AdmissionEvent{
				RequestID: e.RequestID,
				Admission: string(e.Admission),
				QueueLen:  e.QueueLen,
				Time:      e.Time,
			})
		}
	case events.OutcomeEvent:
		return sink.RecordOutcome(coremetrics.OutcomeEvent{
			RequestID:     e.Record.ID,
			Configuration: e.Record.Configuration,
			Priority:      e.Record.Priority,
			Accepted:      e.Accepted,
			Wait:          e.Wait,
			Duration:      e.Duration,
			Time:          e.Time,
		})
	}
	return nil
}
