package audit

import (
	"context"
	"time"

	"github.com/kilianp07/jobgate/core/events"
	"github.com/kilianp07/jobgate/core/logger"
	"github.com/kilianp07/jobgate/core/monitoring"
	"github.com/kilianp07/jobgate/internal/eventbus"
)

// appendTimeout bounds a single store write.
const appendTimeout = 5 * time.Second

// FromOutcome converts a controller outcome into an audit record.
func FromOutcome(ev events.OutcomeEvent, mode string) Record {
	return Record{
		Timestamp:     ev.Time,
		RequestID:     ev.Record.ID,
		Configuration: ev.Record.Configuration,
		Priority:      ev.Record.Priority,
		Sender:        ev.Record.Reply.Addr.String(),
		Mode:          mode,
		Accepted:      ev.Accepted,
		Reply:         ev.Reply,
		WaitMS:        ev.Wait.Milliseconds(),
	}
}

// StartRecorder appends every OutcomeEvent published on bus to store until
// ctx is canceled or the bus is closed. The returned channel is closed when
// the recorder has stopped.
func StartRecorder(ctx context.Context, bus *eventbus.Bus[events.Event], store Store, mode string, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
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
				out, isOutcome := ev.(events.OutcomeEvent)
				if !isOutcome {
					continue
				}
				actx, cancel := context.WithTimeout(ctx, appendTimeout)
				err := store.Append(actx, FromOutcome(out, mode))
				cancel()
				if err != nil {
					log.Errorf("audit append %s: %v", out.Record.ID, err)
					monitoring.CaptureException(err, map[string]string{"component": "audit"})
				}
			}
		}
	}()
	return done
}
