package scenarios

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/jobgate/core/catalog"
	"github.com/kilianp07/jobgate/core/dispatch"
	"github.com/kilianp07/jobgate/core/events"
	"github.com/kilianp07/jobgate/core/protocol"
	"github.com/kilianp07/jobgate/infra/logger"
	"github.com/kilianp07/jobgate/infra/metrics"
	"github.com/kilianp07/jobgate/internal/eventbus"
)

const defaultTimeout = 3 * time.Second

var client = netip.MustParseAddrPort("127.0.0.1:40000")

// Result is what a scenario run observed.
type Result struct {
	Replies []string
	Status  dispatch.Status
	// Registry holds the outcome metrics recorded during the run.
	Registry *prometheus.Registry
}

type replyEmitter chan string

func (r replyEmitter) Emit(_ netip.AddrPort, resp protocol.Response) {
	if resp.IsError() {
		r <- resp.Error
		return
	}
	r <- resp.Result
}

// Run replays sc against a fresh controller and returns an error on the
// first mismatch.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	timeout := defaultTimeout
	if sc.TimeoutMS > 0 {
		timeout = time.Duration(sc.TimeoutMS) * time.Millisecond
	}
	replies := make(replyEmitter, 256)
	ctrl, err := dispatch.NewController(sc.config(), catalog.Default(), replies, logger.NopLogger{})
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		return nil, fmt.Errorf("prom sink: %w", err)
	}
	bus := eventbus.New[events.Event](256)
	ctrl.SetEventBus(bus)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	collected := metrics.StartEventCollector(runCtx, bus, sink, logger.NopLogger{})
	go func() { _ = ctrl.Run(runCtx) }()

	res := &Result{Registry: reg}
	next := func() (string, error) {
		select {
		case r := <-replies:
			res.Replies = append(res.Replies, r)
			return r, nil
		case <-time.After(timeout):
			return "", errors.New("timed out waiting for reply")
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	for i, st := range sc.Steps {
		req, err := protocol.Decode([]byte(st.Send))
		if err != nil {
			return res, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := ctrl.Submit(ctx, dispatch.Submission{Request: req, Sender: client}); err != nil {
			return res, fmt.Errorf("step %d: %w", i+1, err)
		}
		if st.Expect != "" {
			got, err := next()
			if err != nil {
				return res, fmt.Errorf("step %d: %w", i+1, err)
			}
			if got != st.Expect {
				return res, fmt.Errorf("step %d: got reply %q, want %q", i+1, got, st.Expect)
			}
		}
		if st.WaitMS > 0 {
			time.Sleep(time.Duration(st.WaitMS) * time.Millisecond)
		}
	}
	for i, want := range sc.Expected.Replies {
		got, err := next()
		if err != nil {
			return res, fmt.Errorf("reply %d: %w", i+1, err)
		}
		if got != want {
			return res, fmt.Errorf("reply %d: got %q, want %q", i+1, got, want)
		}
	}

	if res.Status, err = ctrl.Status(ctx); err != nil {
		return res, err
	}
	cancel()
	<-ctrl.Done()
	bus.Close()
	<-collected
	return res, sc.check(res.Status)
}

func (sc *Scenario) check(st dispatch.Status) error {
	e := sc.Expected
	if e.Accepted != nil && st.Counters.Accepted != *e.Accepted {
		return fmt.Errorf("accepted: got %d, want %d", st.Counters.Accepted, *e.Accepted)
	}
	if e.Rejected != nil && st.Counters.Rejected != *e.Rejected {
		return fmt.Errorf("rejected: got %d, want %d", st.Counters.Rejected, *e.Rejected)
	}
	if e.QueueLen != nil && st.QueueLen != *e.QueueLen {
		return fmt.Errorf("queue_len: got %d, want %d", st.QueueLen, *e.QueueLen)
	}
	return nil
}
