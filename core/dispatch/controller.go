// Package dispatch owns the admission state machine. A single goroutine
// (Controller.Run) serialises submissions, control commands, ticks and
// status requests, so the queue and the server state need no locking.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/kilianp07/jobgate/core/catalog"
	"github.com/kilianp07/jobgate/core/events"
	"github.com/kilianp07/jobgate/core/logger"
	"github.com/kilianp07/jobgate/core/model"
	"github.com/kilianp07/jobgate/core/monitoring"
	"github.com/kilianp07/jobgate/core/protocol"
	"github.com/kilianp07/jobgate/core/queue"
	"github.com/kilianp07/jobgate/core/tick"
	"github.com/kilianp07/jobgate/internal/eventbus"
)

// ErrClosed is returned once the controller loop has exited.
var ErrClosed = errors.New("dispatch: controller closed")

// Emitter delivers replies to clients. Emit must not block.
type Emitter interface {
	Emit(to netip.AddrPort, resp protocol.Response)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(to netip.AddrPort, resp protocol.Response)

func (f EmitterFunc) Emit(to netip.AddrPort, resp protocol.Response) { f(to, resp) }

// Submission is a decoded request together with its return address.
type Submission struct {
	Request protocol.Request
	Sender  netip.AddrPort
}

// Controller is the dispatch controller.
type Controller struct {
	cfg      Config
	interval time.Duration
	catalog  *catalog.Catalog
	emitter  Emitter
	log      logger.Logger
	bus      *eventbus.Bus[events.Event]
	hook     func(model.Record)
	now      func() time.Time

	inbox     chan Submission
	statusReq chan chan Status
	done      chan struct{}
	started   atomic.Bool

	// loop-owned state
	queue       queue.Queue
	ticks       *tick.Source
	available   bool
	paused      bool
	dispatching atomic.Bool
	seq         uint64
	counters    Counters
}

// NewController creates a controller. Nothing runs until Run is called.
func NewController(cfg Config, cat *catalog.Catalog, em Emitter, log logger.Logger) (*Controller, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cat == nil || em == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewController")
	}
	c := &Controller{
		cfg:       cfg,
		interval:  cfg.Interval(),
		catalog:   cat,
		emitter:   em,
		log:       log,
		now:       time.Now,
		inbox:     make(chan Submission, cfg.InboxSize),
		statusReq: make(chan chan Status),
		done:      make(chan struct{}),
		ticks:     tick.NewSource(),
		available: true,
	}
	if cfg.Mode != ModeImmediate {
		q, err := queue.New(cfg.order(), cfg.QueueCapacity)
		if err != nil {
			return nil, err
		}
		c.queue = q
	}
	return c, nil
}

// SetEventBus configures the bus that receives controller events. It must
// be called before Run.
func (c *Controller) SetEventBus(bus *eventbus.Bus[events.Event]) { c.bus = bus }

// SetDispatchHook installs a function called for each record while it is in
// dispatch. It must be called before Run.
func (c *Controller) SetDispatchHook(f func(model.Record)) { c.hook = f }

// Mode returns the configured dispatch mode.
func (c *Controller) Mode() Mode { return c.cfg.Mode }

// Dispatching reports whether a record is in dispatch right now.
func (c *Controller) Dispatching() bool { return c.dispatching.Load() }

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Submit hands a request to the loop. It blocks only while the inbox is
// full and returns ctx.Err() or ErrClosed when it cannot deliver.
func (c *Controller) Submit(ctx context.Context, sub Submission) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.inbox <- sub:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

// Control applies a control command that has no reply address, for example
// one received over MQTT.
func (c *Controller) Control(ctx context.Context, method protocol.Method) error {
	if !method.Control() {
		return fmt.Errorf("%w: %q is not a control command", protocol.ErrUnknownMethod, string(method))
	}
	return c.Submit(ctx, Submission{Request: protocol.Request{Method: method}})
}

// Status returns a snapshot taken inside the loop.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	select {
	case c.statusReq <- reply:
	case <-ctx.Done():
		return Status{}, ctx.Err()
	case <-c.done:
		return Status{}, ErrClosed
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// Run executes the loop until ctx is canceled. On exit the tick is stopped
// and queued records are discarded.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("dispatch: Run called twice")
	}
	defer close(c.done)
	defer c.shutdown()
	defer monitoring.Recover()

	c.log.Infow("dispatch loop started", map[string]any{
		"mode":     string(c.cfg.Mode),
		"interval": c.interval.String(),
		"capacity": c.cfg.QueueCapacity,
	})
	for {
		select {
		case <-ctx.Done():
			return nil
		case sub := <-c.inbox:
			c.handle(sub)
		case t := <-c.ticks.C():
			c.onTick(t)
		case reply := <-c.statusReq:
			reply <- c.snapshot()
		}
	}
}

func (c *Controller) shutdown() {
	c.ticks.Stop()
	if c.queue == nil {
		return
	}
	dropped := c.queue.Drain()
	queueDepth.Set(0)
	if n := len(dropped); n > 0 {
		queueDiscarded.Add(float64(n))
		c.log.Warnf("discarded %d queued records at shutdown", n)
	}
}

func (c *Controller) handle(sub Submission) {
	req := sub.Request
	if err := req.CheckMethod(); err != nil {
		c.log.Debugf("rejecting %s from %s: %v", req.Method, sub.Sender, err)
		c.respond(sub.Sender, c.replyTo(sub), req.ID, "", UnknownMethodReply(string(req.Method)))
		return
	}
	if req.Method == protocol.MethodProcessRequest {
		c.submit(sub)
		return
	}
	c.control(sub)
}

func (c *Controller) control(sub Submission) {
	var text string
	switch sub.Request.Method {
	case protocol.MethodStartProcessing:
		c.paused = false
		// An idle tick stops the source again when the queue is empty.
		c.startTick()
		text = ReplyStarted
	case protocol.MethodStopProcessing:
		c.paused = true
		c.ticks.Stop()
		text = ReplyStopped
	case protocol.MethodSetBusy:
		c.available = false
		text = ReplyBusy
	case protocol.MethodSetAvailable:
		c.available = true
		text = ReplyAvailable
	}
	controlsTotal.WithLabelValues(string(sub.Request.Method)).Inc()
	c.log.Infow("control applied", map[string]any{
		"method":    string(sub.Request.Method),
		"available": c.available,
		"paused":    c.paused,
	})
	c.publish(events.ControlEvent{
		Method:    string(sub.Request.Method),
		Available: c.available,
		Paused:    c.paused,
		Time:      c.now(),
	})
	c.respond(sub.Sender, c.replyTo(sub), sub.Request.ID, text, "")
}

func (c *Controller) submit(sub Submission) {
	now := c.now()
	req := sub.Request
	to := c.replyTo(sub)

	if !c.available || (c.queue == nil && c.paused) {
		c.admitted(req, sub.Sender, events.AdmissionBusy, now)
		c.respond(sub.Sender, to, req.ID, ReplyBusyRejection, "")
		return
	}
	rec, ok := c.validate(req, to, now)
	if !ok {
		c.admitted(req, sub.Sender, events.AdmissionInvalid, now)
		c.respond(sub.Sender, to, req.ID, ReplyInvalid, "")
		return
	}
	if c.queue == nil {
		c.admitted(req, sub.Sender, events.AdmissionInline, now)
		c.dispatch(rec)
		return
	}
	if err := c.queue.Enqueue(rec); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			c.log.Warnf("queue full, rejecting %s", rec.ID)
		}
		c.admitted(req, sub.Sender, events.AdmissionOverflow, now)
		c.respond(sub.Sender, to, rec.ID, ReplyQueueFull, "")
		return
	}
	queueDepth.Set(float64(c.queue.Len()))
	c.counters.Queued++
	if !c.paused {
		c.startTick()
	}
	req.ID = rec.ID
	c.admitted(req, sub.Sender, events.AdmissionQueued, now)
	c.respond(sub.Sender, to, rec.ID, QueuedReply(rec.ID), "")
}

// validate builds a record from a processRequest, or reports it invalid.
func (c *Controller) validate(req protocol.Request, to model.ReplyTo, now time.Time) (model.Record, bool) {
	if req.ParamsErr != nil {
		c.log.Debugf("bad params for %q: %v", req.ID, req.ParamsErr)
		return model.Record{}, false
	}
	conf, prio := string(req.Params.Configuration), string(req.Params.Priority)
	if !c.catalog.Validate(conf, prio) {
		return model.Record{}, false
	}
	p, _ := strconv.Atoi(prio)
	scheduled := now
	if c.cfg.Mode == ModeDelayed {
		at, err := req.Params.Schedule(now)
		if err != nil {
			c.log.Debugf("bad schedule for %q: %v", req.ID, err)
			return model.Record{}, false
		}
		scheduled = at
	}
	c.seq++
	id := req.ID
	if id == "" {
		id = fmt.Sprintf("%d.%d", c.ticks.Count(), c.seq)
	}
	return model.Record{
		ID:            id,
		Configuration: conf,
		Priority:      p,
		SubmittedAt:   now,
		ScheduledAt:   scheduled,
		Seq:           c.seq,
		Reply:         to,
	}, true
}

func (c *Controller) onTick(t time.Time) {
	count := c.ticks.Observe()
	ticksTotal.Inc()
	c.publish(events.TickEvent{Time: t, Count: count})
	if c.queue == nil || c.queue.IsEmpty() {
		c.ticks.Stop()
		tickStops.Inc()
		return
	}
	rec, ok := c.queue.DequeueReady(c.now())
	if !ok {
		return
	}
	queueDepth.Set(float64(c.queue.Len()))
	c.dispatch(rec)
}

// dispatch runs one record to completion. Nothing else is handled by the
// loop until it returns.
func (c *Controller) dispatch(rec model.Record) {
	c.dispatching.Store(true)
	defer c.dispatching.Store(false)

	start := c.now()
	if c.hook != nil {
		c.hook(rec)
	}
	accepted := c.catalog.ValidateConfiguration(rec.Configuration) && catalog.PriorityInRange(rec.Priority)
	text, result := ReplyInvalid, "invalid"
	if accepted {
		text, result = AcceptedReply(rec, c.cfg.EchoBody), "accepted"
		c.counters.Accepted++
	} else {
		c.counters.Invalid++
	}
	c.respond(rec.Reply.Addr, rec.Reply, rec.ID, text, "")
	end := c.now()
	c.counters.Dispatched++

	outcomesTotal.WithLabelValues(result).Inc()
	dispatchDuration.Observe(end.Sub(start).Seconds())
	queueWait.Observe(rec.Wait(start).Seconds())
	c.log.Debugw("dispatched", map[string]any{
		"id":       rec.ID,
		"accepted": accepted,
		"wait":     rec.Wait(start).String(),
	})
	c.publish(events.OutcomeEvent{
		Record:   rec,
		Accepted: accepted,
		Reply:    text,
		Wait:     rec.Wait(start),
		Duration: end.Sub(start),
		Time:     end,
	})
}

func (c *Controller) startTick() {
	if c.interval > 0 {
		c.ticks.Start(c.interval)
	}
}

func (c *Controller) replyTo(sub Submission) model.ReplyTo {
	return model.ReplyTo{Addr: sub.Sender, Encoding: sub.Request.Encoding, RawID: sub.Request.RawID}
}

func (c *Controller) respond(addr netip.AddrPort, to model.ReplyTo, id, result, errText string) {
	if !addr.IsValid() {
		return
	}
	c.emitter.Emit(addr, protocol.Response{
		ID:       id,
		RawID:    to.RawID,
		Result:   result,
		Error:    errText,
		Encoding: to.Encoding,
	})
}

func (c *Controller) admitted(req protocol.Request, sender netip.AddrPort, adm events.Admission, now time.Time) {
	submissionsTotal.WithLabelValues(string(adm)).Inc()
	c.counters.Submitted++
	if adm != events.AdmissionQueued && adm != events.AdmissionInline {
		c.counters.Rejected++
	}
	qlen := 0
	if c.queue != nil {
		qlen = c.queue.Len()
	}
	c.publish(events.SubmissionEvent{
		RequestID:     req.ID,
		Configuration: string(req.Params.Configuration),
		Priority:      string(req.Params.Priority),
		Sender:        sender.String(),
		Admission:     adm,
		QueueLen:      qlen,
		Time:          now,
	})
}

func (c *Controller) publish(ev events.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
