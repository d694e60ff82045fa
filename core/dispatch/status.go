package dispatch

import "time"

// Counters are running totals kept by the loop.
type Counters struct {
	Submitted  uint64 `json:"submitted"`
	Queued     uint64 `json:"queued"`
	Rejected   uint64 `json:"rejected"`
	Dispatched uint64 `json:"dispatched"`
	Accepted   uint64 `json:"accepted"`
	Invalid    uint64 `json:"invalid"`
}

// Status is a point-in-time view of the controller.
type Status struct {
	Mode          Mode          `json:"mode"`
	Available     bool          `json:"available"`
	Paused        bool          `json:"paused"`
	Ticking       bool          `json:"ticking"`
	TickInterval  time.Duration `json:"tick_interval_ns"`
	TickCount     uint64        `json:"tick_count"`
	QueueLen      int           `json:"queue_len"`
	QueueCapacity int           `json:"queue_capacity"`
	// NextScheduled is the earliest pending ScheduledAt in delayed mode.
	NextScheduled *time.Time `json:"next_scheduled,omitempty"`
	Counters      Counters   `json:"counters"`
}

type nextScheduler interface {
	Next() (time.Time, bool)
}

func (c *Controller) snapshot() Status {
	st := Status{
		Mode:         c.cfg.Mode,
		Available:    c.available,
		Paused:       c.paused,
		Ticking:      c.ticks.Running(),
		TickInterval: c.interval,
		TickCount:    c.ticks.Count(),
		Counters:     c.counters,
	}
	if c.queue != nil {
		st.QueueLen = c.queue.Len()
		st.QueueCapacity = c.cfg.QueueCapacity
		if ns, ok := c.queue.(nextScheduler); ok {
			if at, ok := ns.Next(); ok {
				st.NextScheduled = &at
			}
		}
	}
	return st
}
