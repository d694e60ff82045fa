package dispatch

import (
	"fmt"
	"time"

	"github.com/kilianp07/jobgate/core/queue"
	"github.com/kilianp07/jobgate/core/tick"
)

// Mode selects how submissions reach dispatch.
type Mode string

const (
	// ModeImmediate dispatches every submission on arrival.
	ModeImmediate Mode = "immediate"
	// ModeFIFO queues submissions and dispatches them in arrival order.
	ModeFIFO Mode = "fifo"
	// ModeDelayed queues submissions until their scheduled time.
	ModeDelayed Mode = "delayed"
)

// DefaultInboxSize bounds the channel between the transport and the loop.
const DefaultInboxSize = 256

// Config defines dispatch-related settings.
type Config struct {
	Mode           Mode `json:"mode"`
	TickIntervalMS int  `json:"tick_interval_ms"`
	QueueCapacity  int  `json:"queue_capacity"`
	InboxSize      int  `json:"inbox_size"`
	// EchoBody appends configuration and priority to accepted replies.
	EchoBody bool `json:"echo_body"`
}

// SetDefaults fills in unset values.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeFIFO
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = queue.DefaultCapacity
	}
	if c.InboxSize <= 0 {
		c.InboxSize = DefaultInboxSize
	}
}

// Validate checks the mode and numeric bounds.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeImmediate, ModeFIFO, ModeDelayed:
	default:
		return fmt.Errorf("dispatch: unknown mode %q", c.Mode)
	}
	if c.TickIntervalMS < 0 {
		return fmt.Errorf("dispatch: negative tick_interval_ms %d", c.TickIntervalMS)
	}
	if c.QueueCapacity < 0 || c.InboxSize < 0 {
		return fmt.Errorf("dispatch: negative capacity")
	}
	return nil
}

// Interval returns the tick period for the mode, honouring the override.
// Immediate mode has no tick and returns zero.
func (c Config) Interval() time.Duration {
	switch {
	case c.Mode == ModeImmediate:
		return 0
	case c.TickIntervalMS > 0:
		return time.Duration(c.TickIntervalMS) * time.Millisecond
	case c.Mode == ModeDelayed:
		return tick.DelayedInterval
	default:
		return tick.FIFOInterval
	}
}

// order maps a queued mode to its queue discipline.
func (c Config) order() queue.Order {
	if c.Mode == ModeDelayed {
		return queue.OrderScheduled
	}
	return queue.OrderFIFO
}
