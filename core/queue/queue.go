// Package queue holds validated records waiting for dispatch. Queues are not
// safe for concurrent use; the dispatch controller owns them.
package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/jobgate/core/model"
)

// DefaultCapacity bounds a queue when no capacity is configured.
const DefaultCapacity = 1024

// ErrQueueFull is returned by Enqueue when the queue is at capacity.
var ErrQueueFull = errors.New("queue is full")

// Order selects how records leave the queue.
type Order string

const (
	// OrderFIFO releases records in arrival order regardless of time.
	OrderFIFO Order = "fifo"
	// OrderScheduled releases the earliest ScheduledAt first, and only once
	// it is due.
	OrderScheduled Order = "scheduled"
)

// Queue is an admission queue.
type Queue interface {
	Enqueue(rec model.Record) error
	// DequeueReady removes and returns the next eligible record, if any.
	DequeueReady(now time.Time) (model.Record, bool)
	Len() int
	IsEmpty() bool
	// Drain removes every record and returns them in release order.
	Drain() []model.Record
}

// New builds a queue for the given order. A capacity <= 0 uses
// DefaultCapacity.
func New(order Order, capacity int) (Queue, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	switch order {
	case OrderFIFO:
		return NewFIFO(capacity), nil
	case OrderScheduled:
		return NewScheduled(capacity), nil
	default:
		return nil, fmt.Errorf("unknown queue order %q", order)
	}
}
