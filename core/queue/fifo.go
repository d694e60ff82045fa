package queue

import (
	"time"

	"github.com/kilianp07/jobgate/core/model"
)

// FIFO releases records in arrival order.
type FIFO struct {
	items    []model.Record
	head     int
	capacity int
}

// NewFIFO returns an empty FIFO bounded by capacity.
func NewFIFO(capacity int) *FIFO {
	return &FIFO{capacity: capacity}
}

func (q *FIFO) Enqueue(rec model.Record) error {
	if q.Len() >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, rec)
	return nil
}

// DequeueReady returns the head regardless of now.
func (q *FIFO) DequeueReady(_ time.Time) (model.Record, bool) {
	if q.IsEmpty() {
		return model.Record{}, false
	}
	rec := q.items[q.head]
	q.items[q.head] = model.Record{}
	q.head++
	// compact once the consumed prefix dominates the backing array
	if q.head > len(q.items)/2 {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return rec, true
}

func (q *FIFO) Len() int { return len(q.items) - q.head }

func (q *FIFO) IsEmpty() bool { return q.Len() == 0 }

func (q *FIFO) Drain() []model.Record {
	out := append([]model.Record(nil), q.items[q.head:]...)
	q.items = nil
	q.head = 0
	return out
}
