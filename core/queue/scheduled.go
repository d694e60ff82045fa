package queue

import (
	"container/heap"
	"time"

	"github.com/kilianp07/jobgate/core/model"
)

// Scheduled releases records by increasing ScheduledAt, ties broken by
// arrival order, and only once they are due.
type Scheduled struct {
	h        recordHeap
	capacity int
}

// NewScheduled returns an empty scheduled queue bounded by capacity.
func NewScheduled(capacity int) *Scheduled {
	q := &Scheduled{capacity: capacity}
	heap.Init(&q.h)
	return q
}

func (q *Scheduled) Enqueue(rec model.Record) error {
	if q.h.Len() >= q.capacity {
		return ErrQueueFull
	}
	heap.Push(&q.h, rec)
	return nil
}

// DequeueReady returns the head only if head.ScheduledAt <= now.
func (q *Scheduled) DequeueReady(now time.Time) (model.Record, bool) {
	if q.h.Len() == 0 || !q.h[0].Ready(now) {
		return model.Record{}, false
	}
	return heap.Pop(&q.h).(model.Record), true
}

// Next returns the ScheduledAt of the head, if any.
func (q *Scheduled) Next() (time.Time, bool) {
	if q.h.Len() == 0 {
		return time.Time{}, false
	}
	return q.h[0].ScheduledAt, true
}

func (q *Scheduled) Len() int { return q.h.Len() }

func (q *Scheduled) IsEmpty() bool { return q.h.Len() == 0 }

func (q *Scheduled) Drain() []model.Record {
	out := make([]model.Record, 0, q.h.Len())
	for q.h.Len() > 0 {
		out = append(out, heap.Pop(&q.h).(model.Record))
	}
	return out
}

type recordHeap []model.Record

func (h recordHeap) Len() int { return len(h) }

func (h recordHeap) Less(i, j int) bool {
	if h[i].ScheduledAt.Equal(h[j].ScheduledAt) {
		return h[i].Seq < h[j].Seq
	}
	return h[i].ScheduledAt.Before(h[j].ScheduledAt)
}

func (h recordHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *recordHeap) Push(x any) { *h = append(*h, x.(model.Record)) }

func (h *recordHeap) Pop() any {
	old := *h
	n := len(old)
	rec := old[n-1]
	old[n-1] = model.Record{}
	*h = old[:n-1]
	return rec
}
