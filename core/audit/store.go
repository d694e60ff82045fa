// Package audit persists one record per dispatch outcome and answers
// queries over them. Backends: JSONL file, rotating JSONL, SQLite and an
// in-memory ring.
package audit

import (
	"context"
	"time"
)

// Record captures one dispatched request and its final reply.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id"`
	Configuration string    `json:"configuration"`
	Priority      int       `json:"priority"`
	Sender        string    `json:"sender"`
	Mode          string    `json:"mode"`
	Accepted      bool      `json:"accepted"`
	Reply         string    `json:"reply"`
	WaitMS        int64     `json:"wait_ms"`
}

// Query defines filters for retrieving records. Zero values match all.
type Query struct {
	Start     time.Time
	End       time.Time
	RequestID string
	Accepted  *bool
	// Limit keeps only the most recent records when positive.
	Limit int
}

// Match reports whether r passes the filters of q, ignoring Limit.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RequestID != "" && r.RequestID != q.RequestID {
		return false
	}
	if q.Accepted != nil && r.Accepted != *q.Accepted {
		return false
	}
	return true
}

func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards everything.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
