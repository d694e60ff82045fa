package model

import (
	"encoding/json"
	"net/netip"
	"time"
)

// Encoding identifies the wire format a request arrived in. Replies use the
// same encoding.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingText
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingText:
		return "text"
	default:
		return "unknown"
	}
}

// ReplyTo is the return path captured when a datagram arrives. The transport
// is connectionless, so it travels with the request until the final reply.
type ReplyTo struct {
	Addr     netip.AddrPort
	Encoding Encoding
	// RawID is the envelope id exactly as received, echoed in JSON replies.
	RawID json.RawMessage
}

// Record is a request that passed validation. It never changes after
// creation; only its position in the queue does.
type Record struct {
	ID            string
	Configuration string
	Priority      int
	SubmittedAt   time.Time
	// ScheduledAt is the earliest dispatch time. Equal to SubmittedAt unless
	// the request asked for a delay.
	ScheduledAt time.Time
	// Seq is the arrival order, used to break ScheduledAt ties.
	Seq   uint64
	Reply ReplyTo
}

// Ready reports whether the record may be dispatched at now.
func (r Record) Ready(now time.Time) bool {
	return !r.ScheduledAt.After(now)
}

// Wait returns how long the record stayed queued if dispatched at now.
func (r Record) Wait(now time.Time) time.Duration {
	return now.Sub(r.SubmittedAt)
}
