// Package protocol converts datagrams to requests and replies to datagrams.
//
// Two encodings are understood. JSON envelopes follow JSON-RPC 2.0:
//
//	{"jsonrpc":"2.0","method":"processRequest","id":1001,
//	 "params":{"configuration":"3x3","priority":"4","delayMs":3000}}
//
// Text datagrams are either "id;configuration;priority[;delayMs]" or one of
// the control words START_PROCESSING, STOP_PROCESSING, BUSY and AVAILABLE.
// Replies use the encoding of the request: a JSON envelope carrying result or
// error, or the bare text.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kilianp07/jobgate/core/model"
)

// Version is the protocol marker carried by JSON envelopes.
const Version = "2.0"

var (
	// ErrMalformedEnvelope means the datagram could not be parsed at all.
	ErrMalformedEnvelope = errors.New("malformed envelope")
	// ErrUnknownMethod means the envelope parsed but names no known method.
	ErrUnknownMethod = errors.New("unknown method")
)

// Method names an operation.
type Method string

const (
	MethodProcessRequest  Method = "processRequest"
	MethodStartProcessing Method = "startProcessing"
	MethodStopProcessing  Method = "stopProcessing"
	MethodSetBusy         Method = "setBusy"
	MethodSetAvailable    Method = "setAvailable"
)

// Known reports whether m is one of the supported methods.
func (m Method) Known() bool {
	switch m {
	case MethodProcessRequest, MethodStartProcessing, MethodStopProcessing, MethodSetBusy, MethodSetAvailable:
		return true
	}
	return false
}

// Control reports whether m is a control command rather than a job.
func (m Method) Control() bool { return m.Known() && m != MethodProcessRequest }

// Text holds a scalar field that clients send either as a JSON string or as
// a bare number. The value is kept as text; validation happens later.
type Text string

// UnmarshalJSON accepts strings, numbers and booleans. Null leaves it empty.
func (t *Text) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*t = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*t = Text(v)
	case strings.HasPrefix(s, "{"), strings.HasPrefix(s, "["):
		return fmt.Errorf("expected scalar, got %s", s)
	default:
		*t = Text(s)
	}
	return nil
}

// Params carries the job fields of a processRequest call.
type Params struct {
	Configuration Text  `json:"configuration"`
	Priority      Text  `json:"priority"`
	DelayMs       int64 `json:"delayMs,omitempty"`
	// ScheduledAt is an RFC 3339 timestamp; it wins over DelayMs.
	ScheduledAt string `json:"scheduledAt,omitempty"`
}

// MaxDelayMs is the largest delay that fits in a time.Duration.
const MaxDelayMs = math.MaxInt64 / int64(time.Millisecond)

// Schedule returns the earliest dispatch time for a request received at now.
func (p Params) Schedule(now time.Time) (time.Time, error) {
	if p.ScheduledAt != "" {
		at, err := time.Parse(time.RFC3339, p.ScheduledAt)
		if err != nil {
			return time.Time{}, fmt.Errorf("scheduledAt: %w", err)
		}
		if at.Before(now) {
			return now, nil
		}
		return at, nil
	}
	if p.DelayMs < 0 {
		return time.Time{}, fmt.Errorf("negative delay %d", p.DelayMs)
	}
	if p.DelayMs > MaxDelayMs {
		return time.Time{}, fmt.Errorf("delay %d exceeds %d", p.DelayMs, MaxDelayMs)
	}
	return now.Add(time.Duration(p.DelayMs) * time.Millisecond), nil
}

// Request is a decoded datagram.
type Request struct {
	Method Method
	// ID is the printable request id, empty when the client sent none.
	ID string
	// RawID is the id as it appeared in the JSON envelope.
	RawID  json.RawMessage
	Params Params
	// ParamsErr is set when the envelope parsed but its params did not.
	// Such a request is answered as invalid rather than dropped.
	ParamsErr error
	Encoding  model.Encoding
}

// CheckMethod returns ErrUnknownMethod for unsupported methods.
func (r Request) CheckMethod() error {
	if !r.Method.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, string(r.Method))
	}
	return nil
}

// Response is a reply to one request.
type Response struct {
	ID       string
	RawID    json.RawMessage
	Result   string
	Error    string
	Encoding model.Encoding
}

// IsError reports whether the response carries an error payload.
func (r Response) IsError() bool { return r.Error != "" }
