package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/jobgate/core/metrics"
)

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(data)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordOutcome(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer func() { _ = sink.Close() }()

	now := time.Now()
	ev := coremetrics.OutcomeEvent{
		RequestID:     "1001",
		Configuration: "3x3",
		Priority:      4,
		Accepted:      true,
		Wait:          1500 * time.Microsecond,
		Duration:      250 * time.Microsecond,
		Time:          now,
	}
	if err := sink.RecordOutcome(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("dispatch_outcome").
		AddTag("configuration", "3x3").
		AddTag("accepted", "true").
		AddTag("component", "dispatch_controller").
		AddField("request_id", "1001").
		AddField("priority", 4).
		AddField("wait_ms", 1.5).
		AddField("duration_ms", 0.25).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != expected {
		t.Errorf("unexpected body: %v\nwant %s", got, expected)
	}
}

func TestInfluxSink_RecordAdmission(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer func() { _ = sink.Close() }()

	now := time.Now()
	if err := sink.RecordAdmission(coremetrics.AdmissionEvent{RequestID: "7", Admission: "overflow", QueueLen: 1024, Time: now}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	expected := strings.TrimSpace(write.PointToLineProtocol(admissionPoint(coremetrics.AdmissionEvent{
		RequestID: "7", Admission: "overflow", QueueLen: 1024, Time: now,
	}), time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != expected {
		t.Errorf("unexpected body: %v", got)
	}
	if !strings.HasPrefix(expected, "admission,admission=overflow") {
		t.Errorf("unexpected line protocol %s", expected)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
