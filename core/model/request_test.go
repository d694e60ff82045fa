package model

import (
	"testing"
	"time"
)

func TestRecordReady(t *testing.T) {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	r := Record{SubmittedAt: now, ScheduledAt: now.Add(3 * time.Second)}
	if r.Ready(now) {
		t.Fatalf("record ready before its schedule")
	}
	if !r.Ready(now.Add(3 * time.Second)) {
		t.Fatalf("record not ready at its schedule")
	}
	if got := r.Wait(now.Add(5 * time.Second)); got != 5*time.Second {
		t.Fatalf("wait = %v", got)
	}
}

func TestEncodingString(t *testing.T) {
	if EncodingJSON.String() != "json" || EncodingText.String() != "text" || Encoding(9).String() != "unknown" {
		t.Fatalf("unexpected encoding names")
	}
}
