package tick

import (
	"testing"
	"time"
)

func TestStoppedSourceHasNilChannel(t *testing.T) {
	s := NewSource()
	if s.C() != nil || s.Running() {
		t.Fatalf("new source should be stopped")
	}
	s.Start(0)
	if s.Running() {
		t.Fatalf("zero interval must not start")
	}
}

func TestSourceTicksAndStops(t *testing.T) {
	s := NewSource()
	s.Start(5 * time.Millisecond)
	if !s.Running() || s.Interval() != 5*time.Millisecond {
		t.Fatalf("source not running")
	}
	select {
	case <-s.C():
		s.Observe()
	case <-time.After(time.Second):
		t.Fatalf("no tick received")
	}
	s.Stop()
	if s.Running() || s.C() != nil {
		t.Fatalf("source still running after Stop")
	}
	if s.Count() != 1 {
		t.Fatalf("count = %d", s.Count())
	}
	s.Stop()
}

func TestSourceCoalescesMissedTicks(t *testing.T) {
	s := NewSource()
	s.Start(50 * time.Millisecond)
	defer s.Stop()
	ch := s.C()
	time.Sleep(175 * time.Millisecond)
	<-ch
	select {
	case <-ch:
		t.Fatalf("backlog of ticks delivered")
	default:
	}
}

func TestSourceRestartChangesInterval(t *testing.T) {
	s := NewSource()
	s.Start(time.Hour)
	first := s.C()
	s.Start(time.Hour)
	if s.C() != first {
		t.Fatalf("same interval restart replaced the ticker")
	}
	s.Start(5 * time.Millisecond)
	if s.Interval() != 5*time.Millisecond {
		t.Fatalf("interval not updated")
	}
	select {
	case <-s.C():
	case <-time.After(time.Second):
		t.Fatalf("no tick after reset")
	}
	s.Stop()
}
