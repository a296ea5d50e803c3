package common

import (
	"errors"
	"testing"
)

func TestCheckWindowResetsOnNewWindow(t *testing.T) {
	w := Window{MaxEvents: 1, LengthSeconds: 3600}
	usage, err := CheckWindow(w, 1, WindowUsage{}, 1)
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	if _, err := CheckWindow(w, 1, usage, 1); !errors.Is(err, ErrWindowEventsExceeded) {
		t.Fatalf("expected window exceeded, got %v", err)
	}
	next, err := CheckWindow(w, 2, usage, 1)
	if err != nil {
		t.Fatalf("new window: %v", err)
	}
	if next.WindowID != 2 || next.Events != 1 {
		t.Fatalf("unexpected usage after reset: %+v", next)
	}
}

func TestCheckWindowFailureLeavesUsageUnchanged(t *testing.T) {
	w := Window{MaxEvents: 2, LengthSeconds: 60}
	usage := WindowUsage{Events: 2, WindowID: 5}
	got, err := CheckWindow(w, 5, usage, 1)
	if !errors.Is(err, ErrWindowEventsExceeded) {
		t.Fatalf("expected exceeded, got %v", err)
	}
	if got != usage {
		t.Fatalf("usage mutated on failure: %+v", got)
	}
}

func TestWindowID(t *testing.T) {
	w := Window{LengthSeconds: 100}
	if w.WindowID(250) != 2 {
		t.Fatalf("unexpected window id")
	}
	if (Window{}).WindowID(250) != 0 {
		t.Fatalf("zero-length window must collapse to bucket 0")
	}
}
