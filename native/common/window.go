package common

import (
	"errors"
	"math"
)

var (
	ErrWindowEventsExceeded  = errors.New("window events exceeded")
	ErrWindowCounterOverflow = errors.New("window counter overflow")
)

// WindowUsage captures the usage counters for one rate-limit window.
type WindowUsage struct {
	Events   uint32
	WindowID uint64
}

// Window defines an event budget enforced per fixed-length time window.
type Window struct {
	MaxEvents     uint32
	LengthSeconds uint64
}

// WindowID derives the window bucket for a unix timestamp. A zero-length
// window collapses everything into a single bucket.
func (w Window) WindowID(nowUnix uint64) uint64 {
	if w.LengthSeconds == 0 {
		return 0
	}
	return nowUnix / w.LengthSeconds
}

// CheckWindow verifies whether additional events fit within the configured
// budget. The returned WindowUsage reflects the updated counters when the
// budget is not exceeded; on failure the previous usage is returned
// unchanged so callers can commit atomically.
func CheckWindow(w Window, nowWindow uint64, prev WindowUsage, add uint32) (WindowUsage, error) {
	next := prev
	if prev.WindowID != nowWindow {
		next = WindowUsage{WindowID: nowWindow}
	}
	if add > 0 {
		if next.Events > math.MaxUint32-add {
			return prev, ErrWindowCounterOverflow
		}
		next.Events += add
	}
	if w.MaxEvents > 0 && next.Events > w.MaxEvents {
		return prev, ErrWindowEventsExceeded
	}
	return next, nil
}
