package transport

import (
	"runtime"
	"time"
)

// Capabilities reports what the runtime offers a session. All three fields
// must be true for a session to start.
type Capabilities struct {
	// Parallel reports whether the worker can actually run in parallel
	// with the presentation loop rather than being time-sliced onto one
	// processor.
	Parallel bool

	// Atomics reports whether 32-bit atomic stores on the wake cell round
	// trip correctly.
	Atomics bool

	// SharedMemory reports whether a store on one goroutine is observed by
	// another through the same cell.
	SharedMemory bool
}

// Probe checks the capability preconditions once, before any session state
// exists. A missing capability returns a *CapabilityError and the caller
// must refuse to start; there is no degraded mode.
func Probe() (Capabilities, error) {
	caps := Capabilities{
		Parallel:     runtime.GOMAXPROCS(0) >= 2,
		Atomics:      probeAtomics(),
		SharedMemory: probeSharedVisibility(),
	}

	var missing []string
	if !caps.Parallel {
		missing = append(missing, "parallel execution")
	}
	if !caps.Atomics {
		missing = append(missing, "atomic operations")
	}
	if !caps.SharedMemory {
		missing = append(missing, "shared memory")
	}
	if len(missing) > 0 {
		return caps, &CapabilityError{Missing: missing}
	}
	return caps, nil
}

// probeAtomics verifies a signal/consume round trip on a scratch cell.
func probeAtomics() bool {
	cell := NewWakeCell()
	cell.Signal()
	if !cell.Consume() {
		return false
	}
	// A second consume must observe the reset.
	return !cell.Consume()
}

// probeSharedVisibility verifies that a store made on another goroutine is
// observed through the same cell, the way the worker observes the main
// side's wake signal.
func probeSharedVisibility() bool {
	cell := NewWakeCell()
	done := make(chan struct{})
	go func() {
		cell.Signal()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		return false
	}
	return cell.Consume()
}
