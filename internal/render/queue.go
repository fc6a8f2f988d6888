// Package render implements the coalescing draw queue: worker draw
// instructions are batched and applied to the surface exactly once per
// display refresh tick, however many arrive in between.
package render

import (
	"sync"

	"github.com/mthille/easel/internal/protocol"
)

// Surface is the drawing target a flush executes against. The canvas
// implements it; tests substitute a recorder.
type Surface interface {
	Apply(instr protocol.Instruction) error
}

// Scheduler registers a callback to run at the next refresh tick. The
// production scheduler is the frame Ticker; tests drive ticks by hand.
type Scheduler interface {
	Schedule(fn func())
}

// Queue is the ordered, append-only instruction queue.
//
// Enqueue appends; the first enqueue after a flush registers exactly one
// refresh callback and marks a flush as scheduled. Further enqueues ride
// along. The flush applies every queued instruction in enqueue order,
// clears the queue, and un-marks the flag, all before the next tick can
// observe it. Instructions are never deduplicated or merged.
type Queue struct {
	surface Surface
	sched   Scheduler

	// onError receives per-instruction failures (an unparsable color).
	// A failed instruction is skipped; the batch continues.
	onError func(error)

	mu        sync.Mutex
	pending   []protocol.Instruction
	scheduled bool
}

// NewQueue builds a queue flushing into surface on sched's ticks.
// onError may be nil.
func NewQueue(surface Surface, sched Scheduler, onError func(error)) *Queue {
	if onError == nil {
		onError = func(error) {}
	}
	return &Queue{surface: surface, sched: sched, onError: onError}
}

// Enqueue appends one instruction and schedules a flush if none is
// pending. Safe to call from the transport's delivery goroutine.
func (q *Queue) Enqueue(instr protocol.Instruction) {
	q.mu.Lock()
	q.pending = append(q.pending, instr)
	schedule := !q.scheduled
	if schedule {
		q.scheduled = true
	}
	q.mu.Unlock()

	if schedule {
		q.sched.Schedule(q.flush)
	}
}

// flush runs on the scheduler's tick. It takes the whole batch and clears
// the scheduled flag first, so instructions arriving during execution
// schedule the next tick rather than being lost or double-flushed.
func (q *Queue) flush() {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.scheduled = false
	q.mu.Unlock()

	for _, instr := range batch {
		if err := q.surface.Apply(instr); err != nil {
			q.onError(err)
		}
	}
}

// Len reports the number of instructions waiting for the next flush.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
