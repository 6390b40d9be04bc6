package barrier

import (
	"context"
	"time"
)

// Set holds the barriers of one scenario run.
//
// For a scenario with N steps the set holds N-1 barriers: barrier i opens
// once every thread has finished step i and gates entry into step i+1.
// There is no barrier before the first step and none after the last one.
// Each barrier is independent; there is no lock spanning the set.
type Set struct {
	barriers []*Barrier
}

// NewSet creates the barriers for a run with the given number of steps and
// participating threads.
//
// Parameters:
//   - steps: Number of steps per thread
//   - parties: Number of threads
//
// Returns:
//   - *Set: A new barrier set
func NewSet(steps, parties int) *Set {
	n := steps - 1
	if n < 0 {
		n = 0
	}

	s := &Set{barriers: make([]*Barrier, n)}
	for i := range s.barriers {
		s.barriers[i] = New(parties)
	}

	return s
}

// Len returns the number of barriers in the set.
func (s *Set) Len() int {
	return len(s.barriers)
}

// At returns the barrier that opens after step, or nil when step has no
// barrier (the last step or out of range).
func (s *Set) At(step int) *Barrier {
	if step < 0 || step >= len(s.barriers) {
		return nil
	}

	return s.barriers[step]
}

// Arrive signals that the caller finished step. It is a no-op for the last step.
func (s *Set) Arrive(step int) {
	if b := s.At(step); b != nil {
		b.Arrive()
	}
}

// ArriveFrom signals arrival on every barrier from step onwards.
//
// A thread that terminates early uses this so that siblings are not left
// waiting for it on later steps.
func (s *Set) ArriveFrom(step int) {
	if step < 0 {
		step = 0
	}

	for i := step; i < len(s.barriers); i++ {
		s.barriers[i].Arrive()
	}
}

// WaitBefore blocks until every thread has finished the step preceding step.
//
// For step 0 it returns Released immediately.
//
// Parameters:
//   - ctx: Context used to interrupt the wait
//   - step: The step the caller is about to start
//   - timeout: Maximum time to wait
//
// Returns:
//   - Outcome: Released, TimedOut or Interrupted
func (s *Set) WaitBefore(ctx context.Context, step int, timeout time.Duration) Outcome {
	b := s.At(step - 1)
	if b == nil {
		return Released
	}

	return b.Wait(ctx, timeout)
}
