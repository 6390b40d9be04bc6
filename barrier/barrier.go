// Package barrier provides the per-step synchronization gate used by the executor.
//
// A Barrier expects a fixed number of arrivals and opens exactly once, when
// the last participant arrives. Waiting is always bounded: Wait returns an
// Outcome value instead of blocking forever or relying on panics.
package barrier

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Outcome is the result of waiting on a Barrier.
type Outcome int

const (
	// Released means every participant arrived.
	Released Outcome = iota
	// TimedOut means the wait timeout elapsed before the barrier opened.
	TimedOut
	// Interrupted means the waiter's context was cancelled.
	Interrupted
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case Released:
		return "released"
	case TimedOut:
		return "timed_out"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Barrier is a one-shot countdown gate.
//
// All methods are safe for concurrent use.
type Barrier struct {
	parties   int
	remaining atomic.Int64
	open      chan struct{}
	once      sync.Once
}

// New creates a barrier expecting n arrivals.
//
// A barrier created with n <= 0 is already open.
//
// Parameters:
//   - n: Number of participants
//
// Returns:
//   - *Barrier: A new barrier
func New(n int) *Barrier {
	b := &Barrier{
		parties: n,
		open:    make(chan struct{}),
	}
	b.remaining.Store(int64(n))

	if n <= 0 {
		b.release()
	}

	return b
}

// Arrive records one arrival. The arrival that brings the count to zero
// opens the barrier; arrivals after that are no-ops.
func (b *Barrier) Arrive() {
	if b.remaining.Add(-1) == 0 {
		b.release()
	}
}

// Wait blocks until the barrier opens, the timeout elapses or ctx is done.
//
// A non-positive timeout means no timeout beyond ctx. If the barrier is
// already open, Wait returns Released immediately even when ctx is done.
//
// Parameters:
//   - ctx: Context used to interrupt the wait
//   - timeout: Maximum time to wait
//
// Returns:
//   - Outcome: Released, TimedOut or Interrupted
func (b *Barrier) Wait(ctx context.Context, timeout time.Duration) Outcome {
	select {
	case <-b.open:
		return Released
	default:
	}

	var timerC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case <-b.open:
		return Released
	case <-timerC:
		return TimedOut
	case <-ctx.Done():
		return Interrupted
	}
}

// Done returns a channel that is closed when the barrier opens.
func (b *Barrier) Done() <-chan struct{} {
	return b.open
}

// IsReleased reports whether the barrier has opened.
func (b *Barrier) IsReleased() bool {
	select {
	case <-b.open:
		return true
	default:
		return false
	}
}

// Parties returns the number of arrivals the barrier was created with.
func (b *Barrier) Parties() int {
	return b.parties
}

// Pending returns the number of arrivals still missing, never negative.
func (b *Barrier) Pending() int {
	n := b.remaining.Load()
	if n < 0 {
		return 0
	}

	return int(n)
}

func (b *Barrier) release() {
	b.once.Do(func() {
		close(b.open)
	})
}
