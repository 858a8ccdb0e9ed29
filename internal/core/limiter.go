package core

// limiter.go bounds how many inputs are decoded at once across all sessions.
//
// Decoding is the only operation that reads an unbounded body, so it is the
// one guarded by a weighted semaphore. When every slot is taken a request
// waits up to maxWait before failing with ErrTooManyDecodes. WaitForDrain
// takes every slot, which only succeeds once in-flight decodes finish.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyDecodes is returned when all decode slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyDecodes = errors.New("too many concurrent loads, please try again later")

// DefaultMaxConcurrentDecodes is the default limit for parallel decodes.
const DefaultMaxConcurrentDecodes = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// DecodeLimiter caps the number of inputs decoded in parallel.
type DecodeLimiter struct {
	sem     *semaphore.Weighted
	size    int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewDecodeLimiter creates a limiter that allows at most maxConcurrent
// simultaneous decodes. Requests that cannot acquire a slot within maxWait
// receive ErrTooManyDecodes.
func NewDecodeLimiter(maxConcurrent int, maxWait time.Duration) *DecodeLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentDecodes
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &DecodeLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		size:    int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a decode slot.
// The caller MUST call Release() when the decode completes (use defer).
func (l *DecodeLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyDecodes
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (l *DecodeLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *DecodeLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of decodes in flight.
func (l *DecodeLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *DecodeLimiter) MaxConcurrent() int {
	return int(l.size)
}

// WaitForDrain blocks until no decode is in flight or ctx is done.
// Used during graceful shutdown.
func (l *DecodeLimiter) WaitForDrain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.size); err != nil {
		return err
	}
	l.sem.Release(l.size)
	return nil
}

// DecodeLimiterStatus is a snapshot of the limiter's state.
type DecodeLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *DecodeLimiter) Status() DecodeLimiterStatus {
	active := l.ActiveCount()
	return DecodeLimiterStatus{
		Active:        active,
		Available:     int(l.size) - active,
		MaxConcurrent: int(l.size),
	}
}
