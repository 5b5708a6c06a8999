package core

// limiter.go bounds the number of analyses running at once.
//
// A semaphore restricts parallel runs to a configurable maximum. When all
// slots are taken, new requests wait up to maxWait before failing with
// ErrTooManyAnalyses. WaitForDrain lets shutdown wait for running analyses.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyAnalyses is returned when no analysis slot frees up within the
// wait time. Clients should retry after a short delay.
var ErrTooManyAnalyses = errors.New("too many concurrent analyses, please try again later")

// DefaultMaxConcurrentAnalyses is the default limit for parallel runs.
const DefaultMaxConcurrentAnalyses = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// AnalysisLimiter controls concurrent analysis runs using a semaphore.
type AnalysisLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewAnalysisLimiter creates a limiter allowing at most maxConcurrent runs.
// Requests that cannot get a slot within maxWait receive ErrTooManyAnalyses.
func NewAnalysisLimiter(maxConcurrent int, maxWait time.Duration) *AnalysisLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentAnalyses
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &AnalysisLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller must call Release once done.
func (l *AnalysisLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// The caller's own cancellation takes precedence over our timeout.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyAnalyses
	}
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (l *AnalysisLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *AnalysisLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of running analyses.
func (l *AnalysisLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no analysis is running or ctx is done.
func (l *AnalysisLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of the limiter's state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *AnalysisLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
