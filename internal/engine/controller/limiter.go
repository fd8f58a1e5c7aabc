package controller

import (
	"sync/atomic"

	"go.trai.ch/rtosm/internal/core/ports"
	"golang.org/x/sync/semaphore"
)

// Limiter is the global non-blocking cap on concurrent updates.
type Limiter struct {
	sem     *semaphore.Weighted
	inUse   atomic.Int64
	metrics ports.Metrics
}

// NewLimiter creates a Limiter admitting at most n concurrent updates.
func NewLimiter(n int, metrics ports.Metrics) *Limiter {
	return &Limiter{
		sem:     semaphore.NewWeighted(int64(n)),
		metrics: metrics,
	}
}

// TryAcquire takes a slot if one is free.
func (l *Limiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.metrics.SetUpdatesInFlight(int(l.inUse.Add(1)))
	return true
}

// Release returns a slot taken by TryAcquire.
func (l *Limiter) Release() {
	l.metrics.SetUpdatesInFlight(int(l.inUse.Add(-1)))
	l.sem.Release(1)
}

// InUse returns the number of slots currently taken.
func (l *Limiter) InUse() int {
	return int(l.inUse.Load())
}
