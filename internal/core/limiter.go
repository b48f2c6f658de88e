package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyDocuments is returned when every document slot stays occupied
// for longer than the limiter's wait time.
var ErrTooManyDocuments = errors.New("too many documents in progress, please try again later")

// DocumentLimiter bounds how many documents are resolved at once. It is a
// counting semaphore with a bounded wait.
type DocumentLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
	idle   chan struct{} // closed while active == 0
}

// NewDocumentLimiter allows max concurrent documents (at least one).
// Callers wait at most maxWait for a slot; maxWait <= 0 waits until ctx ends.
func NewDocumentLimiter(max int, maxWait time.Duration) *DocumentLimiter {
	if max < 1 {
		max = 1
	}
	idle := make(chan struct{})
	close(idle)
	return &DocumentLimiter{
		slots:   make(chan struct{}, max),
		maxWait: maxWait,
		idle:    idle,
	}
}

// Acquire takes a slot. The caller must Release it.
func (l *DocumentLimiter) Acquire(ctx context.Context) error {
	waitCtx := ctx
	if l.maxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.maxWait)
		defer cancel()
	}

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		if l.active == 0 {
			l.idle = make(chan struct{})
		}
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrTooManyDocuments
	}
}

// Release returns a slot taken by Acquire.
func (l *DocumentLimiter) Release() {
	l.mu.Lock()
	l.active--
	if l.active == 0 {
		close(l.idle)
	}
	l.mu.Unlock()
	<-l.slots
}

// LimiterStatus is a snapshot for monitoring.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports the current usage.
func (l *DocumentLimiter) Status() LimiterStatus {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()
	return LimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until no document is in progress or ctx ends.
func (l *DocumentLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
