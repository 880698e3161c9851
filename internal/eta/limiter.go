package eta

import (
	"context"
	"sync"
	"time"
)

// Limiter caps the number of in-flight outbound routing calls and enforces a
// minimum spacing between consecutive dispatches. Both the slot count and the
// spacing are shared engine-wide: concurrent matching requests draw from the
// same third-party quota.
type Limiter struct {
	slots   chan struct{}
	spacing time.Duration

	mu       sync.Mutex
	nextSlot time.Time
}

func NewLimiter(maxInFlight int, spacing time.Duration) *Limiter {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Limiter{
		slots:   make(chan struct{}, maxInFlight),
		spacing: spacing,
	}
}

// Acquire blocks until a concurrency slot is free and the dispatch spacing
// has elapsed, or the context is done. On success the caller must Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	wait := l.reserveDispatch()
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			<-l.slots
			return ctx.Err()
		}
	}
	return nil
}

func (l *Limiter) Release() {
	<-l.slots
}

// reserveDispatch claims the next dispatch slot and returns how long the
// caller must wait before using it. Slots are handed out strictly spacing
// apart even when many goroutines reserve at once.
func (l *Limiter) reserveDispatch() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if l.nextSlot.Before(now) {
		l.nextSlot = now
	}
	wait := l.nextSlot.Sub(now)
	l.nextSlot = l.nextSlot.Add(l.spacing)
	return wait
}
