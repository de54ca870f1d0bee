// Package lock serializes writes to a single session across service instances.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned when another holder owns the lock.
var ErrNotAcquired = errors.New("lock is held by another request")

// Locker hands out short-lived exclusive locks keyed by name.
type Locker interface {
	// Acquire takes the lock or fails fast with ErrNotAcquired. The returned
	// release func must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Noop is used when no lock backend is configured. Store-level conditional
// writes still guarantee correctness; the lock only reduces contention.
type Noop struct{}

func (Noop) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// SessionKey names the lock for one training session.
func SessionKey(sessionID string) string {
	return "lock:session:" + sessionID
}

const releaseTimeout = 2 * time.Second
