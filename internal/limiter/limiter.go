// Package limiter defines login attempt limiting for the console.
package limiter

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether login is currently allowed and optional retry-after.
	Allow(ctx context.Context, email string) (bool, time.Duration, error)
	// Success resets counters after a successful login.
	Success(ctx context.Context, email string) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, email string) (bool, time.Duration, error)
}

type entry struct {
	fails        int
	updatedAt    time.Time
	blockedUntil time.Time
}

// Memory is an in-process limiter with a sliding window and lockout.
// Counters are keyed by the lower-cased email.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*entry
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

// NewMemory constructs an in-memory limiter. maxFails <= 0 disables locking.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		entries:  map[string]*entry{},
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
	}
}

func key(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *Memory) Allow(_ context.Context, email string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key(email)]
	if !ok {
		return true, 0, nil
	}
	now := l.now()
	if e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for email.
func (l *Memory) Success(_ context.Context, email string) error {
	l.mu.Lock()
	delete(l.entries, key(email))
	l.mu.Unlock()
	return nil
}

// Failure records a failed attempt; may set a block until a future time.
func (l *Memory) Failure(_ context.Context, email string) (bool, time.Duration, error) {
	if l.maxFails <= 0 {
		return false, 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := key(email)
	e, ok := l.entries[k]
	switch {
	case !ok:
		e = &entry{}
		l.entries[k] = e
		e.fails = 1
	case now.Sub(e.updatedAt) > l.window:
		e.fails = 1
	default:
		e.fails++
	}
	e.updatedAt = now

	if e.fails >= l.maxFails {
		e.blockedUntil = now.Add(l.blockFor)
		return true, l.blockFor, nil
	}
	return false, 0, nil
}
