package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// latest runs reads with "latest wins": starting a run cancels the previous
// one, and only the newest run may commit its result.
type latest struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// begin supersedes any run in flight and returns the context and generation of the new one.
func (l *latest) begin(ctx context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	l.cancel = cancel
	return ctx, l.gen
}

// start runs fn only if gen is still the newest run, under the policy lock.
// A run superseded before its intent was dispatched never dispatches it.
func (l *latest) start(gen uint64, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	fn()
	return true
}

// commit runs fn only if gen is still the newest run. fn runs under the
// policy lock so a newer begin cannot interleave with it.
func (l *latest) commit(gen uint64, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	fn()
	return true
}

// end releases the context of run gen.
func (l *latest) end(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen == l.gen && l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// leading admits one run per key at a time; duplicates are rejected, not queued.
type leading struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func newLeading() *leading { return &leading{sems: map[string]*semaphore.Weighted{}} }

// try reports whether the caller may run key; on true it must call the returned release.
func (l *leading) try(key string) (func(), bool) {
	l.mu.Lock()
	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	l.mu.Unlock()

	if !sem.TryAcquire(1) {
		return nil, false
	}
	return func() { sem.Release(1) }, true
}
