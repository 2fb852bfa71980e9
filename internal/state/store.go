// Package state holds the console's entity slices, their reducers and the
// store that serializes dispatches.
package state

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/newsadmin/internal/model"
)

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("store closed")

// State is the whole read model.
type State struct {
	Auth       Auth
	Authors    Collection[model.Author]
	Categories Collection[model.Category]
	Dashboard  Dashboard
}

// Initial returns the state of a fresh console.
func Initial() State {
	return State{
		Authors:    NewCollection[model.Author](),
		Categories: NewCollection[model.Category](),
		Dashboard:  NewDashboard(),
	}
}

// Reduce is the root reducer. Every action is handled by exactly one slice;
// an action no slice knows is a programming error.
func Reduce(s State, a Action) State {
	var ok bool
	if s.Auth, ok = s.Auth.Reduce(a); ok {
		return s
	}
	if s.Authors, ok = s.Authors.Reduce(a); ok {
		return s
	}
	if s.Categories, ok = s.Categories.Reduce(a); ok {
		return s
	}
	if s.Dashboard, ok = s.Dashboard.Reduce(a); ok {
		return s
	}
	panic(fmt.Sprintf("state: unhandled action %T", a))
}

// Store owns the state. Dispatch applies actions one at a time in call order
// and notifies subscribers before returning.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
	closed bool
	log    *zap.Logger
}

// New creates a store holding Initial().
func New(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{state: Initial(), subs: map[int]func(State){}, log: log}
}

// Dispatch reduces a into the state. Subscribers run on the dispatching
// goroutine and must not call Dispatch themselves.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.state = Reduce(s.state, a)
	s.log.Debug("dispatch", zap.String("action", Name(a)))
	for _, fn := range s.subs {
		fn(s.state)
	}
	return nil
}

// Snapshot returns the current state. Slices and maps inside are shared and
// must be treated as read-only.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every transition and returns its unsubscribe func.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close drops all subscribers; later dispatches fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.subs = map[int]func(State){}
	s.mu.Unlock()
}
