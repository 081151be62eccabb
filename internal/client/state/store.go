// Package state provides Store, a small typed state container with
// reducer-style updates and change listeners, and helpers that mirror a
// whitelisted part of a store into durable key/value storage.
//
// Each service owns its own Store value; nothing here is global, so any
// number of independent instances can live side by side.
package state

import "sync"

// Listener observes a committed change. prev and next are snapshots.
type Listener[S any] func(prev, next S)

type Store[S any] struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	state     S
	nextID    int
	listeners []subscription[S]
}

type subscription[S any] struct {
	id int
	fn Listener[S]
}

func New[S any](initial S) *Store[S] {
	return &Store[S]{state: initial}
}

// Get returns a snapshot of the current state.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies reduce to the current state, commits the result and
// notifies listeners in subscription order. Listeners run one change at a
// time, in commit order, and must not call back into the store; prev and
// next carry everything they need.
func (s *Store[S]) Update(reduce func(S) S) S {
	s.mu.Lock()
	prev := s.state
	next := reduce(prev)
	s.state = next
	ls := make([]subscription[S], len(s.listeners))
	copy(ls, s.listeners)

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range ls {
		l.fn(prev, next)
	}
	return next
}

// Set replaces the whole state.
func (s *Store[S]) Set(next S) {
	s.Update(func(S) S { return next })
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store[S]) Subscribe(fn Listener[S]) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription[S]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
