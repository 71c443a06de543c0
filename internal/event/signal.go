// Package event implements synchronous one-to-many notification. Handlers run on the
// goroutine that emits, in the order they were connected, so they must return quickly.
package event

import (
	"sync"
	"sync/atomic"
)

// Connection identifies a connected handler.
type Connection uint64

// Handler receives the emitter and the payload of one emission.
type Handler[S, T any] func(sender S, payload T)

type slot[S, T any] struct {
	id Connection
	fn Handler[S, T]
}

// Signal fans out each Emit to every connected handler. The handler list is
// copy-on-write, so Emit never blocks on Connect or Disconnect from another goroutine.
// The zero value is ready to use.
type Signal[S, T any] struct {
	slots atomic.Pointer[[]slot[S, T]]

	// Serializes writers.
	mu     sync.Mutex
	lastID Connection
}

// Connect adds a handler and returns its connection id.
func (s *Signal[S, T]) Connect(fn Handler[S, T]) Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	var next []slot[S, T]
	if cur := s.slots.Load(); cur != nil {
		next = append(next, (*cur)...)
	}
	next = append(next, slot[S, T]{s.lastID, fn})
	s.slots.Store(&next)
	return s.lastID
}

// Disconnect removes a handler. Returns false if it was not connected.
func (s *Signal[S, T]) Disconnect(c Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.slots.Load()
	if cur == nil {
		return false
	}
	next := make([]slot[S, T], 0, len(*cur))
	found := false
	for _, sl := range *cur {
		if sl.id == c {
			found = true
			continue
		}
		next = append(next, sl)
	}
	if found {
		s.slots.Store(&next)
	}
	return found
}

// DisconnectAll removes every handler.
func (s *Signal[S, T]) DisconnectAll() {
	s.mu.Lock()
	s.slots.Store(nil)
	s.mu.Unlock()
}

// Len returns the number of connected handlers.
func (s *Signal[S, T]) Len() int {
	if cur := s.slots.Load(); cur != nil {
		return len(*cur)
	}
	return 0
}

// Emit calls every connected handler synchronously.
func (s *Signal[S, T]) Emit(sender S, payload T) {
	cur := s.slots.Load()
	if cur == nil {
		return
	}
	for _, sl := range *cur {
		sl.fn(sender, payload)
	}
}
