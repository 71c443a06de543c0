package capture

import (
	"sync"
)

// A LoopFunc is a capture loop. It should terminate promptly when quit is closed.
type LoopFunc func(quit <-chan struct{})

// Loop runs a LoopFunc in at most one goroutine at a time. Backends use it for
// their capture goroutine.
type Loop struct {
	// Closed when Stop is requested, to trigger loop exit.
	quit chan struct{}

	// Closed when the loop actually terminates.
	terminated chan struct{}

	sync.Mutex
}

// Start launches run. It returns false if a loop is already running.
func (l *Loop) Start(run LoopFunc) bool {
	l.Lock()
	defer l.Unlock()

	if l.quit != nil {
		return false
	}
	quit := make(chan struct{})
	terminated := make(chan struct{})
	l.quit, l.terminated = quit, terminated

	go func() {
		defer close(terminated)
		run(quit)
	}()
	return true
}

// Stop signals the loop to quit and waits for it. It must not be called from
// the loop itself.
func (l *Loop) Stop() {
	l.Lock()
	defer l.Unlock()

	if l.quit == nil {
		return
	}
	close(l.quit)
	<-l.terminated
	l.quit = nil
	l.terminated = nil
}

// Running reports whether the loop was started and not yet stopped. A loop that
// returned on its own still counts as running until Stop.
func (l *Loop) Running() bool {
	l.Lock()
	defer l.Unlock()
	return l.quit != nil
}

// Done reports whether the loop function has returned.
func (l *Loop) Done() bool {
	l.Lock()
	defer l.Unlock()
	if l.terminated == nil {
		return true
	}
	select {
	case <-l.terminated:
		return true
	default:
		return false
	}
}
