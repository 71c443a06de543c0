//////////////////////////////////////////////////////////////////////////////
//
// Owning thread: a single goroutine that executes queued work in arrival order
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package dispatch

import (
	"fmt"
	"sync"

	"github.com/petermattis/goid"

	"github.com/lanikai/mediacore/internal/logging"
)

var log = logging.DefaultLogger.WithTag("dispatch")

type threadState int

const (
	threadIdle threadState = iota
	threadRunning
	threadStopped
)

// A message is one unit of work plus the means to signal its completion.
type message struct {
	fn func()

	// Closed once fn has run (or has been abandoned). Nil for posted messages.
	done chan struct{}

	// Set before done is closed.
	err      error
	panicked interface{}
}

// A Thread is a goroutine that owns some state. Work submitted from any goroutine is
// executed on the Thread's goroutine, one item at a time, in the order it arrived.
type Thread struct {
	name string

	state threadState
	queue []*message

	// Goroutine id of the run loop, valid while running.
	gid int64

	// Wakes the run loop when the queue becomes non-empty or the thread is stopping.
	wake chan struct{}

	// Closed when the run loop terminates.
	terminated chan struct{}

	mu sync.Mutex
}

// NewThread returns an idle thread. Call Start before sending work to it.
func NewThread(name string) *Thread {
	return &Thread{
		name:       name,
		wake:       make(chan struct{}, 1),
		terminated: make(chan struct{}),
	}
}

func (t *Thread) Name() string {
	return t.name
}

// Start launches the thread's goroutine. A thread can only be started once.
func (t *Thread) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case threadRunning:
		return fmt.Errorf("dispatch: thread %q already running", t.name)
	case threadStopped:
		return ErrClosed
	}
	t.state = threadRunning

	started := make(chan int64)
	go t.run(started)
	t.gid = <-started

	log.Debug("Started thread %q (goroutine %d)", t.name, t.gid)
	return nil
}

// Stop terminates the thread after the item currently executing (if any) completes.
// Items still queued fail with ErrClosed. Stop is idempotent. Calling Stop from the
// thread itself does not wait for termination.
func (t *Thread) Stop() {
	t.mu.Lock()
	if t.state != threadRunning {
		t.state = threadStopped
		t.mu.Unlock()
		return
	}
	t.state = threadStopped
	pending := t.queue
	t.queue = nil
	t.mu.Unlock()

	for _, m := range pending {
		m.abandon()
	}
	t.signal()

	if !t.IsCurrent() {
		<-t.terminated
	}
	log.Debug("Stopped thread %q, abandoned %d queued items", t.name, len(pending))
}

// Running reports whether the thread has been started and not yet stopped.
func (t *Thread) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == threadRunning
}

// IsCurrent reports whether the caller is running on this thread's goroutine.
func (t *Thread) IsCurrent() bool {
	t.mu.Lock()
	gid, running := t.gid, t.state != threadIdle
	t.mu.Unlock()
	return running && gid == goid.Get()
}

// Send runs fn on the thread and waits for it to finish. If the caller is already on
// the thread, fn runs in place. A panic in fn is re-raised in the caller.
func (t *Thread) Send(fn func()) error {
	if t.IsCurrent() {
		fn()
		return nil
	}

	m := &message{fn: fn, done: make(chan struct{})}
	if err := t.enqueue(m); err != nil {
		return err
	}
	<-m.done

	if m.panicked != nil {
		panic(m.panicked)
	}
	return m.err
}

// Post queues fn to run on the thread without waiting for it.
func (t *Thread) Post(fn func()) error {
	return t.enqueue(&message{fn: fn})
}

func (t *Thread) enqueue(m *message) error {
	t.mu.Lock()
	switch t.state {
	case threadIdle:
		t.mu.Unlock()
		return ErrNotRunning
	case threadStopped:
		t.mu.Unlock()
		return ErrClosed
	}
	t.queue = append(t.queue, m)
	t.mu.Unlock()

	t.signal()
	return nil
}

func (t *Thread) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
		// Wakeup already pending.
	}
}

// next pops the oldest queued message. Returns false once the thread is stopped.
func (t *Thread) next() (*message, bool) {
	for {
		t.mu.Lock()
		if t.state == threadStopped {
			t.mu.Unlock()
			return nil, false
		}
		if len(t.queue) > 0 {
			m := t.queue[0]
			t.queue[0] = nil
			t.queue = t.queue[1:]
			t.mu.Unlock()
			return m, true
		}
		t.mu.Unlock()
		<-t.wake
	}
}

func (t *Thread) run(started chan<- int64) {
	defer close(t.terminated)
	started <- goid.Get()

	for {
		m, ok := t.next()
		if !ok {
			return
		}
		m.execute(t.name)
	}
}

func (m *message) execute(thread string) {
	defer func() {
		if r := recover(); r != nil {
			if m.done == nil {
				log.Error("Posted work on thread %q panicked: %v", thread, r)
			}
			m.panicked = r
		}
		if m.done != nil {
			close(m.done)
		}
	}()
	m.fn()
}

func (m *message) abandon() {
	if m.done != nil {
		m.err = ErrClosed
		close(m.done)
	}
}
