package dispatch

import (
	"sync"
)

// A Dispatcher exclusively owns an object of type T and only lets it be touched on
// its bound Thread. Every access goes through Do or Call, which marshal onto the
// thread when the caller is elsewhere. Calls arriving from different goroutines are
// serialized in arrival order.
type Dispatcher[T any] struct {
	thread *Thread

	// Only read or written on thread.
	obj    T
	closed bool

	// Guards the fast-path closed check performed off-thread.
	mu       sync.Mutex
	torndown bool
}

// Bind adopts obj. The caller must not retain other references to obj afterwards.
func Bind[T any](thread *Thread, obj T) (*Dispatcher[T], error) {
	if !thread.Running() {
		return nil, ErrNotRunning
	}
	return &Dispatcher[T]{thread: thread, obj: obj}, nil
}

// Construct creates the wrapped object by running ctor on the thread.
func Construct[T any](thread *Thread, ctor func() (T, error)) (*Dispatcher[T], error) {
	if !thread.Running() {
		return nil, ErrNotRunning
	}

	var (
		obj T
		err error
	)
	if serr := thread.Send(func() { obj, err = ctor() }); serr != nil {
		return nil, serr
	}
	if err != nil {
		return nil, err
	}
	return &Dispatcher[T]{thread: thread, obj: obj}, nil
}

// Thread returns the owning thread.
func (d *Dispatcher[T]) Thread() *Thread {
	return d.thread
}

// Do runs fn against the wrapped object on the owning thread and waits for it.
func Do[T any](d *Dispatcher[T], fn func(T)) error {
	if d.isTornDown() {
		return ErrClosed
	}

	var closed bool
	err := d.thread.Send(func() {
		if d.closed {
			closed = true
			return
		}
		fn(d.obj)
	})
	if err != nil {
		return err
	}
	if closed {
		return ErrClosed
	}
	return nil
}

// Call runs fn against the wrapped object on the owning thread and returns its result.
func Call[T, R any](d *Dispatcher[T], fn func(T) R) (R, error) {
	var result R
	err := Do(d, func(obj T) {
		result = fn(obj)
	})
	return result, err
}

// Post queues fn to run against the wrapped object on the owning thread without
// waiting for it. fn is skipped if the dispatcher has been closed by then.
func Post[T any](d *Dispatcher[T], fn func(T)) error {
	if d.isTornDown() {
		return ErrClosed
	}
	return d.thread.Post(func() {
		if !d.closed {
			fn(d.obj)
		}
	})
}

// Close runs teardown against the wrapped object on the owning thread and drops the
// reference. Later calls fail with ErrClosed. Closing twice returns ErrClosed. If
// teardown fails the object is kept and the dispatcher stays open.
func (d *Dispatcher[T]) Close(teardown func(T) error) error {
	var err error
	derr := Do(d, func(obj T) {
		if teardown != nil {
			if err = teardown(obj); err != nil {
				return
			}
		}
		var zero T
		d.obj = zero
		d.closed = true
	})
	if derr != nil {
		return derr
	}
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.torndown = true
	d.mu.Unlock()
	return nil
}

func (d *Dispatcher[T]) isTornDown() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.torndown
}
