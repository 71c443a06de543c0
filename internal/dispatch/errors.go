package dispatch

import "github.com/pkg/errors"

var (
	// ErrClosed is returned when work is sent to a thread that has stopped, or to a
	// dispatcher whose wrapped object has been torn down. It is terminal.
	ErrClosed = errors.New("dispatch: closed")

	// ErrNotRunning is returned when work is sent to a thread that was never started.
	ErrNotRunning = errors.New("dispatch: thread not running")
)
