// Package proxy wraps tracks so that they can be used from any goroutine. Every
// call is marshaled onto the track's owning thread and its result returned to the
// caller. Once a proxy is closed, or its thread has stopped, every call fails
// with dispatch.ErrClosed.
package proxy

import (
	"github.com/lanikai/mediacore/internal/dispatch"
	"github.com/lanikai/mediacore/internal/track"
)

type trackProxy[T track.Track] struct {
	d *dispatch.Dispatcher[T]
}

// Thread returns the owning thread.
func (p *trackProxy[T]) Thread() *dispatch.Thread {
	return p.d.Thread()
}

func (p *trackProxy[T]) Kind() (string, error) {
	return dispatch.Call(p.d, func(t T) string { return t.Kind() })
}

func (p *trackProxy[T]) Label() (string, error) {
	return dispatch.Call(p.d, func(t T) string { return t.Label() })
}

func (p *trackProxy[T]) Enabled() (bool, error) {
	return dispatch.Call(p.d, func(t T) bool { return t.Enabled() })
}

func (p *trackProxy[T]) State() (track.TrackState, error) {
	return dispatch.Call(p.d, func(t T) track.TrackState { return t.State() })
}

func (p *trackProxy[T]) SetEnabled(enabled bool) (bool, error) {
	return dispatch.Call(p.d, func(t T) bool { return t.SetEnabled(enabled) })
}

func (p *trackProxy[T]) SetState(state track.TrackState) (bool, error) {
	return dispatch.Call(p.d, func(t T) bool { return t.SetState(state) })
}

// RegisterObserver subscribes o to property changes. o is called on the owning
// thread.
func (p *trackProxy[T]) RegisterObserver(o track.Observer) error {
	return dispatch.Do(p.d, func(t T) { t.RegisterObserver(o) })
}

func (p *trackProxy[T]) UnregisterObserver(o track.Observer) error {
	return dispatch.Do(p.d, func(t T) { t.UnregisterObserver(o) })
}

// Close closes the wrapped track on the owning thread. If the track refuses,
// the proxy stays usable.
func (p *trackProxy[T]) Close() error {
	return p.d.Close(func(t T) error { return t.Close() })
}
