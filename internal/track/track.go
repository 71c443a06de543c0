// Package track implements audio and video media tracks. A track is not safe for
// concurrent use; wrap it in a proxy to share it between goroutines.
package track

import (
	"github.com/pion/webrtc/v4"
	"github.com/pkg/errors"

	"github.com/lanikai/mediacore/internal/logging"
)

var log = logging.DefaultLogger.WithTag("track")

var ErrDeviceRunning = errors.New("track: capture device still running")

// TrackState is the lifecycle state of a track.
type TrackState int

const (
	Initializing TrackState = iota
	Live
	Ended
	Failed
)

func (s TrackState) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Live:
		return "live"
	case Ended:
		return "ended"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Track is the behaviour shared by audio and video tracks.
type Track interface {
	Kind() string
	Label() string
	Enabled() bool
	State() TrackState

	// SetEnabled and SetState report whether the value changed. Observers are
	// notified only on change.
	SetEnabled(enabled bool) bool
	SetState(state TrackState) bool

	RegisterObserver(o Observer)
	UnregisterObserver(o Observer)

	// Close releases the track. It ends the track and notifies observers.
	Close() error
}

type base struct {
	Notifier

	kind    webrtc.RTPCodecType
	label   string
	enabled bool
	state   TrackState
}

func newBase(kind webrtc.RTPCodecType, label string) base {
	return base{
		kind:    kind,
		label:   label,
		enabled: true,
		state:   Initializing,
	}
}

func (t *base) Kind() string {
	return t.kind.String()
}

func (t *base) Label() string {
	return t.label
}

func (t *base) Enabled() bool {
	return t.enabled
}

func (t *base) State() TrackState {
	return t.state
}

func (t *base) SetEnabled(enabled bool) bool {
	if t.enabled == enabled {
		return false
	}
	t.enabled = enabled
	t.FireOnChanged()
	return true
}

// SetState changes the state. Ended is final.
func (t *base) SetState(state TrackState) bool {
	if t.state == state || t.state == Ended {
		return false
	}
	log.Debug("%s track %q: %s -> %s", t.Kind(), t.label, t.state, state)
	t.state = state
	t.FireOnChanged()
	return true
}
