package track

import (
	"github.com/pion/webrtc/v4"

	"github.com/lanikai/mediacore/internal/capture"
	"github.com/lanikai/mediacore/internal/event"
)

type VideoTrack struct {
	base
	device    *capture.Device
	renderers *Renderers
	frames    event.Connection
	closed    bool
}

// NewRemoteVideoTrack creates a track for video received from a peer. Decoded
// frames are pushed into FrameInput.
func NewRemoteVideoTrack(label string) *VideoTrack {
	return &VideoTrack{
		base:      newBase(webrtc.RTPCodecTypeVideo, label),
		renderers: NewRenderers(),
	}
}

// NewLocalVideoTrack creates a track fed by device. The track owns the device
// and closes it on Close.
func NewLocalVideoTrack(label string, device *capture.Device) *VideoTrack {
	t := NewRemoteVideoTrack(label)
	t.device = device
	rs := t.renderers
	t.frames = device.FrameReady.Connect(func(_ *capture.Device, f *capture.VideoFrame) {
		rs.RenderFrame(f)
	})
	return t
}

// CaptureDevice returns the backing device, or nil for a remote track.
func (t *VideoTrack) CaptureDevice() *capture.Device {
	return t.device
}

func (t *VideoTrack) AddRenderer(r Renderer) {
	t.renderers.Add(r)
}

func (t *VideoTrack) RemoveRenderer(r Renderer) {
	t.renderers.Remove(r)
}

// FrameInput accepts frames for this track's renderers. It is safe to use from
// any goroutine.
func (t *VideoTrack) FrameInput() Renderer {
	return t.renderers
}

func (t *VideoTrack) SetEnabled(enabled bool) bool {
	t.renderers.SetEnabled(enabled)
	return t.base.SetEnabled(enabled)
}

func (t *VideoTrack) SetState(state TrackState) bool {
	if state == Ended {
		t.renderers.SetEnded()
	}
	return t.base.SetState(state)
}

// StateFor maps a capture device state onto the track state it implies, if any.
func StateFor(s capture.State) (TrackState, bool) {
	switch s {
	case capture.Running:
		return Live, true
	case capture.Failed, capture.NoDevice:
		return Failed, true
	}
	return 0, false
}

// Close detaches and closes the capture device. The device must be stopped
// first.
func (t *VideoTrack) Close() error {
	if t.closed {
		return nil
	}
	if t.device != nil {
		if t.device.State().Active() || t.device.IsRunning() {
			return ErrDeviceRunning
		}
		t.device.FrameReady.Disconnect(t.frames)
		if err := t.device.Close(); err != nil {
			log.Warn("video track %q: closing device: %v", t.label, err)
		}
	}
	t.closed = true
	t.SetState(Ended)
	return nil
}
