package proxy

import (
	"github.com/lanikai/mediacore/internal/capture"
	"github.com/lanikai/mediacore/internal/dispatch"
	"github.com/lanikai/mediacore/internal/logging"
	"github.com/lanikai/mediacore/internal/track"
)

var log = logging.DefaultLogger.WithTag("proxy")

// VideoTrackProxy exposes a track.VideoTrack to any goroutine.
type VideoTrackProxy struct {
	trackProxy[*track.VideoTrack]

	// Detaches from the capture device.
	onClose func()
}

// NewRemoteVideoTrack constructs a remote video track on thread.
func NewRemoteVideoTrack(thread *dispatch.Thread, label string) (*VideoTrackProxy, error) {
	d, err := dispatch.Construct(thread, func() (*track.VideoTrack, error) {
		return track.NewRemoteVideoTrack(label), nil
	})
	if err != nil {
		return nil, err
	}
	return &VideoTrackProxy{trackProxy: trackProxy[*track.VideoTrack]{d: d}}, nil
}

// NewLocalVideoTrack constructs a video track around device on thread. The
// track follows the device: it goes live when capture runs and fails when the
// device does.
func NewLocalVideoTrack(thread *dispatch.Thread, label string, device *capture.Device) (*VideoTrackProxy, error) {
	d, err := dispatch.Construct(thread, func() (*track.VideoTrack, error) {
		return track.NewLocalVideoTrack(label, device), nil
	})
	if err != nil {
		return nil, err
	}
	p := &VideoTrackProxy{trackProxy: trackProxy[*track.VideoTrack]{d: d}}
	p.followDevice(device)
	return p, nil
}

// AdoptVideoTrack takes ownership of an existing track. The caller must not use
// impl directly afterwards.
func AdoptVideoTrack(thread *dispatch.Thread, impl *track.VideoTrack) (*VideoTrackProxy, error) {
	d, err := dispatch.Bind(thread, impl)
	if err != nil {
		return nil, err
	}
	p := &VideoTrackProxy{trackProxy: trackProxy[*track.VideoTrack]{d: d}}
	if device := impl.CaptureDevice(); device != nil {
		p.followDevice(device)
	}
	return p, nil
}

// followDevice mirrors device state changes onto the track. The changes are
// reported on device goroutines, so they are posted to the owning thread.
func (p *VideoTrackProxy) followDevice(device *capture.Device) {
	conn := device.StateChanged.Connect(func(_ *capture.Device, s capture.State) {
		st, ok := track.StateFor(s)
		if !ok {
			return
		}
		// Fails only once the proxy is closed.
		_ = dispatch.Post(p.d, func(t *track.VideoTrack) {
			t.SetState(st)
		})
	})

	p.onClose = func() {
		device.StateChanged.Disconnect(conn)
	}
}

// CaptureDevice returns the backing device, or nil for a remote track. The
// device is safe for use from its control goroutine.
func (p *VideoTrackProxy) CaptureDevice() (*capture.Device, error) {
	return dispatch.Call(p.d, func(t *track.VideoTrack) *capture.Device { return t.CaptureDevice() })
}

func (p *VideoTrackProxy) AddRenderer(r track.Renderer) error {
	return dispatch.Do(p.d, func(t *track.VideoTrack) { t.AddRenderer(r) })
}

func (p *VideoTrackProxy) RemoveRenderer(r track.Renderer) error {
	return dispatch.Do(p.d, func(t *track.VideoTrack) { t.RemoveRenderer(r) })
}

// FrameInput returns the sink feeding the track's renderers. The sink itself
// may be used from any goroutine.
func (p *VideoTrackProxy) FrameInput() (track.Renderer, error) {
	return dispatch.Call(p.d, func(t *track.VideoTrack) track.Renderer { return t.FrameInput() })
}

// Close closes the track and its capture device. It fails with
// track.ErrDeviceRunning while the device is still capturing.
func (p *VideoTrackProxy) Close() error {
	err := p.trackProxy.Close()
	if err == nil && p.onClose != nil {
		p.onClose()
	}
	if err != nil {
		log.Debug("close: %v", err)
	}
	return err
}
