package proxy

import (
	"github.com/lanikai/mediacore/internal/dispatch"
	"github.com/lanikai/mediacore/internal/track"
)

// AudioTrackProxy exposes a track.AudioTrack to any goroutine.
type AudioTrackProxy struct {
	trackProxy[*track.AudioTrack]
}

// NewRemoteAudioTrack constructs a remote audio track on thread.
func NewRemoteAudioTrack(thread *dispatch.Thread, label string) (*AudioTrackProxy, error) {
	return constructAudio(thread, func() *track.AudioTrack {
		return track.NewRemoteAudioTrack(label)
	})
}

// NewLocalAudioTrack constructs an audio track fed by device on thread.
func NewLocalAudioTrack(thread *dispatch.Thread, label string, device track.AudioDevice) (*AudioTrackProxy, error) {
	return constructAudio(thread, func() *track.AudioTrack {
		return track.NewLocalAudioTrack(label, device)
	})
}

// AdoptAudioTrack takes ownership of an existing track. The caller must not use
// impl directly afterwards.
func AdoptAudioTrack(thread *dispatch.Thread, impl *track.AudioTrack) (*AudioTrackProxy, error) {
	d, err := dispatch.Bind(thread, impl)
	if err != nil {
		return nil, err
	}
	return &AudioTrackProxy{trackProxy[*track.AudioTrack]{d: d}}, nil
}

func constructAudio(thread *dispatch.Thread, ctor func() *track.AudioTrack) (*AudioTrackProxy, error) {
	d, err := dispatch.Construct(thread, func() (*track.AudioTrack, error) { return ctor(), nil })
	if err != nil {
		return nil, err
	}
	return &AudioTrackProxy{trackProxy[*track.AudioTrack]{d: d}}, nil
}

func (p *AudioTrackProxy) AudioDevice() (track.AudioDevice, error) {
	return dispatch.Call(p.d, func(t *track.AudioTrack) track.AudioDevice { return t.AudioDevice() })
}
