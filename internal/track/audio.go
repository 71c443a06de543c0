package track

import (
	"github.com/pion/webrtc/v4"
)

// AudioDevice is an audio capture backend feeding a local audio track.
type AudioDevice interface {
	Name() string
}

type AudioTrack struct {
	base
	device AudioDevice
}

// NewRemoteAudioTrack creates a track for audio received from a peer.
func NewRemoteAudioTrack(label string) *AudioTrack {
	return &AudioTrack{base: newBase(webrtc.RTPCodecTypeAudio, label)}
}

// NewLocalAudioTrack creates a track fed by device.
func NewLocalAudioTrack(label string, device AudioDevice) *AudioTrack {
	return &AudioTrack{
		base:   newBase(webrtc.RTPCodecTypeAudio, label),
		device: device,
	}
}

// AudioDevice returns the backing device, or nil for a remote track.
func (t *AudioTrack) AudioDevice() AudioDevice {
	return t.device
}

func (t *AudioTrack) Close() error {
	t.SetState(Ended)
	return nil
}
