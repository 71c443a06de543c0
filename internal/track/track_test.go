package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackProperties(t *testing.T) {
	audio := NewRemoteAudioTrack("mic")
	assert.Equal(t, "audio", audio.Kind())
	assert.Equal(t, "mic", audio.Label())
	assert.True(t, audio.Enabled())
	assert.Equal(t, Initializing, audio.State())
	assert.Nil(t, audio.AudioDevice())

	video := NewRemoteVideoTrack("cam")
	assert.Equal(t, "video", video.Kind())
	assert.Nil(t, video.CaptureDevice())
}

type namedDevice string

func (d namedDevice) Name() string { return string(d) }

func TestLocalAudioTrack(t *testing.T) {
	audio := NewLocalAudioTrack("mic", namedDevice("default"))
	assert.Equal(t, "default", audio.AudioDevice().Name())
	assert.NoError(t, audio.Close())
	assert.Equal(t, Ended, audio.State())
}

func TestObserversFireOnChange(t *testing.T) {
	tr := NewRemoteAudioTrack("a")
	var n int
	o := NewObserver(func() { n++ })
	tr.RegisterObserver(o)
	tr.RegisterObserver(o)

	assert.False(t, tr.SetEnabled(true))
	assert.Equal(t, 0, n)
	assert.True(t, tr.SetEnabled(false))
	assert.Equal(t, 1, n)

	assert.True(t, tr.SetState(Live))
	assert.False(t, tr.SetState(Live))
	assert.Equal(t, 2, n)

	tr.UnregisterObserver(o)
	tr.SetEnabled(true)
	assert.Equal(t, 2, n)
}

func TestEndedIsFinal(t *testing.T) {
	tr := NewRemoteVideoTrack("v")
	assert.True(t, tr.SetState(Ended))
	assert.False(t, tr.SetState(Live))
	assert.Equal(t, Ended, tr.State())
}

func TestObserverMayUnregisterItself(t *testing.T) {
	tr := NewRemoteAudioTrack("a")
	var calls []string
	var first Observer
	first = NewObserver(func() {
		calls = append(calls, "first")
		tr.UnregisterObserver(first)
	})
	tr.RegisterObserver(first)
	tr.RegisterObserver(NewObserver(func() { calls = append(calls, "second") }))

	tr.SetEnabled(false)
	tr.SetEnabled(true)
	assert.Equal(t, []string{"first", "second", "second"}, calls)
}
