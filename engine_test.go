package mediacore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lanikai/mediacore/internal/capture"
	"github.com/lanikai/mediacore/internal/dispatch"
	"github.com/lanikai/mediacore/internal/track"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEngine(t *testing.T) *Engine {
	e, err := NewEngine(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngineCreatesTracks(t *testing.T) {
	e := newEngine(t)
	assert.Equal(t, "signaling", e.SignalingThread().Name())

	a, err := e.CreateRemoteAudioTrack("")
	require.NoError(t, err)
	l, err := a.Label()
	require.NoError(t, err)
	assert.NotEmpty(t, l)

	v, err := e.CreateRemoteVideoTrack("remote")
	require.NoError(t, err)
	kind, err := v.Kind()
	require.NoError(t, err)
	assert.Equal(t, "video", kind)

	_, err = e.AdoptAudioTrack(track.NewRemoteAudioTrack("adopted"))
	require.NoError(t, err)
	_, err = e.AdoptVideoTrack(track.NewRemoteVideoTrack("adopted"))
	require.NoError(t, err)
	_, err = e.CreateLocalVideoTrack("cam", nil)
	assert.Error(t, err)
}

func TestEngineLocalVideoTrack(t *testing.T) {
	e := newEngine(t)
	device := e.NewCaptureDevice(capture.NewTestPattern(100))
	v, err := e.CreateLocalVideoTrack("cam", device)
	require.NoError(t, err)

	st, err := device.Start(capture.CaptureFormat{Width: 640, Height: 480, FourCC: capture.FourCCAny})
	require.NoError(t, err)
	assert.Equal(t, capture.Starting, st)

	require.Eventually(t, func() bool {
		s, err := v.State()
		return err == nil && s == track.Live
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, device.Stop())
	require.NoError(t, v.Close())
}

func TestEngineClose(t *testing.T) {
	e, err := NewEngine(Config{SignalingThreadName: "short"})
	require.NoError(t, err)
	a, err := e.CreateLocalAudioTrack("mic", nil)
	require.NoError(t, err)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err = a.Enabled()
	assert.Equal(t, dispatch.ErrClosed, err)
	_, err = e.CreateRemoteAudioTrack("late")
	assert.Equal(t, ErrClosed, err)
}

func TestEngineRejectsBadLogLevel(t *testing.T) {
	_, err := NewEngine(Config{LogLevel: "capture=loud"})
	assert.Error(t, err)
}
