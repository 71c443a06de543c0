package track

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/mediacore/internal/capture"
)

type sink struct {
	mu     sync.Mutex
	sizes  [][2]int
	frames []*capture.VideoFrame
}

func (s *sink) SetSize(w, h int) {
	s.mu.Lock()
	s.sizes = append(s.sizes, [2]int{w, h})
	s.mu.Unlock()
}

func (s *sink) RenderFrame(f *capture.VideoFrame) {
	s.mu.Lock()
	s.frames = append(s.frames, f.Clone())
	s.mu.Unlock()
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func grayFrame(w, h int) *capture.VideoFrame {
	f := capture.NewBlackFrame(w, h, time.Second, 7)
	for i := range f.Image.Y {
		f.Image.Y[i] = 128
	}
	return f
}

func TestRenderersForwardAndResize(t *testing.T) {
	rs := NewRenderers()
	s := &sink{}
	assert.True(t, rs.Add(s))
	assert.False(t, rs.Add(s))

	rs.RenderFrame(grayFrame(4, 2))
	rs.RenderFrame(grayFrame(4, 2))
	rs.RenderFrame(grayFrame(8, 4))

	assert.Equal(t, [][2]int{{4, 2}, {8, 4}}, s.sizes)
	assert.Equal(t, 3, s.count())

	// A late renderer learns the current size.
	late := &sink{}
	rs.Add(late)
	assert.Equal(t, [][2]int{{8, 4}}, late.sizes)

	assert.True(t, rs.Remove(s))
	assert.False(t, rs.Remove(s))
	rs.RenderFrame(grayFrame(8, 4))
	assert.Equal(t, 3, s.count())
	assert.Equal(t, 1, late.count())
}

func TestRenderersDisabledSendsBlack(t *testing.T) {
	rs := NewRenderers()
	s := &sink{}
	rs.Add(s)

	rs.SetEnabled(false)
	rs.RenderFrame(grayFrame(4, 2))
	require.Equal(t, 1, s.count())
	f := s.frames[0]
	assert.Equal(t, byte(16), f.Image.Y[0])
	assert.Equal(t, 4, f.Width())
	assert.Equal(t, int64(7), f.TimeStamp)

	rs.SetEnabled(true)
	rs.RenderFrame(grayFrame(4, 2))
	assert.Equal(t, byte(128), s.frames[1].Image.Y[0])

	rs.SetEnded()
	rs.RenderFrame(grayFrame(4, 2))
	assert.Equal(t, 2, s.count())
}

func TestVideoTrackDisableBlanksFrames(t *testing.T) {
	tr := NewRemoteVideoTrack("remote")
	s := &sink{}
	tr.AddRenderer(s)

	tr.SetEnabled(false)
	tr.FrameInput().RenderFrame(grayFrame(2, 2))
	require.Equal(t, 1, s.count())
	assert.Equal(t, byte(16), s.frames[0].Image.Y[0])

	require.NoError(t, tr.Close())
	tr.FrameInput().RenderFrame(grayFrame(2, 2))
	assert.Equal(t, 1, s.count())
}

func TestLocalVideoTrack(t *testing.T) {
	device := capture.NewDevice(capture.NewTestPattern(100))
	tr := NewLocalVideoTrack("camera", device)
	assert.Same(t, device, tr.CaptureDevice())

	s := &sink{}
	tr.AddRenderer(s)

	_, err := device.Start(capture.CaptureFormat{Width: 320, Height: 240, Interval: capture.FpsToInterval(100), FourCC: capture.FourCCI420})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.count() >= 2 }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, ErrDeviceRunning, tr.Close())
	assert.NotEqual(t, Ended, tr.State())

	require.NoError(t, device.Stop())
	require.NoError(t, tr.Close())
	assert.Equal(t, Ended, tr.State())
	assert.Equal(t, 0, device.FrameReady.Len())

	s.mu.Lock()
	assert.Equal(t, [2]int{320, 240}, s.sizes[0])
	s.mu.Unlock()
}

func TestStateFor(t *testing.T) {
	st, ok := StateFor(capture.Running)
	assert.True(t, ok)
	assert.Equal(t, Live, st)

	st, ok = StateFor(capture.NoDevice)
	assert.True(t, ok)
	assert.Equal(t, Failed, st)

	_, ok = StateFor(capture.Stopped)
	assert.False(t, ok)
}
