package track

import (
	"sync"

	"github.com/lanikai/mediacore/internal/capture"
)

// Renderer is a sink for video frames. Frames are only valid during RenderFrame.
type Renderer interface {
	SetSize(width, height int)
	RenderFrame(f *capture.VideoFrame)
}

// Renderers fans frames out to a set of renderers. While disabled it forwards
// black frames of the same size; once ended it forwards nothing. It is safe for
// concurrent use, since frames arrive on the capture goroutine while renderers
// are added on the track's goroutine.
type Renderers struct {
	mu      sync.Mutex
	sinks   []Renderer
	enabled bool
	ended   bool
	width   int
	height  int
	black   *capture.VideoFrame
}

func NewRenderers() *Renderers {
	return &Renderers{enabled: true}
}

// Add attaches r and reports whether it was not already attached. A renderer
// attached after the size is known is told the size right away.
func (rs *Renderers) Add(r Renderer) bool {
	rs.mu.Lock()
	for _, x := range rs.sinks {
		if x == r {
			rs.mu.Unlock()
			return false
		}
	}
	rs.sinks = append(rs.sinks, r)
	w, h := rs.width, rs.height
	rs.mu.Unlock()

	if w > 0 && h > 0 {
		r.SetSize(w, h)
	}
	return true
}

// Remove detaches r and reports whether it was attached.
func (rs *Renderers) Remove(r Renderer) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for i, x := range rs.sinks {
		if x == r {
			rs.sinks = append(rs.sinks[:i:i], rs.sinks[i+1:]...)
			return true
		}
	}
	return false
}

func (rs *Renderers) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.sinks)
}

func (rs *Renderers) SetEnabled(enabled bool) {
	rs.mu.Lock()
	rs.enabled = enabled
	rs.mu.Unlock()
}

func (rs *Renderers) SetEnded() {
	rs.mu.Lock()
	rs.ended = true
	rs.mu.Unlock()
}

func (rs *Renderers) SetSize(width, height int) {
	rs.mu.Lock()
	if rs.ended {
		rs.mu.Unlock()
		return
	}
	rs.width, rs.height = width, height
	sinks := rs.sinks
	rs.mu.Unlock()

	for _, r := range sinks {
		r.SetSize(width, height)
	}
}

// RenderFrame forwards f, announcing a new size first if the frame size changed.
func (rs *Renderers) RenderFrame(f *capture.VideoFrame) {
	w, h := f.Width(), f.Height()

	rs.mu.Lock()
	if rs.ended {
		rs.mu.Unlock()
		return
	}
	resized := w != rs.width || h != rs.height
	rs.width, rs.height = w, h
	if !rs.enabled {
		if rs.black == nil || rs.black.Width() != w || rs.black.Height() != h {
			rs.black = capture.NewBlackFrame(w, h, 0, 0)
		}
		black := *rs.black
		black.ElapsedTime, black.TimeStamp = f.ElapsedTime, f.TimeStamp
		f = &black
	}
	sinks := rs.sinks
	rs.mu.Unlock()

	for _, r := range sinks {
		if resized {
			r.SetSize(w, h)
		}
		r.RenderFrame(f)
	}
}
