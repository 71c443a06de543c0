package capture

import (
	"image"
	"time"

	"github.com/lanikai/mediacore/internal/color"
)

// VideoFrame is a normalized frame in planar 4:2:0 layout. Frames delivered
// through a Device may alias capture buffers and are valid only for the
// duration of the callback. Use Clone to keep one.
type VideoFrame struct {
	Image       *image.YCbCr
	ElapsedTime time.Duration
	TimeStamp   int64
	// Clockwise rotation still to be applied for display.
	Rotation int
}

// NewBlackFrame returns a black frame of the given size.
func NewBlackFrame(width, height int, elapsed time.Duration, timestamp int64) *VideoFrame {
	return &VideoFrame{
		Image:       color.Black(width, height),
		ElapsedTime: elapsed,
		TimeStamp:   timestamp,
	}
}

func (f *VideoFrame) Width() int {
	return f.Image.Rect.Dx()
}

func (f *VideoFrame) Height() int {
	return f.Image.Rect.Dy()
}

// Clone returns a copy that owns its pixels.
func (f *VideoFrame) Clone() *VideoFrame {
	c := *f
	c.Image = color.Clone(f.Image)
	return &c
}
