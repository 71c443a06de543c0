package capture

import (
	"time"

	"github.com/pkg/errors"
)

// UnknownDataSize marks a FrameDescriptor whose payload size must be derived
// from its fourcc and dimensions.
const UnknownDataSize = ^uint32(0)

// FrameDescriptor describes one raw captured frame. It does not own Data,
// which is valid only while the callback carrying the descriptor runs.
type FrameDescriptor struct {
	Width  int
	Height int
	FourCC FourCC

	// Pixel aspect ratio. Zero is treated as 1.
	PixelWidth  uint32
	PixelHeight uint32

	// Time since the device was created.
	ElapsedTime time.Duration
	// Capture time in nanoseconds.
	TimeStamp int64

	// Payload size in bytes, or UnknownDataSize.
	Size uint32
	// Clockwise rotation in degrees needed to display the frame upright.
	Rotation int

	Data []byte
}

// NewFrameDescriptor returns a descriptor with square pixels and an unknown size.
func NewFrameDescriptor(width, height int, fourcc FourCC, data []byte) *FrameDescriptor {
	return &FrameDescriptor{
		Width:       width,
		Height:      height,
		FourCC:      fourcc,
		PixelWidth:  1,
		PixelHeight: 1,
		Size:        UnknownDataSize,
		Data:        data,
	}
}

// DataSize returns the payload size, computing it from the fourcc and the
// dimensions when it was not given. It returns false if the size cannot be
// determined.
func (f *FrameDescriptor) DataSize() (uint32, bool) {
	if f.Size != UnknownDataSize {
		return f.Size, true
	}
	n, ok := f.FourCC.FrameSize(f.Width, f.Height)
	if !ok {
		return 0, false
	}
	return uint32(n), true
}

// Payload returns Data trimmed to the frame size.
func (f *FrameDescriptor) Payload() ([]byte, error) {
	size, ok := f.DataSize()
	if !ok {
		// Compressed payloads carry their own length.
		if len(f.Data) == 0 {
			return nil, ErrUnknownDataSize
		}
		return f.Data, nil
	}
	if uint64(len(f.Data)) < uint64(size) {
		return nil, errors.Errorf("capture: frame payload %d bytes, want %d", len(f.Data), size)
	}
	return f.Data[:size], nil
}

// PixelAspect returns the pixel aspect ratio with zero components replaced by 1.
func (f *FrameDescriptor) PixelAspect() (uint32, uint32) {
	pw, ph := f.PixelWidth, f.PixelHeight
	if pw == 0 {
		pw = 1
	}
	if ph == 0 {
		ph = 1
	}
	return pw, ph
}

// ValidRotation reports whether degrees is a multiple of 90 within one turn.
func ValidRotation(degrees int) bool {
	switch degrees {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// frameShape holds the attributes that must not change within a session.
type frameShape struct {
	width, height int
	fourcc        FourCC
	pw, ph        uint32
}

func shapeOf(f *FrameDescriptor) frameShape {
	pw, ph := f.PixelAspect()
	return frameShape{
		width:  f.Width,
		height: f.Height,
		fourcc: f.FourCC.Canonical(),
		pw:     pw,
		ph:     ph,
	}
}
