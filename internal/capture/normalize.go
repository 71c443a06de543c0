package capture

import (
	"image"

	"github.com/pion/mediadevices/pkg/frame"
	"github.com/pkg/errors"

	"github.com/lanikai/mediacore/internal/color"
)

// Normalizer converts raw frames into VideoFrames.
type Normalizer struct {
	// ApplyRotation rotates pixels so the output needs no further rotation.
	// Otherwise the rotation is passed through on the VideoFrame.
	ApplyRotation bool

	// SquarePixels rescales frames with a non-square pixel aspect ratio.
	SquarePixels bool
}

var mediadevicesFormats = map[FourCC]frame.Format{
	FourCCNV12: frame.FormatNV12,
	FourCCNV21: frame.FormatNV21,
	FourCCMJPG: frame.FormatMJPEG,
	FourCCABGR: frame.FormatRGBA,
}

func noop() {}

// Normalize converts f. The returned release function must be called once the
// frame is no longer used.
func (n Normalizer) Normalize(f *FrameDescriptor) (*VideoFrame, func(), error) {
	if !ValidRotation(f.Rotation) {
		return nil, nil, errors.Errorf("capture: invalid rotation %d", f.Rotation)
	}
	data, err := f.Payload()
	if err != nil {
		return nil, nil, err
	}

	img, release, err := decode(f.FourCC.Canonical(), data, f.Width, f.Height)
	if err != nil {
		return nil, nil, err
	}

	if pw, ph := f.PixelAspect(); n.SquarePixels && pw != ph {
		scaled := color.SquarePixels(img, pw, ph)
		release()
		img, release = scaled, noop
	}

	rotation := f.Rotation
	if n.ApplyRotation && rotation != 0 {
		rotated, err := color.Rotate(img, rotation)
		if err != nil {
			release()
			return nil, nil, err
		}
		release()
		img, release, rotation = rotated, noop, 0
	}

	return &VideoFrame{
		Image:       img,
		ElapsedTime: f.ElapsedTime,
		TimeStamp:   f.TimeStamp,
		Rotation:    rotation,
	}, release, nil
}

func decode(fourcc FourCC, data []byte, width, height int) (*image.YCbCr, func(), error) {
	var (
		img *image.YCbCr
		err error
	)
	switch fourcc {
	case FourCCI420:
		img, err = color.WrapI420(data, width, height)
	case FourCCYV12:
		img, err = color.WrapYV12(data, width, height)
	case FourCCYUY2:
		img, err = color.PackedToI420(data, width, height, false)
	case FourCCUYVY:
		img, err = color.PackedToI420(data, width, height, true)
	case FourCC24BG:
		img, err = color.RGB24ToI420(data, width, height, true)
	case FourCCRAW:
		img, err = color.RGB24ToI420(data, width, height, false)
	case FourCCARGB:
		img, err = color.BGRAToI420(data, width, height)
	default:
		mf, ok := mediadevicesFormats[fourcc]
		if !ok {
			return nil, nil, errors.Wrapf(ErrUnsupportedFourCC, "%s", fourcc)
		}
		return color.Decode(mf, data, width, height)
	}
	if err != nil {
		return nil, nil, err
	}
	return img, noop, nil
}
