// Copyright 2019 Lanikai Labs. All rights reserved.

package color

import (
	"image"
	"sync"

	"github.com/pion/mediadevices/pkg/frame"
	"github.com/pkg/errors"
)

var (
	decoderMu sync.Mutex
	decoders  = map[frame.Format]frame.Decoder{}
)

func decoderFor(f frame.Format) (frame.Decoder, error) {
	decoderMu.Lock()
	defer decoderMu.Unlock()

	if d, ok := decoders[f]; ok {
		return d, nil
	}
	d, err := frame.NewDecoder(f)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s: %v", f, err)
	}
	decoders[f] = d
	return d, nil
}

// Decode decodes a payload in one of the formats understood by the mediadevices
// frame package and returns it as I420. The returned release function must be
// called once the image is no longer referenced.
func Decode(f frame.Format, data []byte, width, height int) (*image.YCbCr, func(), error) {
	if width <= 0 || height <= 0 {
		return nil, nil, ErrBadDimensions
	}
	if min := minimumSize(f, width, height); len(data) < min {
		return nil, nil, errors.Wrapf(ErrShortBuffer, "%s: %d bytes for %dx%d", f, len(data), width, height)
	}

	d, err := decoderFor(f)
	if err != nil {
		return nil, nil, err
	}
	img, release, err := d.Decode(data, width, height)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "decode %s", f)
	}
	if release == nil {
		release = func() {}
	}

	if y, ok := img.(*image.YCbCr); ok && IsI420(y) {
		return y, release, nil
	}
	out := ImageToI420(img)
	release()
	return out, func() {}, nil
}

// minimumSize guards the decoders, which index the payload without checking
// its length.
func minimumSize(f frame.Format, width, height int) int {
	switch f {
	case frame.FormatI420, frame.FormatNV12, frame.FormatNV21:
		return width*height + 2*((width+1)/2)*((height+1)/2)
	case frame.FormatYUY2, frame.FormatUYVY:
		return PackedStride(width) * height
	case frame.FormatRGBA:
		return 4 * width * height
	}
	return 1
}
