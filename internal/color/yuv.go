// Copyright 2019 Lanikai Labs. All rights reserved.

// Package color converts captured pixel data into planar YUV 4:2:0 (I420), the
// canonical layout handed to renderers and encoders.
package color

import (
	"image"

	"github.com/pkg/errors"
)

var (
	ErrShortBuffer       = errors.New("color: buffer too small for frame dimensions")
	ErrUnsupportedFormat = errors.New("color: unsupported pixel format")
	ErrBadDimensions     = errors.New("color: invalid frame dimensions")
)

// NewI420 allocates a planar 4:2:0 image.
func NewI420(width, height int) *image.YCbCr {
	return image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
}

// I420Size returns the number of bytes in a tightly packed I420 frame.
func I420Size(width, height int) int {
	cw, ch := (width+1)/2, (height+1)/2
	return width*height + 2*cw*ch
}

// IsI420 reports whether img is already in the canonical layout.
func IsI420(img *image.YCbCr) bool {
	return img.SubsampleRatio == image.YCbCrSubsampleRatio420
}

// WrapI420 returns an image whose planes alias data. No pixels are copied, so the
// image is only valid as long as data is.
func WrapI420(data []byte, width, height int) (*image.YCbCr, error) {
	return wrapPlanar(data, width, height, false)
}

// WrapYV12 is like WrapI420 for the variant with the V plane stored before U.
func WrapYV12(data []byte, width, height int) (*image.YCbCr, error) {
	return wrapPlanar(data, width, height, true)
}

func wrapPlanar(data []byte, width, height int, swapUV bool) (*image.YCbCr, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadDimensions
	}
	if len(data) < I420Size(width, height) {
		return nil, errors.Wrapf(ErrShortBuffer, "%d bytes for %dx%d", len(data), width, height)
	}

	ySize := width * height
	cw, ch := (width+1)/2, (height+1)/2
	cSize := cw * ch
	u := data[ySize : ySize+cSize : ySize+cSize]
	v := data[ySize+cSize : ySize+2*cSize : ySize+2*cSize]
	if swapUV {
		u, v = v, u
	}

	return &image.YCbCr{
		Y:              data[:ySize:ySize],
		Cb:             u,
		Cr:             v,
		YStride:        width,
		CStride:        cw,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, width, height),
	}, nil
}
