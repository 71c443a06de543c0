// Copyright 2019 Lanikai Labs. All rights reserved.

package color

import (
	"image"

	"github.com/pkg/errors"
)

// Byte offsets of the components within one 4-byte macropixel (two pixels).
type packedOrder struct {
	y0, cb, y1, cr int
}

var (
	orderYUYV = packedOrder{y0: 0, cb: 1, y1: 2, cr: 3}
	orderUYVY = packedOrder{cb: 0, y0: 1, cr: 2, y1: 3}
)

// YUYV is a packed 4:2:2 image (a.k.a. YUY2).
type YUYV struct {
	Packed []uint8
	Rect   image.Rectangle
	Stride int
}

// NewYUYV allocates and returns a YUYV image
func NewYUYV(r image.Rectangle) *YUYV {
	stride := PackedStride(r.Dx())
	return &YUYV{
		Packed: make([]byte, stride*r.Dy()),
		Rect:   r,
		Stride: stride,
	}
}

// PackedStride returns the row length in bytes of a packed 4:2:2 image.
func PackedStride(width int) int {
	return 4 * ((width + 1) / 2)
}

// YUYVToYUV420P converts YUYV (i.e. YUY2) packed to YUV420 planar format. Chroma is
// taken from the even rows.
func YUYVToYUV420P(dst *image.YCbCr, src *YUYV) {
	packedToPlanar(dst, src.Packed, src.Stride, src.Rect.Dx(), src.Rect.Dy(), orderYUYV)
}

// UYVYToYUV420P is like YUYVToYUV420P for the UYVY component order.
func UYVYToYUV420P(dst *image.YCbCr, src *YUYV) {
	packedToPlanar(dst, src.Packed, src.Stride, src.Rect.Dx(), src.Rect.Dy(), orderUYVY)
}

// PackedToI420 converts a tightly packed YUY2 or UYVY payload into a new I420 image.
func PackedToI420(data []byte, width, height int, uyvy bool) (*image.YCbCr, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadDimensions
	}
	stride := PackedStride(width)
	if len(data) < stride*height {
		return nil, errors.Wrapf(ErrShortBuffer, "%d bytes for %dx%d", len(data), width, height)
	}

	order := orderYUYV
	if uyvy {
		order = orderUYVY
	}
	dst := NewI420(width, height)
	packedToPlanar(dst, data, stride, width, height, order)
	return dst, nil
}

func packedToPlanar(dst *image.YCbCr, src []byte, stride, width, height int, o packedOrder) {
	for row := 0; row < height; row++ {
		in := src[row*stride:]
		y := dst.Y[row*dst.YStride:]
		for x := 0; x < width; x += 2 {
			mp := in[2*x:]
			y[x] = mp[o.y0]
			if x+1 < width {
				y[x+1] = mp[o.y1]
			}
		}

		if row%2 != 0 {
			continue
		}
		cb := dst.Cb[(row/2)*dst.CStride:]
		cr := dst.Cr[(row/2)*dst.CStride:]
		for cx := 0; cx < (width+1)/2; cx++ {
			mp := in[4*cx:]
			cb[cx] = mp[o.cb]
			cr[cx] = mp[o.cr]
		}
	}
}
