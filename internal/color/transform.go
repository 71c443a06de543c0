// Copyright 2019 Lanikai Labs. All rights reserved.

package color

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Rotate returns img rotated clockwise by degrees, which must be 0, 90, 180 or 270.
func Rotate(img *image.YCbCr, degrees int) (*image.YCbCr, error) {
	var out *image.NRGBA
	switch degrees {
	case 0:
		return img, nil
	case 90:
		out = imaging.Rotate270(img)
	case 180:
		out = imaging.Rotate180(img)
	case 270:
		out = imaging.Rotate90(img)
	default:
		return nil, errors.Errorf("color: invalid rotation %d", degrees)
	}
	return ImageToI420(out), nil
}

// SquarePixels rescales the width of an image whose pixels have the aspect
// ratio pw:ph so that the result has square pixels.
func SquarePixels(img *image.YCbCr, pw, ph uint32) *image.YCbCr {
	if pw == 0 || ph == 0 || pw == ph {
		return img
	}
	b := img.Bounds()
	width := int(uint64(b.Dx()) * uint64(pw) / uint64(ph))
	if width < 1 {
		width = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, b.Dy()))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return ImageToI420(dst)
}

// Black returns an I420 image filled with black.
func Black(width, height int) *image.YCbCr {
	img := NewI420(width, height)
	for i := range img.Y {
		img.Y[i] = 16
	}
	for i := range img.Cb {
		img.Cb[i] = 128
		img.Cr[i] = 128
	}
	return img
}

// Clone returns a deep copy of img in I420 layout.
func Clone(img *image.YCbCr) *image.YCbCr {
	if !IsI420(img) {
		return resampleChroma(img)
	}
	b := img.Rect
	dst := NewI420(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Y[y*dst.YStride:(y+1)*dst.YStride], img.Y[img.YOffset(b.Min.X, b.Min.Y+y):])
	}
	for cy := 0; cy < (b.Dy()+1)/2; cy++ {
		off := img.COffset(b.Min.X, b.Min.Y+2*cy)
		copy(dst.Cb[cy*dst.CStride:(cy+1)*dst.CStride], img.Cb[off:])
		copy(dst.Cr[cy*dst.CStride:(cy+1)*dst.CStride], img.Cr[off:])
	}
	return dst
}
