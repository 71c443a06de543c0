// Copyright 2019 Lanikai Labs. All rights reserved.

package color

import (
	"image"
	stdcolor "image/color"

	"github.com/pkg/errors"
)

// RGB24ToI420 converts 24-bit RGB pixels. With bgr set the bytes of each pixel
// are stored blue first.
func RGB24ToI420(data []byte, width, height int, bgr bool) (*image.YCbCr, error) {
	r, b := 0, 2
	if bgr {
		r, b = 2, 0
	}
	return rgbToI420(data, width, height, 3, r, 1, b)
}

// BGRAToI420 converts 32-bit pixels stored as B, G, R, A.
func BGRAToI420(data []byte, width, height int) (*image.YCbCr, error) {
	return rgbToI420(data, width, height, 4, 2, 1, 0)
}

func rgbToI420(data []byte, width, height, bpp, ri, gi, bi int) (*image.YCbCr, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadDimensions
	}
	stride := bpp * width
	if len(data) < stride*height {
		return nil, errors.Wrapf(ErrShortBuffer, "%d bytes for %dx%d", len(data), width, height)
	}

	dst := NewI420(width, height)
	for cy := 0; cy < (height+1)/2; cy++ {
		for cx := 0; cx < (width+1)/2; cx++ {
			var sumCb, sumCr, n int
			for dy := 0; dy < 2; dy++ {
				y := 2*cy + dy
				if y >= height {
					break
				}
				for dx := 0; dx < 2; dx++ {
					x := 2*cx + dx
					if x >= width {
						break
					}
					px := data[y*stride+x*bpp:]
					yy, cb, cr := stdcolor.RGBToYCbCr(px[ri], px[gi], px[bi])
					dst.Y[y*dst.YStride+x] = yy
					sumCb += int(cb)
					sumCr += int(cr)
					n++
				}
			}
			dst.Cb[cy*dst.CStride+cx] = uint8(sumCb / n)
			dst.Cr[cy*dst.CStride+cx] = uint8(sumCr / n)
		}
	}
	return dst, nil
}

// ImageToI420 converts any image to I420. A 4:2:0 YCbCr image is returned as is.
func ImageToI420(img image.Image) *image.YCbCr {
	if y, ok := img.(*image.YCbCr); ok {
		if IsI420(y) {
			return y
		}
		return resampleChroma(y)
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	dst := NewI420(width, height)
	for cy := 0; cy < (height+1)/2; cy++ {
		for cx := 0; cx < (width+1)/2; cx++ {
			var sumCb, sumCr, n int
			for dy := 0; dy < 2 && 2*cy+dy < height; dy++ {
				for dx := 0; dx < 2 && 2*cx+dx < width; dx++ {
					x, y := 2*cx+dx, 2*cy+dy
					c := stdcolor.YCbCrModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(stdcolor.YCbCr)
					dst.Y[y*dst.YStride+x] = c.Y
					sumCb += int(c.Cb)
					sumCr += int(c.Cr)
					n++
				}
			}
			dst.Cb[cy*dst.CStride+cx] = uint8(sumCb / n)
			dst.Cr[cy*dst.CStride+cx] = uint8(sumCr / n)
		}
	}
	return dst
}

// resampleChroma converts YCbCr images with other subsampling ratios (4:2:2 from
// packed decoders, 4:4:4 from some JPEGs).
func resampleChroma(src *image.YCbCr) *image.YCbCr {
	b := src.Rect
	width, height := b.Dx(), b.Dy()
	dst := NewI420(width, height)
	for y := 0; y < height; y++ {
		copy(dst.Y[y*dst.YStride:y*dst.YStride+width], src.Y[src.YOffset(b.Min.X, b.Min.Y+y):])
	}
	for cy := 0; cy < (height+1)/2; cy++ {
		for cx := 0; cx < (width+1)/2; cx++ {
			var sumCb, sumCr, n int
			for dy := 0; dy < 2 && 2*cy+dy < height; dy++ {
				for dx := 0; dx < 2 && 2*cx+dx < width; dx++ {
					off := src.COffset(b.Min.X+2*cx+dx, b.Min.Y+2*cy+dy)
					sumCb += int(src.Cb[off])
					sumCr += int(src.Cr[off])
					n++
				}
			}
			dst.Cb[cy*dst.CStride+cx] = uint8(sumCb / n)
			dst.Cr[cy*dst.CStride+cx] = uint8(sumCr / n)
		}
	}
	return dst
}
