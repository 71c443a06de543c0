// Copyright 2019 Lanikai Labs. All rights reserved.

package color

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYUYVToYUV420P(t *testing.T) {
	rect := image.Rect(0, 0, 1280, 720)

	src := NewYUYV(rect)
	rand.Read(src.Packed)

	dst := NewI420(rect.Dx(), rect.Dy())
	YUYVToYUV420P(dst, src)

	for i := 0; i < 1280*720; i++ {
		assert.Equal(t, src.Packed[2*i], dst.Y[i])
	}
	for row := 0; row < 360; row++ {
		for col := 0; col < 640; col++ {
			off := 2 * row * src.Stride
			assert.Equal(t, src.Packed[off+4*col+1], dst.Cb[row*dst.CStride+col])
			assert.Equal(t, src.Packed[off+4*col+3], dst.Cr[row*dst.CStride+col])
		}
	}
}

func TestPackedToI420UYVY(t *testing.T) {
	// One macropixel per row: U Y0 V Y1.
	data := []byte{
		10, 20, 30, 40,
		50, 60, 70, 80,
	}
	img, err := PackedToI420(data, 2, 2, true)
	require.NoError(t, err)

	assert.Equal(t, []byte{20, 40, 60, 80}, img.Y)
	assert.Equal(t, []byte{10}, img.Cb)
	assert.Equal(t, []byte{30}, img.Cr)
}

func TestPackedToI420OddWidth(t *testing.T) {
	// 3 pixels wide rounds up to two macropixels per row.
	data := make([]byte, PackedStride(3)*2)
	for i := range data {
		data[i] = byte(i)
	}
	img, err := PackedToI420(data, 3, 2, false)
	require.NoError(t, err)

	assert.Equal(t, []byte{0, 2, 4, 8, 10, 12}, img.Y)
	assert.Equal(t, []byte{1, 5}, img.Cb)
	assert.Equal(t, []byte{3, 7}, img.Cr)
}

func TestPackedToI420ShortBuffer(t *testing.T) {
	_, err := PackedToI420(make([]byte, 7), 2, 2, false)
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = PackedToI420(nil, 0, 2, false)
	assert.ErrorIs(t, err, ErrBadDimensions)
}
