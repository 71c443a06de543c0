package color

import (
	"image"
	stdcolor "image/color"
	"testing"

	"github.com/pion/mediadevices/pkg/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapI420AliasesPlanes(t *testing.T) {
	data := make([]byte, I420Size(4, 2))
	for i := range data {
		data[i] = byte(i)
	}

	img, err := WrapI420(data, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, data[:8], img.Y)
	assert.Equal(t, data[8:10], img.Cb)
	assert.Equal(t, data[10:12], img.Cr)

	data[0] = 99
	assert.Equal(t, byte(99), img.Y[0])

	yv12, err := WrapYV12(data, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, data[10:12], yv12.Cb)
	assert.Equal(t, data[8:10], yv12.Cr)

	_, err = WrapI420(data[:11], 4, 2)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestRGB24ToI420(t *testing.T) {
	// A 2x2 block of pure red.
	px := []byte{255, 0, 0}
	var data []byte
	for i := 0; i < 4; i++ {
		data = append(data, px...)
	}
	y, cb, cr := stdcolor.RGBToYCbCr(255, 0, 0)

	img, err := RGB24ToI420(data, 2, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []byte{y, y, y, y}, img.Y)
	assert.Equal(t, []byte{cb}, img.Cb)
	assert.Equal(t, []byte{cr}, img.Cr)

	// Same bytes read as BGR are pure blue.
	y, cb, cr = stdcolor.RGBToYCbCr(0, 0, 255)
	img, err = RGB24ToI420(data, 2, 2, true)
	require.NoError(t, err)
	assert.Equal(t, y, img.Y[0])
	assert.Equal(t, cb, img.Cb[0])
	assert.Equal(t, cr, img.Cr[0])
}

func TestImageToI420ResamplesChroma(t *testing.T) {
	src := image.NewYCbCr(image.Rect(0, 0, 4, 2), image.YCbCrSubsampleRatio422)
	for i := range src.Cb {
		src.Cb[i] = 100
		src.Cr[i] = 200
	}
	dst := ImageToI420(src)
	assert.True(t, IsI420(dst))
	assert.Equal(t, []byte{100, 100}, dst.Cb)
	assert.Equal(t, []byte{200, 200}, dst.Cr)

	same := NewI420(4, 2)
	assert.Same(t, same, ImageToI420(same))
}

func TestDecodeNV12(t *testing.T) {
	data := make([]byte, I420Size(4, 4))
	img, release, err := Decode(frame.FormatNV12, data, 4, 4)
	require.NoError(t, err)
	defer release()
	assert.True(t, IsI420(img))
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	_, _, err = Decode(frame.FormatNV12, data[:10], 4, 4)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestRotate(t *testing.T) {
	img := Black(4, 2)
	out, err := Rotate(img, 90)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 4), out.Bounds())

	out, err = Rotate(img, 0)
	require.NoError(t, err)
	assert.Same(t, img, out)

	_, err = Rotate(img, 45)
	assert.Error(t, err)
}

func TestSquarePixels(t *testing.T) {
	img := Black(4, 4)
	out := SquarePixels(img, 2, 1)
	assert.Equal(t, image.Rect(0, 0, 8, 4), out.Bounds())
	assert.Same(t, img, SquarePixels(img, 1, 1))
}

func TestClone(t *testing.T) {
	img := Black(3, 3)
	c := Clone(img)
	c.Y[0] = 0
	assert.Equal(t, byte(16), img.Y[0])
	assert.Equal(t, img.Cb, c.Cb)
}
