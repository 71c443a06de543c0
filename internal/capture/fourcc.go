package capture

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FourCC is a pixel format tag made of four ASCII characters packed little-endian,
// the same layout used by V4L2.
type FourCC uint32

// MakeFourCC packs four characters.
func MakeFourCC(a, b, c, d byte) FourCC {
	return FourCC(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

func fourcc(s string) FourCC {
	return MakeFourCC(s[0], s[1], s[2], s[3])
}

// Canonical formats.
var (
	FourCCI420 = fourcc("I420")
	FourCCYV12 = fourcc("YV12")
	FourCCNV12 = fourcc("NV12")
	FourCCNV21 = fourcc("NV21")
	FourCCYUY2 = fourcc("YUY2")
	FourCCUYVY = fourcc("UYVY")
	FourCCMJPG = fourcc("MJPG")

	// 24-bit pixels stored B, G, R.
	FourCC24BG = fourcc("24BG")
	// 24-bit pixels stored R, G, B.
	FourCCRAW = fourcc("raw ")
	// 32-bit pixels stored B, G, R, A.
	FourCCARGB = fourcc("ARGB")
	// 32-bit pixels stored R, G, B, A.
	FourCCABGR = fourcc("ABGR")

	// FourCCAny matches any format the device prefers.
	FourCCAny = FourCC(0xFFFFFFFF)
)

var aliases = map[FourCC]FourCC{
	fourcc("IYUV"): FourCCI420,
	fourcc("YU12"): FourCCI420,
	fourcc("YUYV"): FourCCYUY2,
	fourcc("YUVS"): FourCCYUY2,
	fourcc("yuvs"): FourCCYUY2,
	fourcc("HDYC"): FourCCUYVY,
	fourcc("2VUY"): FourCCUYVY,
	fourcc("JPEG"): FourCCMJPG,
	fourcc("DMB1"): FourCCMJPG,
	fourcc("BGR3"): FourCC24BG,
	fourcc("RGB3"): FourCCRAW,
	fourcc("BGR4"): FourCCARGB,
	fourcc("AR24"): FourCCARGB,
	fourcc("AB24"): FourCCABGR,
	fourcc("RGBA"): FourCCABGR,
}

// ParseFourCC reads a tag of up to four characters, padding short tags with spaces.
// "any" (or an empty string) yields FourCCAny.
func ParseFourCC(s string) (FourCC, error) {
	if s == "" || strings.EqualFold(s, "any") {
		return FourCCAny, nil
	}
	if len(s) > 4 {
		return 0, errors.Errorf("fourcc %q longer than four characters", s)
	}
	s += strings.Repeat(" ", 4-len(s))
	return fourcc(s), nil
}

// Canonical maps aliases (including the V4L2 names) onto the canonical tag.
func (f FourCC) Canonical() FourCC {
	if c, ok := aliases[f]; ok {
		return c
	}
	return f
}

func (f FourCC) String() string {
	if f == FourCCAny {
		return "any"
	}
	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(f))
		}
	}
	return string(b)
}

// FrameSize returns the payload size in bytes of one frame, or false for
// compressed formats whose size depends on the content.
func (f FourCC) FrameSize(width, height int) (int, bool) {
	if width <= 0 || height <= 0 {
		return 0, false
	}
	cw, ch := (width+1)/2, (height+1)/2
	switch f.Canonical() {
	case FourCCI420, FourCCYV12, FourCCNV12, FourCCNV21:
		return width*height + 2*cw*ch, true
	case FourCCYUY2, FourCCUYVY:
		return 4 * cw * height, true
	case FourCC24BG, FourCCRAW:
		return 3 * width * height, true
	case FourCCARGB, FourCCABGR:
		return 4 * width * height, true
	}
	return 0, false
}
