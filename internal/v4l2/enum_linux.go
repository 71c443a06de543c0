//go:build linux && (amd64 || arm64)

package v4l2

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/lanikai/mediacore/internal/capture"
)

// enumerateFormats lists every discrete size and frame interval for every pixel
// format the device offers. Stepwise and continuous ranges are skipped.
func enumerateFormats(fd int) ([]capture.CaptureFormat, error) {
	var formats []capture.CaptureFormat

	for i := uint32(0); ; i++ {
		desc := v4l2_fmtdesc{index: i, typ: V4L2_BUF_TYPE_VIDEO_CAPTURE}
		if err := ioctlRetry(fd, VIDIOC_ENUM_FMT, unsafe.Pointer(&desc)); err != nil {
			if err == unix.EINVAL {
				break
			}
			return nil, err
		}

		sizes, err := enumerateSizes(fd, desc.pixelformat)
		if err != nil {
			return nil, err
		}
		for _, size := range sizes {
			intervals, err := enumerateIntervals(fd, desc.pixelformat, size[0], size[1])
			if err != nil {
				return nil, err
			}
			for _, interval := range intervals {
				formats = append(formats, capture.CaptureFormat{
					Width:    int(size[0]),
					Height:   int(size[1]),
					Interval: interval,
					FourCC:   capture.FourCC(desc.pixelformat),
				})
			}
		}
	}
	return formats, nil
}

func enumerateSizes(fd int, pixfmt uint32) ([][2]uint32, error) {
	var sizes [][2]uint32
	for i := uint32(0); ; i++ {
		fs := v4l2_frmsizeenum{index: i, pixel_format: pixfmt}
		if err := ioctlRetry(fd, VIDIOC_ENUM_FRAMESIZES, unsafe.Pointer(&fs)); err != nil {
			if err == unix.EINVAL {
				return sizes, nil
			}
			return nil, err
		}
		if fs.typ != V4L2_FRMSIZE_TYPE_DISCRETE {
			return sizes, nil
		}
		sizes = append(sizes, [2]uint32{fs.size[0], fs.size[1]})
	}
}

// enumerateIntervals returns at least one interval per size. Drivers that do
// not report intervals get an unspecified one.
func enumerateIntervals(fd int, pixfmt, width, height uint32) ([]time.Duration, error) {
	var intervals []time.Duration
	for i := uint32(0); ; i++ {
		fi := v4l2_frmivalenum{index: i, pixel_format: pixfmt, width: width, height: height}
		if err := ioctlRetry(fd, VIDIOC_ENUM_FRAMEINTERVALS, unsafe.Pointer(&fi)); err != nil {
			if err == unix.EINVAL || err == unix.ENOTTY {
				break
			}
			return nil, err
		}
		if fi.typ != V4L2_FRMIVAL_TYPE_DISCRETE {
			break
		}
		num, den := fi.interval[0], fi.interval[1]
		if den == 0 {
			continue
		}
		intervals = append(intervals, time.Duration(num)*time.Second/time.Duration(den))
	}
	if len(intervals) == 0 {
		intervals = append(intervals, 0)
	}
	return intervals, nil
}
