//go:build linux && (amd64 || arm64)

package v4l2

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Request codes from linux/videodev2.h for 64-bit targets.
const (
	VIDIOC_QUERYCAP            = 0x80685600
	VIDIOC_ENUM_FMT            = 0xc0405602
	VIDIOC_S_FMT               = 0xc0d05605
	VIDIOC_REQBUFS             = 0xc0145608
	VIDIOC_QUERYBUF            = 0xc0585609
	VIDIOC_QBUF                = 0xc058560f
	VIDIOC_DQBUF               = 0xc0585611
	VIDIOC_STREAMON            = 0x40045612
	VIDIOC_STREAMOFF           = 0x40045613
	VIDIOC_S_PARM              = 0xc0cc5616
	VIDIOC_S_CTRL              = 0xc008561c
	VIDIOC_ENUM_FRAMESIZES     = 0xc02c564a
	VIDIOC_ENUM_FRAMEINTERVALS = 0xc034564b
)

const (
	V4L2_BUF_TYPE_VIDEO_CAPTURE = 1
	V4L2_MEMORY_MMAP            = 1
	V4L2_FIELD_ANY              = 0

	V4L2_CAP_VIDEO_CAPTURE = 0x00000001
	V4L2_CAP_STREAMING     = 0x04000000

	V4L2_FRMSIZE_TYPE_DISCRETE = 1
	V4L2_FRMIVAL_TYPE_DISCRETE = 1

	V4L2_CID_HFLIP = 0x00980914
	V4L2_CID_VFLIP = 0x00980915
)

type v4l2_capability struct {
	driver       [16]byte
	card         [32]byte
	bus_info     [32]byte
	version      uint32
	capabilities uint32
	device_caps  uint32
	reserved     [3]uint32
}

type v4l2_fmtdesc struct {
	index       uint32
	typ         uint32
	flags       uint32
	description [32]byte
	pixelformat uint32
	mbus_code   uint32
	reserved    [3]uint32
}

type v4l2_frmsizeenum struct {
	index        uint32
	pixel_format uint32
	typ          uint32
	// Discrete width and height, or the stepwise bounds.
	size     [6]uint32
	reserved [2]uint32
}

type v4l2_frmivalenum struct {
	index        uint32
	pixel_format uint32
	width        uint32
	height       uint32
	typ          uint32
	// Discrete numerator and denominator, or the stepwise bounds.
	interval [6]uint32
	reserved [2]uint32
}

type v4l2_pix_format struct {
	width        uint32
	height       uint32
	pixelformat  uint32
	field        uint32
	bytesperline uint32
	sizeimage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcr_enc    uint32
	quantization uint32
	xfer_func    uint32
}

type v4l2_format struct {
	typ uint32
	_   uint32
	// Union; the capture case holds a v4l2_pix_format.
	fmt [200]byte
}

func (f *v4l2_format) pix() *v4l2_pix_format {
	return (*v4l2_pix_format)(unsafe.Pointer(&f.fmt[0]))
}

type v4l2_captureparm struct {
	capability   uint32
	capturemode  uint32
	numerator    uint32
	denominator  uint32
	extendedmode uint32
	readbuffers  uint32
	reserved     [4]uint32
}

type v4l2_streamparm struct {
	typ  uint32
	parm [200]byte
}

func (p *v4l2_streamparm) capture() *v4l2_captureparm {
	return (*v4l2_captureparm)(unsafe.Pointer(&p.parm[0]))
}

type v4l2_requestbuffers struct {
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	flags        uint8
	reserved     [3]uint8
}

type v4l2_buffer struct {
	index     uint32
	typ       uint32
	bytesused uint32
	flags     uint32
	field     uint32
	_         uint32
	timestamp unix.Timeval
	timecode  [16]byte
	sequence  uint32
	memory    uint32
	// Union; for MMAP the low 32 bits hold the offset.
	m          uint64
	length     uint32
	reserved2  uint32
	request_fd int32
	_          uint32
}

type v4l2_control struct {
	id    uint32
	value int32
}

func ioctl(fd int, request uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(fd),
		uintptr(request),
		uintptr(arg),
	)
	if errno != 0 {
		return errno
	}
	return nil
}

// ioctlRetry restarts requests interrupted by a signal.
func ioctlRetry(fd int, request uint, arg unsafe.Pointer) error {
	for {
		err := ioctl(fd, request, arg)
		if err != unix.EINTR {
			return err
		}
	}
}

func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
