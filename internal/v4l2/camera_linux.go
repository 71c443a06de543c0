//go:build linux && (amd64 || arm64)

package v4l2

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/lanikai/mediacore/internal/capture"
	"github.com/lanikai/mediacore/internal/logging"
)

var log = logging.DefaultLogger.WithTag("v4l2")

// Camera is a capture.Backend for a V4L2 video capture device using
// memory-mapped streaming I/O.
type Camera struct {
	cfg Config

	mu      sync.Mutex
	fd      int
	opened  time.Time
	buffers [][]byte
	loop    capture.Loop
}

func NewCamera(cfg Config) *Camera {
	return &Camera{cfg: cfg.withDefaults(), fd: -1}
}

// PreferredFourCCs favours layouts that need the least conversion.
func (c *Camera) PreferredFourCCs() []capture.FourCC {
	return []capture.FourCC{
		capture.FourCCI420,
		capture.FourCCYUY2,
		capture.FourCCUYVY,
		capture.FourCCNV12,
		capture.FourCCMJPG,
	}
}

func (c *Camera) Open() (string, []capture.CaptureFormat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fd < 0 {
		fd, err := unix.Open(c.cfg.Path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err != nil {
			return "", nil, deviceError(err, c.cfg.Path)
		}
		c.fd = fd
		c.opened = time.Now()
	}

	var caps v4l2_capability
	if err := ioctlRetry(c.fd, VIDIOC_QUERYCAP, unsafe.Pointer(&caps)); err != nil {
		return "", nil, c.closeOnError(errors.Wrap(err, "query capabilities"))
	}
	devcaps := caps.capabilities
	if caps.device_caps != 0 {
		devcaps = caps.device_caps
	}
	if devcaps&V4L2_CAP_VIDEO_CAPTURE == 0 || devcaps&V4L2_CAP_STREAMING == 0 {
		return "", nil, c.closeOnError(errors.Wrapf(capture.ErrNoDevice, "%s is not a streaming capture device", c.cfg.Path))
	}

	formats, err := enumerateFormats(c.fd)
	if err != nil {
		return "", nil, c.closeOnError(errors.Wrap(err, "enumerate formats"))
	}

	id := fmt.Sprintf("%s (%s)", cstring(caps.card[:]), cstring(caps.bus_info[:]))
	log.Info("Opened %s: %s with %d formats", c.cfg.Path, id, len(formats))
	return id, formats, nil
}

func (c *Camera) closeOnError(err error) error {
	unix.Close(c.fd)
	c.fd = -1
	return err
}

// deviceError maps errors meaning the hardware is absent onto capture.ErrNoDevice.
func deviceError(err error, path string) error {
	switch err {
	case unix.ENOENT, unix.ENODEV, unix.ENXIO:
		return errors.Wrapf(capture.ErrNoDevice, "%s: %v", path, err)
	}
	return errors.Wrap(err, path)
}

func (c *Camera) Start(format capture.CaptureFormat, host capture.Host) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fd < 0 {
		return errors.Wrapf(capture.ErrNoDevice, "%s not open", c.cfg.Path)
	}
	if c.loop.Running() {
		return errors.New("v4l2: already streaming")
	}

	width, height, err := c.setFormat(format)
	if err != nil {
		return deviceError(err, c.cfg.Path)
	}
	if format.Interval > 0 {
		if err := c.setInterval(format.Interval); err != nil {
			// Not every driver supports it; run at the default rate.
			log.Warn("%s: set frame interval: %v", c.cfg.Path, err)
		}
	}
	c.setFlip()

	if err := c.mapBuffers(); err != nil {
		c.unmapBuffers()
		return deviceError(err, c.cfg.Path)
	}
	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	if err := ioctlRetry(c.fd, VIDIOC_STREAMON, unsafe.Pointer(&typ)); err != nil {
		c.unmapBuffers()
		return deviceError(err, c.cfg.Path)
	}

	fd, buffers, opened := c.fd, c.buffers, c.opened
	c.loop.Start(func(quit <-chan struct{}) {
		readLoop(quit, fd, buffers, opened, width, height, format.FourCC, host)
	})
	return nil
}

func (c *Camera) setFormat(format capture.CaptureFormat) (int, int, error) {
	f := v4l2_format{typ: V4L2_BUF_TYPE_VIDEO_CAPTURE}
	pix := f.pix()
	pix.width = uint32(format.Width)
	pix.height = uint32(format.Height)
	pix.pixelformat = uint32(format.FourCC)
	pix.field = V4L2_FIELD_ANY
	if err := ioctlRetry(c.fd, VIDIOC_S_FMT, unsafe.Pointer(&f)); err != nil {
		return 0, 0, err
	}
	if capture.FourCC(pix.pixelformat) != format.FourCC {
		return 0, 0, errors.Errorf("driver chose %s instead of %s", capture.FourCC(pix.pixelformat), format.FourCC)
	}
	if int(pix.width) != format.Width || int(pix.height) != format.Height {
		log.Info("%s: driver adjusted %dx%d to %dx%d", c.cfg.Path, format.Width, format.Height, pix.width, pix.height)
	}
	return int(pix.width), int(pix.height), nil
}

func (c *Camera) setInterval(interval time.Duration) error {
	p := v4l2_streamparm{typ: V4L2_BUF_TYPE_VIDEO_CAPTURE}
	cp := p.capture()
	cp.numerator = uint32(interval / time.Microsecond)
	cp.denominator = uint32(time.Second / time.Microsecond)
	return ioctlRetry(c.fd, VIDIOC_S_PARM, unsafe.Pointer(&p))
}

func (c *Camera) setFlip() {
	for _, ctrl := range []struct {
		on bool
		id uint32
	}{
		{c.cfg.HFlip, V4L2_CID_HFLIP},
		{c.cfg.VFlip, V4L2_CID_VFLIP},
	} {
		if !ctrl.on {
			continue
		}
		v := v4l2_control{id: ctrl.id, value: 1}
		if err := ioctlRetry(c.fd, VIDIOC_S_CTRL, unsafe.Pointer(&v)); err != nil {
			log.Warn("%s: set control %#x: %v", c.cfg.Path, ctrl.id, err)
		}
	}
}

// Request kernel buffers, memory-map them to user-space and queue them all.
func (c *Camera) mapBuffers() error {
	rb := v4l2_requestbuffers{
		count:  uint32(c.cfg.Buffers),
		typ:    V4L2_BUF_TYPE_VIDEO_CAPTURE,
		memory: V4L2_MEMORY_MMAP,
	}
	if err := ioctlRetry(c.fd, VIDIOC_REQBUFS, unsafe.Pointer(&rb)); err != nil {
		return errors.Wrap(err, "request buffers")
	}
	if rb.count == 0 {
		return errors.New("driver granted no buffers")
	}

	for i := uint32(0); i < rb.count; i++ {
		qb := v4l2_buffer{index: i, typ: V4L2_BUF_TYPE_VIDEO_CAPTURE, memory: V4L2_MEMORY_MMAP}
		if err := ioctlRetry(c.fd, VIDIOC_QUERYBUF, unsafe.Pointer(&qb)); err != nil {
			return errors.Wrap(err, "query buffer")
		}
		mem, err := unix.Mmap(c.fd, int64(uint32(qb.m)), int(qb.length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			return errors.Wrap(err, "mmap")
		}
		c.buffers = append(c.buffers, mem)

		if err := ioctlRetry(c.fd, VIDIOC_QBUF, unsafe.Pointer(&qb)); err != nil {
			return errors.Wrap(err, "queue buffer")
		}
	}
	return nil
}

func (c *Camera) unmapBuffers() {
	for _, mem := range c.buffers {
		if err := unix.Munmap(mem); err != nil {
			log.Warn("%s: munmap: %v", c.cfg.Path, err)
		}
	}
	c.buffers = nil

	rb := v4l2_requestbuffers{typ: V4L2_BUF_TYPE_VIDEO_CAPTURE, memory: V4L2_MEMORY_MMAP}
	ioctlRetry(c.fd, VIDIOC_REQBUFS, unsafe.Pointer(&rb))
}

// readLoop waits for filled buffers, hands them to the host and requeues them.
func readLoop(quit <-chan struct{}, fd int, buffers [][]byte, opened time.Time, width, height int, fourcc capture.FourCC, host capture.Host) {
	host.Ready()

	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		select {
		case <-quit:
			return
		default:
		}

		n, err := unix.Poll(pfd, 100)
		if err == unix.EINTR || n == 0 {
			continue
		}
		if err != nil {
			host.Fail(err)
			return
		}

		buf := v4l2_buffer{typ: V4L2_BUF_TYPE_VIDEO_CAPTURE, memory: V4L2_MEMORY_MMAP}
		if err := ioctlRetry(fd, VIDIOC_DQBUF, unsafe.Pointer(&buf)); err != nil {
			if err == unix.EAGAIN {
				continue
			}
			host.Fail(deviceError(err, "dequeue"))
			return
		}

		f := capture.NewFrameDescriptor(width, height, fourcc, buffers[buf.index][:buf.bytesused])
		f.ElapsedTime = time.Since(opened)
		f.TimeStamp = buf.timestamp.Nano()
		host.Deliver(f)

		if err := ioctlRetry(fd, VIDIOC_QBUF, unsafe.Pointer(&buf)); err != nil {
			host.Fail(deviceError(err, "requeue"))
			return
		}
	}
}

// Stop ends streaming and releases the buffers. The device stays open.
func (c *Camera) Stop() {
	c.loop.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fd < 0 || c.buffers == nil {
		return
	}
	typ := uint32(V4L2_BUF_TYPE_VIDEO_CAPTURE)
	if err := ioctlRetry(c.fd, VIDIOC_STREAMOFF, unsafe.Pointer(&typ)); err != nil {
		log.Warn("%s: stream off: %v", c.cfg.Path, err)
	}
	c.unmapBuffers()
}

func (c *Camera) IsRunning() bool {
	return c.loop.Running()
}

// Close releases the device.
func (c *Camera) Close() error {
	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}
