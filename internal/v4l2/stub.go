//go:build !linux || !(amd64 || arm64)

package v4l2

import (
	"github.com/pkg/errors"

	"github.com/lanikai/mediacore/internal/capture"
)

// Camera reports that no device is present on platforms without V4L2 support.
type Camera struct {
	cfg Config
}

func NewCamera(cfg Config) *Camera {
	return &Camera{cfg: cfg.withDefaults()}
}

func (c *Camera) Open() (string, []capture.CaptureFormat, error) {
	return "", nil, errors.Wrapf(capture.ErrNoDevice, "%s: V4L2 not supported on this platform", c.cfg.Path)
}

func (c *Camera) Start(capture.CaptureFormat, capture.Host) error {
	return capture.ErrNoDevice
}

func (c *Camera) Stop() {}

func (c *Camera) IsRunning() bool {
	return false
}

func (c *Camera) PreferredFourCCs() []capture.FourCC {
	return nil
}

func (c *Camera) Close() error {
	return nil
}
