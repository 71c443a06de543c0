package capture

import (
	"fmt"
	"time"
)

// MinimumInterval is the shortest frame interval, 10000 fps.
const MinimumInterval = time.Second / 10000

// FpsToInterval converts a frame rate to a frame interval.
func FpsToInterval(fps int) time.Duration {
	if fps <= 0 {
		return MinimumInterval
	}
	return time.Second / time.Duration(fps)
}

// IntervalToFps converts a frame interval to a frame rate. A zero interval
// yields zero, meaning unspecified.
func IntervalToFps(interval time.Duration) int {
	if interval <= 0 {
		return 0
	}
	return int(time.Second / interval)
}

// CaptureFormat describes a resolution, pixel layout and frame interval a
// device can produce.
type CaptureFormat struct {
	Width    int
	Height   int
	Interval time.Duration
	FourCC   FourCC
}

// Fps returns the frame rate corresponding to the interval.
func (f CaptureFormat) Fps() int {
	return IntervalToFps(f.Interval)
}

// IsSize0x0 reports whether no resolution was requested.
func (f CaptureFormat) IsSize0x0() bool {
	return f.Width == 0 && f.Height == 0
}

func (f CaptureFormat) String() string {
	return fmt.Sprintf("%s %dx%dx%d", f.FourCC, f.Width, f.Height, f.Fps())
}
