package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Color bars in Y, Cb, Cr: white, yellow, cyan, green, magenta, red, blue, black.
var bars = [8][3]byte{
	{235, 128, 128},
	{210, 16, 146},
	{170, 166, 16},
	{145, 54, 34},
	{106, 202, 222},
	{81, 90, 240},
	{41, 240, 110},
	{16, 128, 128},
}

var testPatternSizes = [][2]int{
	{1280, 720},
	{640, 480},
	{320, 240},
}

// TestPattern is a synthetic Backend producing scrolling color bars.
type TestPattern struct {
	fourccs []FourCC
	fps     int

	// Returned from Start when set.
	StartError error
	// When set, the backend reports readiness only after this delay.
	ReadyDelay time.Duration

	mu      sync.Mutex
	id      string
	created time.Time
	loop    Loop
}

// NewTestPattern returns a test pattern producing the given formats, which
// must be YUY2 or I420. Without arguments both are offered, YUY2 first.
func NewTestPattern(fps int, fourccs ...FourCC) *TestPattern {
	if len(fourccs) == 0 {
		fourccs = []FourCC{FourCCYUY2, FourCCI420}
	}
	return &TestPattern{
		fourccs: fourccs,
		fps:     fps,
		created: time.Now(),
	}
}

func (tp *TestPattern) Open() (string, []CaptureFormat, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.id == "" {
		tp.id = "testpattern-" + uuid.NewString()
	}
	var formats []CaptureFormat
	for _, fourcc := range tp.fourccs {
		for _, size := range testPatternSizes {
			formats = append(formats, CaptureFormat{
				Width:    size[0],
				Height:   size[1],
				Interval: FpsToInterval(tp.fps),
				FourCC:   fourcc,
			})
		}
	}
	return tp.id, formats, nil
}

func (tp *TestPattern) PreferredFourCCs() []FourCC {
	return tp.fourccs
}

func (tp *TestPattern) Start(format CaptureFormat, host Host) error {
	if tp.StartError != nil {
		return tp.StartError
	}
	switch format.FourCC.Canonical() {
	case FourCCYUY2, FourCCI420:
	default:
		return errors.Wrapf(ErrUnsupportedFourCC, "test pattern: %s", format.FourCC)
	}
	size, _ := format.FourCC.FrameSize(format.Width, format.Height)
	buf := make([]byte, size)

	if !tp.loop.Start(func(quit <-chan struct{}) { tp.run(quit, format, buf, host) }) {
		return errors.New("test pattern: already running")
	}
	return nil
}

func (tp *TestPattern) run(quit <-chan struct{}, format CaptureFormat, buf []byte, host Host) {
	if tp.ReadyDelay > 0 {
		select {
		case <-quit:
			return
		case <-time.After(tp.ReadyDelay):
		}
	}
	host.Ready()

	interval := format.Interval
	if interval <= 0 {
		interval = FpsToInterval(30)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 0; ; n++ {
		drawBars(buf, format, n)
		f := NewFrameDescriptor(format.Width, format.Height, format.FourCC, buf)
		f.ElapsedTime = time.Since(tp.created)
		f.TimeStamp = time.Now().UnixNano()
		host.Deliver(f)

		select {
		case <-quit:
			return
		case <-ticker.C:
		}
	}
}

func (tp *TestPattern) Stop() {
	tp.loop.Stop()
}

func (tp *TestPattern) IsRunning() bool {
	return tp.loop.Running()
}

// drawBars renders eight vertical bars scrolled left by n pixels.
func drawBars(buf []byte, format CaptureFormat, n int) {
	w, h := format.Width, format.Height
	barAt := func(x int) [3]byte {
		return bars[((x+n)%w)*len(bars)/w]
	}

	switch format.FourCC.Canonical() {
	case FourCCYUY2:
		stride := 4 * ((w + 1) / 2)
		for x := 0; x < w; x += 2 {
			c := barAt(x)
			mp := [4]byte{c[0], c[1], c[0], c[2]}
			for y := 0; y < h; y++ {
				copy(buf[y*stride+2*x:], mp[:])
			}
		}
	case FourCCI420:
		cw := (w + 1) / 2
		ySize := w * h
		cSize := cw * ((h + 1) / 2)
		for x := 0; x < w; x++ {
			c := barAt(x)
			for y := 0; y < h; y++ {
				buf[y*w+x] = c[0]
			}
			if x%2 == 0 {
				for cy := 0; cy < (h+1)/2; cy++ {
					buf[ySize+cy*cw+x/2] = c[1]
					buf[ySize+cSize+cy*cw+x/2] = c[2]
				}
			}
		}
	}
}
