package capture

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/lanikai/mediacore/internal/event"
	"github.com/lanikai/mediacore/internal/logging"
)

var log = logging.DefaultLogger.WithTag("capture")

// DefaultStartTimeout bounds how long a device may stay in Starting.
const DefaultStartTimeout = 10 * time.Second

type Option func(*Device)

// WithStartTimeout sets how long the backend has to report readiness. Zero
// disables the timeout.
func WithStartTimeout(d time.Duration) Option {
	return func(dev *Device) {
		dev.startTimeout = d
	}
}

// WithNormalizer configures frame normalization.
func WithNormalizer(n Normalizer) Option {
	return func(dev *Device) {
		dev.normalizer = n
	}
}

// WithLogger replaces the package logger.
func WithLogger(l *logging.Logger) Option {
	return func(dev *Device) {
		dev.log = l
	}
}

// Stats counts frames handed to the device by its backend.
type Stats struct {
	Delivered uint64
	// Arrived while not running.
	DroppedInactive uint64
	// Differed in size, fourcc or pixel aspect from the first frame of the session.
	DroppedUnstable uint64
	// Could not be normalized.
	DroppedInvalid uint64
}

// Device drives a Backend through the capture state machine and normalizes the
// frames it produces.
//
// Start, Stop, Pause, Resume and Close are meant to be called from one control
// goroutine. Frames arrive on the backend's capture goroutine and are fanned out
// synchronously on it, so handlers must return quickly and must not call the
// lifecycle methods.
type Device struct {
	// StateChanged reports every state change other than the value returned by Start.
	StateChanged event.Signal[*Device, State]

	// FrameCaptured carries each raw frame accepted by the pipeline.
	FrameCaptured event.Signal[*Device, *FrameDescriptor]

	// FrameReady carries the normalized version of each raw frame.
	FrameReady event.Signal[*Device, *VideoFrame]

	backend      Backend
	normalizer   Normalizer
	startTimeout time.Duration
	log          *logging.Logger
	created      time.Time

	// Read without the lock on the capture path.
	state   atomic.Int32
	session atomic.Uint64

	delivered       atomic.Uint64
	droppedInactive atomic.Uint64
	droppedUnstable atomic.Uint64
	droppedInvalid  atomic.Uint64

	mu      sync.Mutex
	opened  bool
	id      string
	catalog *FormatCatalog
	format  *CaptureFormat
	timer   *time.Timer

	// State notifications waiting to be emitted, in transition order.
	pending  []State
	flushing bool
}

func NewDevice(backend Backend, opts ...Option) *Device {
	d := &Device{
		backend:      backend,
		startTimeout: DefaultStartTimeout,
		log:          log,
		created:      time.Now(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Device) State() State {
	return State(d.state.Load())
}

// Since returns the time elapsed since the device was created, for use as
// FrameDescriptor.ElapsedTime.
func (d *Device) Since() time.Duration {
	return time.Since(d.created)
}

// ID returns the backend's identifier. It is available once the device is open.
func (d *Device) ID() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id, d.opened
}

// SupportedFormats returns the catalog, if known.
func (d *Device) SupportedFormats() (*FormatCatalog, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog, d.catalog != nil
}

// SetSupportedFormats records the catalog for the current open session. The
// catalog can be set only once per session; later attempts fail with
// ErrCatalogSealed and leave the catalog unchanged.
func (d *Device) SetSupportedFormats(formats []CaptureFormat) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setCatalogLocked(formats)
}

func (d *Device) setCatalogLocked(formats []CaptureFormat) error {
	if d.catalog != nil {
		d.log.Warn("%s: ignoring second set of supported formats", d.id)
		return ErrCatalogSealed
	}
	d.catalog = NewFormatCatalog(formats)
	return nil
}

// CaptureFormat returns the format of the current session. It is present only
// while Starting, Running or Paused.
func (d *Device) CaptureFormat() (CaptureFormat, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.format == nil {
		return CaptureFormat{}, false
	}
	return *d.format, true
}

// GetBestCaptureFormat negotiates desired against the catalog. It returns false
// if the catalog is unknown or has no eligible entry.
func (d *Device) GetBestCaptureFormat(desired CaptureFormat) (CaptureFormat, bool) {
	d.mu.Lock()
	catalog := d.catalog
	d.mu.Unlock()
	if catalog == nil {
		return CaptureFormat{}, false
	}
	return BestFormat(desired, catalog, d.backend.PreferredFourCCs())
}

// Open acquires the device. It is called implicitly by Start.
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openLocked()
}

func (d *Device) openLocked() error {
	if d.opened {
		return nil
	}
	id, formats, err := d.backend.Open()
	if err != nil {
		return errors.Wrap(err, "open")
	}
	d.id, d.opened = id, true
	if len(formats) > 0 {
		_ = d.setCatalogLocked(formats)
	}
	d.log.Debug("%s: opened with %d formats", id, len(formats))
	return nil
}

// Start opens the device if necessary, negotiates the closest supported format
// and asks the backend to start. The returned state is Starting on success, or
// Failed or NoDevice. Reaching Running is reported through StateChanged.
func (d *Device) Start(desired CaptureFormat) (State, error) {
	d.mu.Lock()
	cur := d.State()
	if !cur.CanTransition(Starting) {
		d.mu.Unlock()
		return cur, errors.Wrapf(ErrInvalidTransition, "start while %s", cur)
	}
	d.setStateLocked(Starting)

	if err := d.openLocked(); err != nil {
		st := d.failLocked(err)
		d.mu.Unlock()
		return st, err
	}

	var (
		best CaptureFormat
		ok   bool
	)
	if d.catalog != nil {
		best, ok = BestFormat(desired, d.catalog, d.backend.PreferredFourCCs())
	}
	if !ok {
		err := errors.Wrapf(ErrNoMatchingFormat, "%s", desired)
		st := d.failLocked(err)
		d.mu.Unlock()
		return st, err
	}
	d.format = &best
	h := d.newSessionLocked()
	d.log.Info("%s: starting %s (requested %s)", d.id, best, desired)
	d.mu.Unlock()

	// A session that failed asynchronously may have left the backend streaming.
	if d.backend.IsRunning() {
		d.backend.Stop()
	}

	// The backend may call back into the host before returning.
	err := d.backend.Start(best, h)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		if d.session.Load() != h.id || d.State() != Starting {
			return d.State(), err
		}
		return d.failLocked(err), err
	}
	if d.startTimeout > 0 && d.session.Load() == h.id && d.State() == Starting {
		d.timer = time.AfterFunc(d.startTimeout, func() { d.startTimedOut(h.id) })
	}
	return Starting, nil
}

// failLocked moves a starting device to Failed or NoDevice depending on err.
// The result is the direct outcome of Start and is not emitted.
func (d *Device) failLocked(err error) State {
	st := Failed
	if errors.Is(err, ErrNoDevice) {
		st = NoDevice
	}
	d.log.Warn("%s: start failed: %v", d.id, err)
	d.endSessionLocked()
	d.setStateLocked(st)
	return st
}

func (d *Device) startTimedOut(session uint64) {
	d.mu.Lock()
	if d.session.Load() != session || d.State() != Starting {
		d.mu.Unlock()
		return
	}
	d.log.Warn("%s: not ready after %v", d.id, d.startTimeout)
	d.endSessionLocked()
	d.transitionLocked(Failed)
	d.mu.Unlock()

	if d.backend.IsRunning() {
		d.backend.Stop()
	}
	d.flush()
}

// Stop ends the capture session. Stopping a stopped device only stops a backend
// still streaming after an asynchronous failure. A
// device that is still Starting cannot be stopped; it leaves Starting on its
// own once the backend reports or the start timeout expires.
func (d *Device) Stop() error {
	d.mu.Lock()
	cur := d.State()
	if cur == Stopped {
		d.mu.Unlock()
		// Capture may have failed while running without the backend stopping.
		if d.backend.IsRunning() {
			d.backend.Stop()
		}
		return nil
	}
	if !cur.CanTransition(Stopped) {
		d.mu.Unlock()
		return errors.Wrapf(ErrInvalidTransition, "stop while %s", cur)
	}
	d.endSessionLocked()
	d.transitionLocked(Stopped)
	d.log.Info("%s: stopped", d.id)
	d.mu.Unlock()

	// Outside the lock: the capture goroutine may be waiting on it.
	if d.backend.IsRunning() {
		d.backend.Stop()
	}
	d.flush()
	return nil
}

// Pause suspends frame delivery on a running device.
func (d *Device) Pause() error {
	return d.toggle(Running, Paused, func(p Pauser) error { return p.Pause() })
}

// Resume restarts frame delivery on a paused device.
func (d *Device) Resume() error {
	return d.toggle(Paused, Running, func(p Pauser) error { return p.Resume() })
}

func (d *Device) toggle(from, to State, fn func(Pauser) error) error {
	if cur := d.State(); cur != from {
		return errors.Wrapf(ErrInvalidTransition, "%s while %s", to, cur)
	}
	if p, ok := d.backend.(Pauser); ok {
		if err := fn(p); err != nil {
			return err
		}
	}

	d.mu.Lock()
	if cur := d.State(); cur != from {
		// The backend failed in the meantime.
		d.mu.Unlock()
		return errors.Wrapf(ErrInvalidTransition, "%s while %s", to, cur)
	}
	d.transitionLocked(to)
	d.mu.Unlock()
	d.flush()
	return nil
}

// IsRunning reports whether the backend is capturing.
func (d *Device) IsRunning() bool {
	return d.backend.IsRunning()
}

// Close ends the open session, forgetting the identifier and catalog, and
// closes the backend if it implements io.Closer. An active device must be
// stopped first.
func (d *Device) Close() error {
	d.mu.Lock()
	if st := d.State(); st.Active() {
		d.mu.Unlock()
		return errors.Wrapf(ErrDeviceActive, "close while %s", st)
	}
	if d.State() != Stopped {
		d.transitionLocked(Stopped)
	}
	wasOpen := d.opened
	d.opened, d.id, d.catalog = false, "", nil
	d.mu.Unlock()
	d.flush()

	if c, ok := d.backend.(io.Closer); ok && wasOpen {
		return c.Close()
	}
	return nil
}

func (d *Device) Stats() Stats {
	return Stats{
		Delivered:       d.delivered.Load(),
		DroppedInactive: d.droppedInactive.Load(),
		DroppedUnstable: d.droppedUnstable.Load(),
		DroppedInvalid:  d.droppedInvalid.Load(),
	}
}

// setStateLocked applies a transition allowed by the state table. Anything else
// is a bug in this package.
func (d *Device) setStateLocked(next State) {
	cur := d.State()
	if !cur.CanTransition(next) {
		panic("capture: illegal transition " + cur.String() + " -> " + next.String())
	}
	d.state.Store(int32(next))
	if !next.Active() {
		d.format = nil
	}
}

// transitionLocked is setStateLocked plus a StateChanged notification.
func (d *Device) transitionLocked(next State) {
	d.setStateLocked(next)
	d.pending = append(d.pending, next)
}

// flush emits queued state notifications in order. A notification queued by a
// handler is emitted after that handler returns.
func (d *Device) flush() {
	d.mu.Lock()
	if d.flushing {
		d.mu.Unlock()
		return
	}
	d.flushing = true
	for len(d.pending) > 0 {
		st := d.pending[0]
		d.pending = d.pending[1:]
		d.mu.Unlock()
		d.StateChanged.Emit(d, st)
		d.mu.Lock()
	}
	d.flushing = false
	d.mu.Unlock()
}

func (d *Device) newSessionLocked() *session {
	return &session{d: d, id: d.session.Add(1)}
}

// endSessionLocked detaches the current backend session so late callbacks
// are ignored.
func (d *Device) endSessionLocked() {
	d.session.Add(1)
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// session is the Host handed to the backend for one Start.
type session struct {
	d  *Device
	id uint64

	// First frame attributes. Touched only by the capture goroutine.
	shape    frameShape
	hasShape bool
}

func (s *session) current() bool {
	return s.d.session.Load() == s.id
}

func (s *session) Ready() {
	d := s.d
	d.mu.Lock()
	if !s.current() || d.State() != Starting {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.transitionLocked(Running)
	d.log.Info("%s: running", d.id)
	d.mu.Unlock()
	d.flush()
}

// Fail reports an asynchronous error. While starting the device moves to
// Failed or NoDevice. A running or paused device is stopped, since the state
// machine has no failure edge out of those states.
func (s *session) Fail(err error) {
	d := s.d
	d.mu.Lock()
	if !s.current() {
		d.mu.Unlock()
		return
	}
	switch cur := d.State(); cur {
	case Starting:
		st := Failed
		if errors.Is(err, ErrNoDevice) {
			st = NoDevice
		}
		d.log.Warn("%s: start failed: %v", d.id, err)
		d.endSessionLocked()
		d.transitionLocked(st)
	case Running, Paused:
		d.log.Error("%s: capture failed: %v", d.id, err)
		d.endSessionLocked()
		d.transitionLocked(Stopped)
	default:
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	d.flush()
}

func (s *session) Deliver(f *FrameDescriptor) {
	d := s.d
	if !s.current() || d.State() != Running {
		d.droppedInactive.Add(1)
		return
	}

	shape := shapeOf(f)
	if !s.hasShape {
		s.shape, s.hasShape = shape, true
	} else if shape != s.shape {
		if d.droppedUnstable.Add(1) == 1 {
			d.log.Warn("%s: dropping frame %dx%d %s, session started with %dx%d %s",
				d.id, f.Width, f.Height, f.FourCC, s.shape.width, s.shape.height, s.shape.fourcc)
		}
		return
	}

	d.FrameCaptured.Emit(d, f)

	vf, release, err := d.normalizer.Normalize(f)
	if err != nil {
		d.droppedInvalid.Add(1)
		d.log.Debug("%s: dropping frame: %v", d.id, err)
		return
	}
	d.FrameReady.Emit(d, vf)
	release()
	d.delivered.Add(1)
}
