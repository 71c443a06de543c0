package capture

// Backend is a concrete capture driver. The Device owns the lifecycle state
// and calls these methods from its control goroutine.
type Backend interface {
	// Open acquires the device and reports its stable identifier and the
	// formats it supports. The formats may be empty if the backend reports
	// them later through Device.SetSupportedFormats.
	Open() (id string, formats []CaptureFormat, err error)

	// Start begins capturing in format. A nil error means the device is
	// starting; the backend then calls Host.Ready or Host.Fail exactly once,
	// followed by Host.Deliver for each frame. Returning ErrNoDevice (or an
	// error wrapping it) reports missing hardware.
	Start(format CaptureFormat, host Host) error

	// Stop ends capture and returns after the backend stops calling Host.
	Stop()

	IsRunning() bool

	// PreferredFourCCs lists the formats to consider, best first, when the
	// requested format does not name one.
	PreferredFourCCs() []FourCC
}

// Pauser is implemented by backends that can suspend capture cheaply.
// Without it a paused Device discards frames.
type Pauser interface {
	Pause() error
	Resume() error
}

// Host receives the asynchronous results of Backend.Start. All methods may be
// called from the capture goroutine.
type Host interface {
	Ready()
	Fail(err error)
	Deliver(f *FrameDescriptor)
}
