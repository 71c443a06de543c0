package capture

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoDevice is returned by a Backend when the underlying hardware is absent.
	ErrNoDevice = errors.New("capture: no device")

	ErrNoMatchingFormat  = errors.New("capture: no matching capture format")
	ErrCatalogSealed     = errors.New("capture: supported formats already set")
	ErrInvalidTransition = errors.New("capture: invalid state transition")
	ErrDeviceActive      = errors.New("capture: device is active")
	ErrUnknownDataSize   = errors.New("capture: frame data size unknown")
	ErrUnsupportedFourCC = errors.New("capture: unsupported fourcc")
)
