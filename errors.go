package mediacore

import "github.com/pkg/errors"

var (
	// ErrClosed is returned by an Engine after Close.
	ErrClosed = errors.New("mediacore: engine closed")
)
