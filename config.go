//////////////////////////////////////////////////////////////////////////////
//
// Config contains configuration data for Engine
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package mediacore

import (
	"time"

	"github.com/lanikai/mediacore/internal/capture"
)

type Config struct {
	// Name of the thread owning every track. Defaults to "signaling".
	SignalingThreadName string

	// Log level directives, in the LOGLEVEL format ("info,capture=debug").
	// Applied on top of the environment.
	LogLevel string

	// How long capture devices may take to start. Zero uses the
	// capture package default.
	StartTimeout time.Duration

	// Frame normalization applied by capture devices.
	Normalizer capture.Normalizer
}

func (c Config) withDefaults() Config {
	if c.SignalingThreadName == "" {
		c.SignalingThreadName = "signaling"
	}
	if c.StartTimeout == 0 {
		c.StartTimeout = capture.DefaultStartTimeout
	}
	return c
}
