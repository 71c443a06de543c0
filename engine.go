//////////////////////////////////////////////////////////////////////////////
//
// Engine owns the signaling thread and hands out thread-safe track proxies
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package mediacore

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lanikai/mediacore/internal/capture"
	"github.com/lanikai/mediacore/internal/dispatch"
	"github.com/lanikai/mediacore/internal/logging"
	"github.com/lanikai/mediacore/internal/proxy"
	"github.com/lanikai/mediacore/internal/track"
)

var log = logging.DefaultLogger.WithTag("mediacore")

// Engine creates tracks bound to a single signaling thread. Every track it
// returns may be used from any goroutine.
type Engine struct {
	cfg    Config
	thread *dispatch.Thread

	mu     sync.Mutex
	closed bool
}

// NewEngine starts the signaling thread.
func NewEngine(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if cfg.LogLevel != "" {
		if err := logging.Configure(cfg.LogLevel); err != nil {
			return nil, errors.Wrap(err, "log level")
		}
	}

	thread := dispatch.NewThread(cfg.SignalingThreadName)
	if err := thread.Start(); err != nil {
		return nil, err
	}
	log.Debug("Started %s thread", cfg.SignalingThreadName)
	return &Engine{cfg: cfg, thread: thread}, nil
}

// SignalingThread returns the thread owning every track.
func (e *Engine) SignalingThread() *dispatch.Thread {
	return e.thread
}

// NewCaptureDevice wraps a backend in a device configured by the engine.
func (e *Engine) NewCaptureDevice(backend capture.Backend) *capture.Device {
	return capture.NewDevice(backend,
		capture.WithStartTimeout(e.cfg.StartTimeout),
		capture.WithNormalizer(e.cfg.Normalizer),
	)
}

func (e *Engine) check() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

// label generates a label when none is given.
func label(l string) string {
	if l == "" {
		return uuid.NewString()
	}
	return l
}

func (e *Engine) CreateLocalVideoTrack(l string, device *capture.Device) (*proxy.VideoTrackProxy, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errors.New("mediacore: nil capture device")
	}
	return proxy.NewLocalVideoTrack(e.thread, label(l), device)
}

func (e *Engine) CreateRemoteVideoTrack(l string) (*proxy.VideoTrackProxy, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return proxy.NewRemoteVideoTrack(e.thread, label(l))
}

func (e *Engine) CreateLocalAudioTrack(l string, device track.AudioDevice) (*proxy.AudioTrackProxy, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return proxy.NewLocalAudioTrack(e.thread, label(l), device)
}

func (e *Engine) CreateRemoteAudioTrack(l string) (*proxy.AudioTrackProxy, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return proxy.NewRemoteAudioTrack(e.thread, label(l))
}

// AdoptVideoTrack takes ownership of impl. The caller must not use impl
// directly afterwards.
func (e *Engine) AdoptVideoTrack(impl *track.VideoTrack) (*proxy.VideoTrackProxy, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return proxy.AdoptVideoTrack(e.thread, impl)
}

// AdoptAudioTrack takes ownership of impl. The caller must not use impl
// directly afterwards.
func (e *Engine) AdoptAudioTrack(impl *track.AudioTrack) (*proxy.AudioTrackProxy, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return proxy.AdoptAudioTrack(e.thread, impl)
}

// Close stops the signaling thread. Tracks created by the engine report
// dispatch.ErrClosed afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.thread.Stop()
	log.Debug("Stopped %s thread", e.cfg.SignalingThreadName)
	return nil
}
