// Command trackd captures video from a camera (or a synthetic test pattern)
// into a local video track and serves a live preview of it over websockets.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/lanikai/mediacore"
	"github.com/lanikai/mediacore/internal/capture"
	"github.com/lanikai/mediacore/internal/logging"
	"github.com/lanikai/mediacore/internal/preview"
	"github.com/lanikai/mediacore/internal/track"
	"github.com/lanikai/mediacore/internal/v4l2"
)

var log = logging.DefaultLogger.WithTag("trackd")

const testPatternDevice = "testpattern"

func main() {
	flag.Parse()

	if flagHelp {
		help()
		os.Exit(0)
	}
	if flagVersion {
		version()
		os.Exit(0)
	}

	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func backend() capture.Backend {
	if flagDevice == testPatternDevice {
		return capture.NewTestPattern(flagFPS)
	}
	return v4l2.NewCamera(v4l2.Config{
		Path:  flagDevice,
		HFlip: flagHorizontalFlip,
		VFlip: flagVerticalFlip,
	})
}

func run() error {
	fourcc, err := capture.ParseFourCC(flagFourCC)
	if err != nil {
		return err
	}

	engine, err := mediacore.NewEngine(mediacore.Config{
		LogLevel: flagLogLevel,
		Normalizer: capture.Normalizer{
			ApplyRotation: flagRotate,
			SquarePixels:  flagSquarePixels,
		},
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	device := engine.NewCaptureDevice(backend())
	if err := device.Open(); err != nil {
		return errors.Wrapf(err, "open %s", flagDevice)
	}
	if id, ok := device.ID(); ok {
		log.Info("Opened %s", id)
	}
	device.StateChanged.Connect(func(d *capture.Device, s capture.State) {
		if format, ok := d.CaptureFormat(); ok {
			log.Info("Capture %s at %s", s, format)
		} else {
			log.Info("Capture %s", s)
		}
	})

	vt, err := engine.CreateLocalVideoTrack("camera", device)
	if err != nil {
		return err
	}
	// Observers run on the signaling thread, where proxy calls run in place.
	observer := track.NewObserver(func() {
		if state, err := vt.State(); err == nil {
			log.Debug("Track %s", state)
		}
	})
	if err := vt.RegisterObserver(observer); err != nil {
		return err
	}

	if flagPreviewAddr != "" {
		srv := preview.NewServer(preview.Config{
			Addr:   flagPreviewAddr,
			MaxFPS: flagPreviewFPS,
		})
		if err := vt.AddRenderer(srv); err != nil {
			return err
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Error("Preview server: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	desired := capture.CaptureFormat{
		Width:    flagWidth,
		Height:   flagHeight,
		Interval: capture.FpsToInterval(flagFPS),
		FourCC:   fourcc,
	}
	if state, err := device.Start(desired); err != nil {
		return errors.Wrapf(err, "start capture (%s)", state)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flagDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagDuration)
		defer cancel()
	}
	<-ctx.Done()

	if err := device.Stop(); err != nil {
		log.Warn("Stop capture: %v", err)
	}
	stats := device.Stats()
	log.Info("Delivered %d frames, dropped %d inactive, %d unstable, %d invalid",
		stats.Delivered, stats.DroppedInactive, stats.DroppedUnstable, stats.DroppedInvalid)

	return vt.Close()
}
