package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"
)

var (
	flagDevice         string
	flagWidth          int
	flagHeight         int
	flagFPS            int
	flagFourCC         string
	flagPreviewAddr    string
	flagPreviewFPS     int
	flagDuration       time.Duration
	flagLogLevel       string
	flagHorizontalFlip bool
	flagVerticalFlip   bool
	flagRotate         bool
	flagSquarePixels   bool
	flagHelp           bool
	flagVersion        bool
)

func init() {
	flag.StringVarP(&flagDevice, "device", "d", "/dev/video0", "Capture device")
	flag.IntVarP(&flagWidth, "width", "x", 1280, "Video width")
	flag.IntVarP(&flagHeight, "height", "y", 720, "Video height")
	flag.IntVarP(&flagFPS, "fps", "f", 30, "Frames per second")
	flag.StringVarP(&flagFourCC, "fourcc", "c", "any", "Pixel format")
	flag.StringVarP(&flagPreviewAddr, "preview", "p", ":8000", "Preview address")
	flag.IntVarP(&flagPreviewFPS, "preview-fps", "", 15, "Preview frame rate limit")
	flag.DurationVarP(&flagDuration, "duration", "t", 0, "Stop after this long")
	flag.StringVarP(&flagLogLevel, "log", "l", "", "Log level directives")
	flag.BoolVarP(&flagHorizontalFlip, "hflip", "", false, "Flip horizontally")
	flag.BoolVarP(&flagVerticalFlip, "vflip", "", false, "Flip vertically")
	flag.BoolVarP(&flagRotate, "rotate", "", false, "Apply frame rotation")
	flag.BoolVarP(&flagSquarePixels, "square-pixels", "", false, "Resample to square pixels")

	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
	flag.BoolVarP(&flagVersion, "version", "v", false, "Print version information and exit")
}

const helpString = `Camera capture with a live browser preview

Usage: trackd [OPTION]...

Capture:
  -d, --device=FILE      Capture device, or "testpattern" (default: /dev/video0)
  -x, --width=NUM        Desired video width (default: 1280)
  -y, --height=NUM       Desired video height (default: 720)
  -f, --fps=NUM          Desired frame rate (default: 30)
  -c, --fourcc=TAG       Desired pixel format, e.g. YUYV or MJPG (default: any)
      --hflip            Flip video horizontally
      --vflip            Flip video vertically
      --rotate           Apply the rotation reported with each frame
      --square-pixels    Resample frames with non-square pixels

Preview:
  -p, --preview=ADDR     Preview listen address, empty to disable (default: :8000)
      --preview-fps=NUM  Preview frame rate limit (default: 15)

Miscellaneous:
  -t, --duration=TIME    Stop capturing after TIME, e.g. 30s (default: run until interrupted)
  -l, --log=LEVELS       Log level directives, e.g. info,capture=debug
  -h, --help             Prints this help message and exits
  -v, --version          Prints version information and exits

The LOGLEVEL environment variable accepts the same directives as --log.`

// Help information is printed and program exits
func help() {
	r := color.New(color.FgRed)
	y := color.New(color.FgYellow)
	b := color.New(color.FgCyan)

	//  _                      _         _
	// | |_  _ __  __ _   ___ | | __  __| |
	// | __|| '__|/ _` | / __|| |/ / / _` |
	// | |_ | |  | (_| || (__ |   < | (_| |
	//  \__||_|   \__,_| \___||_|\_\ \__,_|

	// Line 1
	r.Printf(" _    ")
	y.Printf("     ")
	b.Printf("       ")
	r.Printf("      ")
	y.Printf("_     ")
	b.Println("    _ ")

	// Line 2
	r.Printf("| |_  ")
	y.Printf("_ __ ")
	b.Printf(" __ _  ")
	r.Printf(" ___ ")
	y.Printf("| | __ ")
	b.Println(" __| |")

	// Line 3
	r.Printf("| __|")
	y.Printf("| '__|")
	b.Printf("/ _` | ")
	r.Printf("/ __|")
	y.Printf("| |/ / ")
	b.Println("/ _` |")

	// Line 4
	r.Printf("| |_ ")
	y.Printf("| |  ")
	b.Printf("| (_| |")
	r.Printf("| (__ ")
	y.Printf("|   < ")
	b.Println("| (_| |")

	// Line 5
	r.Printf(" \\__|")
	y.Printf("|_|  ")
	b.Printf(" \\__,_|")
	r.Printf(" \\___|")
	y.Printf("|_|\\_\\ ")
	b.Println("\\__,_|")

	fmt.Println(helpString)
}

// Populated via -ldflags="-X ...".
var GitRevisionId string

func version() {
	fmt.Println("trackd", GitRevisionId)
	fmt.Println("Copyright 2019 Lanikai Labs LLC. All rights reserved.")
}
