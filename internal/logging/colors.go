package logging

import (
	"github.com/fatih/color"
)

// Level colors. Rendering is disabled automatically by the color package when the
// destination is not a terminal (or NO_COLOR is set).
var (
	dimColor   = color.New(color.FgWhite)
	levelColor = map[Level]*color.Color{
		Error: color.New(color.FgRed, color.Bold),
		Warn:  color.New(color.FgRed),
		Info:  color.New(color.Reset),
		Debug: color.New(color.FgGreen),
	}
	traceColor = color.New(color.FgYellow)
)

func (l Level) color() *color.Color {
	if c, ok := levelColor[l]; ok {
		return c
	}
	return traceColor
}
