package v4l2

// DefaultPath is the usual first capture device.
const DefaultPath = "/dev/video0"

type Config struct {
	// Device path, usually "/dev/video0".
	Path string

	// Number of kernel driver buffers to map. Defaults to 4.
	Buffers int

	HFlip bool // Flip video horizontally
	VFlip bool // Flip video vertically
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.Buffers <= 0 {
		c.Buffers = 4
	}
	return c
}
