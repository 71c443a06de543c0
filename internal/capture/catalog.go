package capture

// FormatCatalog is the ordered, immutable list of formats a device supports.
// It is safe for concurrent use.
type FormatCatalog struct {
	formats []CaptureFormat
}

// NewFormatCatalog copies formats into a new catalog.
func NewFormatCatalog(formats []CaptureFormat) *FormatCatalog {
	return &FormatCatalog{formats: append([]CaptureFormat(nil), formats...)}
}

// Formats returns a copy of the catalog entries in order.
func (c *FormatCatalog) Formats() []CaptureFormat {
	if c == nil {
		return nil
	}
	return append([]CaptureFormat(nil), c.formats...)
}

func (c *FormatCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.formats)
}

// Contains reports whether an identical format is listed.
func (c *FormatCatalog) Contains(f CaptureFormat) bool {
	if c == nil {
		return false
	}
	for _, g := range c.formats {
		if g == f {
			return true
		}
	}
	return false
}
