package capture

// Format distance. Candidates are compared lexicographically on width, then
// height measured against the desired aspect ratio at the candidate's width,
// then frame rate, then rank of the fourcc in the preference list. Remaining
// ties go to the earlier catalog entry. Falling short of the desired width,
// height or frame rate costs three times as much as exceeding it, so the
// closest larger format wins over an equally close smaller one.
type distance struct {
	width  int
	height int
	fps    int
	fourcc int
}

const shortfallPenalty = 3

func (d distance) less(o distance) bool {
	switch {
	case d.width != o.width:
		return d.width < o.width
	case d.height != o.height:
		return d.height < o.height
	case d.fps != o.fps:
		return d.fps < o.fps
	}
	return d.fourcc < o.fourcc
}

func delta(have, want int) int {
	if have < want {
		return (want - have) * shortfallPenalty
	}
	return have - want
}

// formatDistance returns false if supported is not eligible for desired.
func formatDistance(desired, supported CaptureFormat, preferred []FourCC) (distance, bool) {
	var d distance

	have := supported.FourCC.Canonical()
	if desired.FourCC == FourCCAny {
		d.fourcc = -1
		for i, p := range preferred {
			if p.Canonical() == have {
				d.fourcc = i
				break
			}
		}
		if d.fourcc < 0 {
			return d, false
		}
	} else if have != desired.FourCC.Canonical() {
		return d, false
	}

	d.width = delta(supported.Width, desired.Width)

	// Height the desired aspect ratio implies at the supported width.
	aspectHeight := desired.Height
	if desired.Width > 0 {
		aspectHeight = supported.Width * desired.Height / desired.Width
	}
	d.height = delta(supported.Height, aspectHeight)

	wantFps, haveFps := desired.Fps(), supported.Fps()
	if wantFps > 0 && haveFps > 0 {
		d.fps = delta(haveFps, wantFps)
	}
	return d, true
}

// BestFormat picks the catalog entry closest to desired. Only entries whose
// fourcc equals desired.FourCC are eligible, or, when desired.FourCC is
// FourCCAny, entries whose fourcc appears in preferred. The result carries
// the chosen entry's size and fourcc with the longer of the two intervals.
func BestFormat(desired CaptureFormat, catalog *FormatCatalog, preferred []FourCC) (CaptureFormat, bool) {
	var (
		best  CaptureFormat
		bestD distance
		found bool
	)
	for _, f := range catalog.Formats() {
		d, ok := formatDistance(desired, f, preferred)
		if !ok {
			continue
		}
		if !found || d.less(bestD) {
			best, bestD, found = f, d, true
		}
	}
	if !found {
		return CaptureFormat{}, false
	}

	if desired.Interval > best.Interval {
		best.Interval = desired.Interval
	}
	return best, true
}
