package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

const envVar = "LOGLEVEL"

type tagLevel struct {
	tag   string
	level Level
}

var (
	tagLevelsMu sync.RWMutex
	tagLevels   []tagLevel

	// Bumped by Configure so loggers re-resolve their cached level.
	generation atomic.Uint64
)

func init() {
	// Parse environment variable into comma-separated "tag=level" directives.
	// If "tag=" is absent, use the level as the default.
	if err := Configure(os.Getenv(envVar)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s: %s\n", envVar, err)
	}
}

// Configure applies comma-separated "tag=level" (or bare "level") directives. Existing
// loggers pick up the new levels on their next message. Invalid directives are skipped and the last
// error is returned.
func Configure(directives string) error {
	tagLevelsMu.Lock()
	defer tagLevelsMu.Unlock()
	defer generation.Add(1)

	var lastErr error
	for _, d := range strings.Split(directives, ",") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		v := strings.SplitN(d, "=", 2)
		level, err := ParseLevel(v[len(v)-1])
		if err != nil {
			lastErr = err
			continue
		}
		if len(v) == 1 {
			defaultLevel = level
		} else {
			tagLevels = append(tagLevels, tagLevel{v[0], level})
		}
	}
	return lastErr
}

func determineLevel(tag string, fallback *Level) Level {
	tagLevelsMu.RLock()
	defer tagLevelsMu.RUnlock()

	// Later directives win.
	for i := len(tagLevels) - 1; i >= 0; i-- {
		if tagLevels[i].tag == tag {
			return tagLevels[i].level
		}
	}
	if fallback != nil {
		return *fallback
	}
	return defaultLevel
}
