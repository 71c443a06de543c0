package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"error", Error},
		{"W", Warn},
		{"info", Info},
		{"d", Debug},
		{"trace", MaxLevel},
		{"3", Level(3)},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
	_, err = ParseLevel("12")
	assert.Error(t, err)
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var out bytes.Buffer
	info := Info
	log := newLogger("test", &info, &output{w: &out})

	log.Debug("hidden %d", 1)
	assert.Zero(t, out.Len())

	log.Warn("shown %d", 2)
	assert.Contains(t, out.String(), "shown 2")
	assert.Contains(t, out.String(), "W/test")
	assert.Contains(t, out.String(), "logger_test.go")
}

func TestConfigureTagLevel(t *testing.T) {
	require.NoError(t, Configure("loggingtest=debug"))

	var out bytes.Buffer
	root := newLogger("", nil, &output{w: &out}).WithDefaultLevel(Warn)
	log := root.WithTag("loggingtest")
	assert.Equal(t, Debug, log.Level())
	assert.Equal(t, Warn, root.WithTag("othertag").Level())

	log.Debug("visible")
	assert.Contains(t, out.String(), "visible")
}

func TestConfigureUpdatesExistingLoggers(t *testing.T) {
	var out bytes.Buffer
	log := newLogger("", nil, &output{w: &out}).WithDefaultLevel(Info).WithTag("latetag")
	assert.False(t, log.Enabled(Debug))

	require.NoError(t, Configure("latetag=debug"))
	assert.True(t, log.Enabled(Debug))

	require.NoError(t, Configure("latetag=error"))
	log.Warn("dropped")
	assert.Zero(t, out.Len())
}
