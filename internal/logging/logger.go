package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger struct {
	// Tag used to filter and classify log messages.
	Tag string

	// Level used when no directive names the tag. Nil follows the process default.
	fallback *Level

	// Resolved level, cached until the next call to Configure.
	level atomic.Int32
	gen   atomic.Uint64

	out *output
}

// Destination shared by a logger and every logger derived from it. The mutex keeps
// messages from different goroutines from interleaving.
type output struct {
	w  io.Writer
	mu sync.Mutex
}

// Write to stderr by default.
var DefaultLogger = newLogger("", nil, &output{w: os.Stderr})

func newLogger(tag string, fallback *Level, out *output) *Logger {
	return &Logger{Tag: tag, fallback: fallback, out: out}
}

// SetDestination overrides the destination for this logger and all loggers sharing it.
func (log *Logger) SetDestination(w io.Writer) {
	log.out.mu.Lock()
	log.out.w = w
	log.out.mu.Unlock()
}

// WithTag derives a new logger with the given tag. The level is looked up based on
// the tag, falling back to this logger's default level.
func (log *Logger) WithTag(tag string) *Logger {
	return newLogger(tag, log.fallback, log.out)
}

// WithDefaultLevel derives a new logger with the given default level. This can still
// be overridden at runtime.
func (log *Logger) WithDefaultLevel(level Level) *Logger {
	return newLogger(log.Tag, &level, log.out)
}

// Level returns the level at which this logger logs. Any log messages intended for a
// higher (more verbose) level are ignored. Directives applied by Configure take effect
// on existing loggers too.
func (log *Logger) Level() Level {
	// gen holds the configuration generation plus one, so zero means unresolved.
	current := generation.Load() + 1
	if log.gen.Load() == current {
		return Level(log.level.Load())
	}
	level := determineLevel(log.Tag, log.fallback)
	log.level.Store(int32(level))
	log.gen.Store(current)
	return level
}

// Enabled reports whether messages at the given level would be written.
func (log *Logger) Enabled(level Level) bool {
	return level <= log.Level()
}

// Wrapper for []byte that implements io.Writer. Simpler and cheaper than
// bytes.Buffer.
type buffer []byte

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

// A global buffer pool, shared across all loggers.
var bufPool = sync.Pool{
	New: func() interface{} {
		b := make(buffer, 0, 256)
		return &b
	},
}

// Log a message at the given level. Include the file and line number from
// 'calldepth' steps up the call stack.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if !log.Enabled(level) {
		return
	}

	bp := bufPool.Get().(*buffer)
	buf := (*bp)[:0]
	defer func() {
		*bp = buf[:0]
		bufPool.Put(bp)
	}()

	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}

	header := fmt.Sprintf("%s %c/%s[%s:%d]",
		time.Now().Format(timestampFormat), level.letter(), log.Tag, filepath.Base(file), line)
	buf = append(buf, level.color().Sprint(header)...)
	buf = append(buf, ' ')
	buf = append(buf, fmt.Sprintf(format, a...)...)

	if n := len(buf); n == 0 || buf[n-1] != '\n' {
		buf = append(buf, '\n')
	}

	log.out.mu.Lock()
	defer log.out.mu.Unlock()
	if _, err := log.out.w.Write(buf); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed to log to %v: %v\n", dimColor.Sprint("logging:"), log.out.w, err)
	}
}

func (log *Logger) Error(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
}

func (log *Logger) Warn(format string, a ...interface{}) {
	log.Log(Warn, 1, format, a...)
}

func (log *Logger) Info(format string, a ...interface{}) {
	log.Log(Info, 1, format, a...)
}

func (log *Logger) Debug(format string, a ...interface{}) {
	log.Log(Debug, 1, format, a...)
}

func (log *Logger) Trace(n int, format string, a ...interface{}) {
	log.Log(Level(n), 1, format, a...)
}

// Fatalf logs at Error level and exits the process.
func (log *Logger) Fatalf(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
	os.Exit(1)
}
