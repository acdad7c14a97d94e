package ember

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// logger is the package-wide diagnostics logger. Warnings (shader compile
// failures, cache resets) are emitted at default level; per-frame stats
// only when debug logging is enabled via SetLogLevel.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "ember",
})

// SetLogger replaces the package logger. Pass a logger writing to
// io.Discard to silence the engine entirely.
func SetLogger(l *log.Logger) {
	logger = l
}

// SetLogLevel adjusts the package logger's level. log.DebugLevel enables
// per-frame stats.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// frameStats holds timing and size metrics for one rendered frame. Only
// populated when the renderer's debug flag is set.
type frameStats struct {
	frameTime   time.Duration
	vertexCount int
	transition  bool
}

// logFrame emits the frame metrics at debug level.
func (s frameStats) logFrame() {
	logger.Debug("frame",
		"total", s.frameTime,
		"vertices", s.vertexCount,
		"transition", s.transition,
	)
}
