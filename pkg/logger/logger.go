package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level is the verbosity threshold used by the logger.
//
// Lower values are more verbose.
type Level int32

const (
	// LevelTrace enables extremely verbose logs (transport frames, handshake
	// contents, group membership transitions).
	LevelTrace Level = iota
	// LevelDebug enables verbose logs intended for debugging.
	LevelDebug
	// LevelInfo enables informational logs (default).
	LevelInfo
	// LevelWarn enables only warnings and errors.
	LevelWarn
	// LevelError enables only error logs.
	LevelError
)

var (
	current  atomic.Int32
	std      = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
	levelTag = map[Level]string{
		LevelTrace: "TRACE",
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
	}
)

func init() {
	current.Store(int32(LevelInfo))
}

// ParseLevel parses a log level string into a Level.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", raw)
}

// SetLevel sets the global log level threshold.
func SetLevel(level Level) {
	current.Store(int32(level))
}

// SetOutput replaces the writer used by the global logger.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetFlags sets the underlying log flags used for all output.
func SetFlags(flags int) {
	std.SetFlags(flags)
}

// Enabled reports whether a level would be emitted by the current
// configuration.
func Enabled(level Level) bool {
	return level >= Level(current.Load())
}

func emit(level Level, format string, args ...any) {
	if !Enabled(level) {
		return
	}
	std.Printf("[%s] %s", levelTag[level], fmt.Sprintf(format, args...))
}

// Tracef logs at TRACE level.
func Tracef(format string, args ...any) { emit(LevelTrace, format, args...) }

// Debugf logs at DEBUG level.
func Debugf(format string, args ...any) { emit(LevelDebug, format, args...) }

// Infof logs at INFO level.
func Infof(format string, args ...any) { emit(LevelInfo, format, args...) }

// Warnf logs at WARN level.
func Warnf(format string, args ...any) { emit(LevelWarn, format, args...) }

// Errorf logs at ERROR level.
func Errorf(format string, args ...any) { emit(LevelError, format, args...) }
