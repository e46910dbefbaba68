// Package zlog provides the package-level logger used across zt-dnsd.
//
// It follows the teacher binary's own style: plain text to stderr, no
// structured fields, gated by an atomic level so callers never need to
// thread a logger through constructors.
package zlog

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// Level controls verbosity.
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var current atomic.Int32

func init() {
	current.Store(int32(LevelInfo))
}

// SetLevel changes the active log level.
func SetLevel(l Level) {
	current.Store(int32(l))
}

func enabled(l Level) bool {
	return Level(current.Load()) >= l
}

func write(l Level, prefix, format string, args ...interface{}) {
	if !enabled(l) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s %s\n", time.Now().UTC().Format(time.RFC3339), prefix, msg)
}

// Errorf logs at error level. Always shown unless level is below Error (never).
func Errorf(format string, args ...interface{}) { write(LevelError, "ERROR", format, args...) }

// Warnf logs at warn level.
func Warnf(format string, args ...interface{}) { write(LevelWarn, "WARN ", format, args...) }

// Infof logs at info level.
func Infof(format string, args ...interface{}) { write(LevelInfo, "INFO ", format, args...) }

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) { write(LevelDebug, "DEBUG", format, args...) }
