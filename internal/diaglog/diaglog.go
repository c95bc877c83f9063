// Package diaglog is the public logging facade over the rolling log store.
// It formats one text line per call (timestamp, category tag, message, and
// a source-provenance suffix) and hands the line off to the store's
// serialized queue. Formatting happens on the caller's goroutine; disk I/O
// never does.
//
// Lines follow a fixed convention consumers parse by position:
//
//	2026-01-02 15:04:05.000 | ERROR: connection refused | client.go:Dial:L87
//
// A package-level default logger is provided for hosts that want the
// classic log-anywhere call shape:
//
//	diaglog.Init(store)
//	diaglog.Message("cache warmed in %s", elapsed)
//
// Using the package-level functions before Init is a programming error and
// panics.
package diaglog

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/triagehq/blackbox/internal/errors"
	"github.com/triagehq/blackbox/internal/logstore"
)

// Category tags recorded after the timestamp. Plain messages carry no tag.
const (
	tagError  = "ERROR:"
	tagEvent  = "EVENT:"
	tagScreen = "SCREEN:"
	tagSystem = "SYSTEM:"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// Logger formats diagnostic lines and forwards them to a Store.
// It is safe for concurrent use.
type Logger struct {
	store *logstore.Store
}

// New creates a Logger bound to an initialized store. Binding a logger to a
// store that is not ready is a usage error.
func New(store *logstore.Store) (*Logger, error) {
	if store == nil || !store.Ready() {
		return nil, errors.NewUsageError("diaglog.New before store initialization").
			WithCause(errors.ErrNotReady)
	}
	return &Logger{store: store}, nil
}

// Message logs a plain informational line.
func (l *Logger) Message(format string, args ...any) {
	l.write("", fmt.Sprintf(format, args...), 2)
}

// Error logs a line tagged ERROR.
func (l *Logger) Error(format string, args ...any) {
	l.write(tagError, fmt.Sprintf(format, args...), 2)
}

// Event logs a line tagged EVENT, used for discrete happenings worth finding
// quickly in a report (startup, shutdown, mode switches).
func (l *Logger) Event(name string) {
	l.write(tagEvent, name, 2)
}

// Screen logs a line tagged SCREEN, recording user navigation.
func (l *Logger) Screen(name string) {
	l.write(tagScreen, name, 2)
}

// System logs a line tagged SYSTEM. The console tap uses this for captured
// process output.
func (l *Logger) System(line string) {
	l.write(tagSystem, line, 2)
}

// write flattens one log line and enqueues it. skip is the runtime.Caller
// distance to the user's call site.
func (l *Logger) write(tag, text string, skip int) {
	var b strings.Builder
	b.WriteString(time.Now().Format(timestampLayout))
	b.WriteString(" | ")
	if tag != "" {
		b.WriteString(tag)
		b.WriteString(" ")
	}
	b.WriteString(text)
	b.WriteString(" | ")
	b.WriteString(callerTag(skip + 1))

	// The store only errors on lifecycle misuse, which New already ruled
	// out; a store closed mid-flight degrades to a dropped line.
	_ = l.store.Append(b.String())
}

// callerTag builds the source-provenance suffix: short file name, function
// name, line number.
func callerTag(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown:unknown:L0"
	}
	fn := "unknown"
	if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
		if idx := strings.LastIndex(fn, "."); idx >= 0 {
			fn = fn[idx+1:]
		}
	}
	return fmt.Sprintf("%s:%s:L%d", filepath.Base(file), fn, line)
}

// defaultLogger backs the package-level functions.
var defaultLogger atomic.Pointer[Logger]

// Init binds the package-level facade to a store. Call it exactly once at
// startup, after the store's Initialize.
func Init(store *logstore.Store) error {
	l, err := New(store)
	if err != nil {
		return err
	}
	defaultLogger.Store(l)
	return nil
}

// Reset unbinds the package-level facade. Intended for tests.
func Reset() {
	defaultLogger.Store(nil)
}

func mustDefault() *Logger {
	l := defaultLogger.Load()
	if l == nil {
		panic(errors.NewUsageError("diaglog used before Init").WithCause(errors.ErrNotReady))
	}
	return l
}

// Message logs a plain line through the package-level logger.
func Message(format string, args ...any) {
	mustDefault().write("", fmt.Sprintf(format, args...), 2)
}

// Error logs an ERROR line through the package-level logger.
func Error(format string, args ...any) {
	mustDefault().write(tagError, fmt.Sprintf(format, args...), 2)
}

// Event logs an EVENT line through the package-level logger.
func Event(name string) {
	mustDefault().write(tagEvent, name, 2)
}

// Screen logs a SCREEN line through the package-level logger.
func Screen(name string) {
	mustDefault().write(tagScreen, name, 2)
}

// System logs a SYSTEM line through the package-level logger.
func System(line string) {
	mustDefault().write(tagSystem, line, 2)
}
