// Package log writes leveled, categorized debug lines for langue.
// Nothing is written until Init or InitWriter installs a destination, which
// the CLI does when --debug or LANGUE_DEBUG is set.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level is a message severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Category tags a line with the subsystem that wrote it.
type Category string

const (
	CatSyntax   Category = "syntax"
	CatLanguage Category = "language" // definition loading and compiling
	CatCache    Category = "cache"
	CatConfig   Category = "config"
	CatWatcher  Category = "watcher"
	CatCLI      Category = "cli"
)

type sink struct {
	mu  sync.Mutex
	w   io.Writer
	min Level
}

var current atomic.Pointer[sink]

// Init appends log lines at every level to the file at path. The returned
// func detaches the file and closes it.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: user-chosen log path
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	detach := install(f, LevelDebug)
	return func() {
		detach()
		_ = f.Close()
	}, nil
}

// InitWriter sends lines at minLevel or above to w until the returned func is
// called.
func InitWriter(w io.Writer, minLevel Level) func() {
	return install(w, minLevel)
}

func install(w io.Writer, minLevel Level) func() {
	s := &sink{w: w, min: minLevel}
	current.Store(s)
	return func() { current.CompareAndSwap(s, nil) }
}

func Debug(cat Category, msg string, kv ...any) { write(LevelDebug, cat, msg, kv) }
func Info(cat Category, msg string, kv ...any)  { write(LevelInfo, cat, msg, kv) }
func Warn(cat Category, msg string, kv ...any)  { write(LevelWarn, cat, msg, kv) }
func Error(cat Category, msg string, kv ...any) { write(LevelError, cat, msg, kv) }

// ErrorErr logs at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	text := "<nil>"
	if err != nil {
		text = err.Error()
	}
	write(LevelError, cat, msg, append(kv, "error", text))
}

// write formats one line:
//
//	2025-12-06T10:45:00 [ERROR] [syntax] message key=value key2=value2
func write(level Level, cat Category, msg string, kv []any) {
	s := current.Load()
	if s == nil || level < s.min {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			fmt.Fprintf(&b, " %v=<missing>", kv[i])
			break
		}
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	b.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, b.String())
}
