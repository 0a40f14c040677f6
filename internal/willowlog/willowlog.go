// Package willowlog is the one logger the rest of the library ever touches.
// It owns nothing by default: until a host calls Configure, every Debug/Info
// call is a no-op, so embedding willow in a process that has its own
// logging story costs nothing. Configure points the package-level logger at
// an io.Writer (typically a lumberjack.Logger, for hosts that want rotation
// on a file).
package willowlog

import (
	"io"
	"log/slog"
	"sync"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Configure installs w as the destination for all subsequent log calls, at
// the given slog level (slog.LevelDebug or slog.LevelInfo, matching the
// granularity the core packages log at).
func Configure(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Debug logs at debug level with the given key/value pairs, module-scoped
// the way the original Rust source's debug! call sites are.
func Debug(module, msg string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Debug(msg, append([]any{"module", module}, args...)...)
}

// Info logs at info level with the given key/value pairs.
func Info(module, msg string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Info(msg, append([]any{"module", module}, args...)...)
}
