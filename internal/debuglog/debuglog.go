// Package debuglog is the subsystem's only diagnostic channel: an append-only
// text log consulted out-of-band. Failures never surface to the host, so this
// is where they land instead.
package debuglog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	logFileMode = 0o600
	logDirMode  = 0o700
)

// Open returns a logger appending to path, tagged with the hook name and an
// invocation id so interleaved hook runs can be told apart. When the file
// cannot be opened the logger discards; diagnostics are best-effort.
func Open(path, hook, sessionID string) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(writerFor(path), nil))

	return logger.With(
		slog.String("hook", hook),
		slog.String("session_id", sessionID),
		slog.String("invocation", uuid.NewString()),
	)
}

func writerFor(path string) io.Writer {
	if path == "" {
		return io.Discard
	}
	if err := os.MkdirAll(filepath.Dir(path), logDirMode); err != nil {
		return io.Discard
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return io.Discard
	}

	return file
}
