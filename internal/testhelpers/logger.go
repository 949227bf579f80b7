package testhelpers

import (
	"io"
	"log/slog"

	"github.com/realronaldrump/workout-app-sub002/internal/logging"
)

// NewLogger creates a debug level logger with the given log sink such as testhelpers.NewWriter(t).
func NewLogger(logSink io.Writer) *slog.Logger {
	return logging.New(logSink, slog.LevelDebug)
}
