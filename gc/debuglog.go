package gc

import (
	"log/slog"
	"sync/atomic"
)

// debugLogger holds the optional lifecycle logger. Nil means disabled, which
// is the default; allocation and collection events then cost one atomic load.
var debugLogger atomic.Pointer[slog.Logger]

// SetDebugLogger installs a logger for allocation lifecycle and collection
// summary events, emitted at Debug level. Pass nil to disable.
func SetDebugLogger(l *slog.Logger) {
	debugLogger.Store(l)
}

func debugLog() *slog.Logger {
	return debugLogger.Load()
}
