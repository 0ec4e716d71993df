package gc

import (
	"fmt"
	"sync"
)

// WarningCallback receives messages about recoverable collector
// inconsistencies.
type WarningCallback func(message string)

// CriticalErrorCallback receives messages about unrecoverable misuse. After
// the callback returns the offending call panics; it never returns normally.
type CriticalErrorCallback func(message string)

var diagnostics = struct {
	mu       sync.RWMutex
	warn     WarningCallback
	critical CriticalErrorCallback
}{}

// SetDiagnosticCallbacks installs the process-wide warning and critical-error
// callbacks. Either may be nil to restore the default (warnings are dropped,
// critical errors go straight to the panic).
func SetDiagnosticCallbacks(warn WarningCallback, critical CriticalErrorCallback) {
	diagnostics.mu.Lock()
	defer diagnostics.mu.Unlock()
	diagnostics.warn = warn
	diagnostics.critical = critical
}

func warn(message string) {
	diagnostics.mu.RLock()
	cb := diagnostics.warn
	diagnostics.mu.RUnlock()
	if cb != nil {
		cb(message)
	}
}

// critical invokes the critical-error callback and then panics with err
// wrapped around the message. Callers must hold no assumption of returning.
func critical(err error, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	diagnostics.mu.RLock()
	cb := diagnostics.critical
	diagnostics.mu.RUnlock()
	if cb != nil {
		cb(message)
	}
	panic(fmt.Errorf("%w: %s", err, message))
}
