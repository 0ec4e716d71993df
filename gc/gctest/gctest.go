// Package gctest provides helpers for tests that exercise the collector's
// diagnostic surface.
package gctest

import (
	"sync"
	"testing"

	"tracegc/gc"
)

// Recorder captures diagnostic callback invocations for assertions.
type Recorder struct {
	mu        sync.Mutex
	warnings  []string
	criticals []string
}

// Install registers recording callbacks with the collector and restores the
// defaults when the test finishes.
func Install(t *testing.T) *Recorder {
	t.Helper()
	r := &Recorder{}
	gc.SetDiagnosticCallbacks(r.recordWarning, r.recordCritical)
	t.Cleanup(func() {
		gc.SetDiagnosticCallbacks(nil, nil)
	})
	return r
}

func (r *Recorder) recordWarning(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, message)
}

func (r *Recorder) recordCritical(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.criticals = append(r.criticals, message)
}

// Warnings returns a copy of the recorded warning messages.
func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

// Criticals returns a copy of the recorded critical-error messages.
func (r *Recorder) Criticals() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.criticals...)
}

// ExpectCritical runs fn, which must hit a critical error, and returns the
// recovered panic value. The test fails if fn returns normally.
func ExpectCritical(t *testing.T, fn func()) any {
	t.Helper()
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		fn()
	}()
	if recovered == nil {
		t.Fatalf("expected a critical error, but the call returned normally")
	}
	return recovered
}
