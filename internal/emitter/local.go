package emitter

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
)

// LocalHandler appends records as JSON lines to a file named by
// VOIDSTAR_SDK_LOCAL_OUTPUT. This makes the assertion packages usable in
// ordinary test or production runs outside the fuzzing harness; the capture
// can be inspected directly or summarized with the triage command.
type LocalHandler struct {
	mu   sync.Mutex
	file *os.File
}

// probeLocal returns a LocalHandler when the env var names a writable file,
// nil otherwise.
func probeLocal() Handler {
	path := os.Getenv(LocalOutputEnvVar)
	if path == "" {
		return nil
	}
	// Typed-nil check matters here: returning a nil *LocalHandler inside a
	// non-nil Handler interface would defeat the probe chain.
	if h := NewLocalHandler(path); h != nil {
		return h
	}
	return nil
}

// NewLocalHandler opens (or creates) path in append mode. A nil return means
// the file could not be opened; callers fall through to the no-op handler.
func NewLocalHandler(path string) *LocalHandler {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voidstar-sdk: cannot open local output %q: %v\n", path, err)
		return nil
	}
	if abs, err := filepath.Abs(path); err == nil {
		fmt.Fprintf(os.Stderr, "voidstar-sdk: assertion output will be sent to %q\n", abs)
	}
	return &LocalHandler{file: file}
}

// Output appends one record plus a newline. Write errors are dropped:
// telemetry is best-effort and must never disturb the host program.
func (h *LocalHandler) Output(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.file.Write(payload); err != nil {
		return
	}
	_, _ = h.file.Write([]byte{'\n'})
}

// Random falls back to the process-local PRNG; there is no engine to ask.
func (h *LocalHandler) Random() uint64 {
	return rand.Uint64()
}

// HandlesOutput reports true: records are worth constructing.
func (h *LocalHandler) HandlesOutput() bool {
	return h != nil
}
