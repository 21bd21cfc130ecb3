// Package emitter owns the boundary to the native voidstar engine.
//
// Exactly one handler is active per process. At first use the package probes,
// in order: the native shared library, a local output file named by
// VOIDSTAR_SDK_LOCAL_OUTPUT, and finally a no-op sink. All SDK packages write
// through DispatchOutput/DispatchRandom and never observe an error; a
// missing or failing transport degrades to doing nothing. Instrumentation
// must never alter the correctness of the host program.
package emitter

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/voidstarhq/voidstar-go/internal/wire"
)

// LocalOutputEnvVar names the file that captures telemetry as JSON lines
// when the native engine is not attached.
const LocalOutputEnvVar = "VOIDSTAR_SDK_LOCAL_OUTPUT"

// SDK and protocol identifiers, reported once per process in the version
// record that precedes all other output.
const (
	SDKVersion      = "0.2.0"
	ProtocolVersion = "1.0.0"
)

// Handler is the transport capability. Implementations must be safe for
// concurrent use and must never block on a remote peer.
type Handler interface {
	// Output forwards one encoded record. Best-effort: errors are swallowed.
	Output(payload []byte)

	// Random returns one 64-bit value from the handler's randomness source.
	Random() uint64

	// HandlesOutput reports whether Output does anything at all. Callers use
	// it to skip record construction entirely when nothing is listening.
	HandlesOutput() bool
}

// holder pairs a handler with its once-per-handler version announcement.
type holder struct {
	h           Handler
	versionOnce sync.Once
}

var active atomic.Pointer[holder]

// Get returns the active handler, probing and installing one on first use.
// The handler is never torn down mid-process.
func Get() Handler {
	return getHolder().h
}

func getHolder() *holder {
	if hld := active.Load(); hld != nil {
		return hld
	}
	// Two goroutines may race the first probe; CompareAndSwap keeps exactly
	// one result and the loser's probe is discarded harmlessly.
	hld := &holder{h: setup()}
	if active.CompareAndSwap(nil, hld) {
		return hld
	}
	return active.Load()
}

// Set installs h as the active handler and returns a func restoring the
// previous one. Tests and the smoke harness inject recorders this way
// instead of resetting hidden globals.
func Set(h Handler) (restore func()) {
	prev := active.Swap(&holder{h: h})
	return func() { active.Store(prev) }
}

// setup probes transports in preference order: native engine, local file,
// no-op.
func setup() Handler {
	if h := probeVoidstar(); h != nil {
		return h
	}
	if h := probeLocal(); h != nil {
		return h
	}
	return NoopHandler{}
}

// DispatchOutput forwards one record to the active handler. The very first
// record on any handler is preceded by the SDK version announcement.
func DispatchOutput(payload []byte) {
	hld := getHolder()
	if !hld.h.HandlesOutput() {
		return
	}
	hld.versionOnce.Do(func() {
		if msg := versionMessage(); msg != nil {
			hld.h.Output(msg)
		}
	})
	hld.h.Output(payload)
}

// DispatchRandom requests one 64-bit value from the active handler.
func DispatchRandom() uint64 {
	return Get().Random()
}

func versionMessage() []byte {
	payload, err := wire.Marshal(map[string]any{
		"voidstar_sdk": map[string]any{
			"language": map[string]any{
				"name":    "Go",
				"version": runtime.Version(),
			},
			"sdk_version":      SDKVersion,
			"protocol_version": ProtocolVersion,
		},
	})
	if err != nil {
		return nil
	}
	return payload
}
