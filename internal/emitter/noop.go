package emitter

import "math/rand/v2"

// NoopHandler is the terminal fallback: output vanishes and randomness comes
// from the process-local PRNG. Host code keeps working with zero telemetry.
type NoopHandler struct{}

// Output discards the record.
func (NoopHandler) Output(payload []byte) {}

// Random returns a locally generated 64-bit value.
func (NoopHandler) Random() uint64 {
	return rand.Uint64()
}

// HandlesOutput reports false so callers skip building records entirely.
func (NoopHandler) HandlesOutput() bool {
	return false
}
