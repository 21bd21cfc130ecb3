//go:build !linux || !cgo

package emitter

// probeVoidstar reports the engine absent on platforms where the shared
// library cannot be loaded. The probe chain falls through to the local file
// or no-op handler.
func probeVoidstar() Handler {
	return nil
}
