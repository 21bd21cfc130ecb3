// Package lifecycle informs the voidstar engine that particular test phases
// or milestones have been reached, letting it correlate internal exploration
// state with the host program's progress.
//
// Both functions take details: optional context recorded with the marker.
// Like all SDK surfaces, they degrade to no-ops when no transport is
// attached and never raise into the host program.
package lifecycle

import (
	"github.com/voidstarhq/voidstar-go/internal/emitter"
	"github.com/voidstarhq/voidstar-go/internal/wire"
)

// SetupComplete indicates that the system and workload under test are fully
// initialized. After this marker the engine snapshots the system and begins
// injecting faults. Calling it more than once is harmless; the engine acts
// on the first marker only.
func SetupComplete(details map[string]any) {
	var wrapped any
	if details != nil {
		wrapped = details
	}
	emit(map[string]any{
		"voidstar_setup": map[string]any{
			"status":  "complete",
			"details": wrapped,
		},
	})
}

// SendEvent emits a named marker with optional context, fire-and-forget.
// Event ordering gives the engine more signal about test-run structure.
// An empty name is coerced rather than rejected.
func SendEvent(eventName string, details map[string]any) {
	if eventName == "" {
		eventName = "anonymous"
	}
	var wrapped any
	if details != nil {
		wrapped = details
	}
	emit(map[string]any{eventName: wrapped})
}

func emit(record map[string]any) {
	if !emitter.Get().HandlesOutput() {
		return
	}
	payload, err := wire.Marshal(record)
	if err != nil {
		return
	}
	emitter.DispatchOutput(payload)
}
