package assert

import (
	"fmt"

	"github.com/voidstarhq/voidstar-go/internal/emitter"
	"github.com/voidstarhq/voidstar-go/internal/wire"
)

// AssertType is the logical handling type the engine applies to a site.
type AssertType string

const (
	// TypeAlways sites must hold on every evaluation.
	TypeAlways AssertType = "always"

	// TypeSometimes sites must hold on at least one evaluation.
	TypeSometimes AssertType = "sometimes"

	// TypeReachability sites assert whether a line of code runs at all.
	TypeReachability AssertType = "reachability"
)

// AssertionDisplay is the human-readable name for a directive, used to group
// properties in the triage report.
type AssertionDisplay string

const (
	DisplayAlways              AssertionDisplay = "Always"
	DisplayAlwaysOrUnreachable AssertionDisplay = "AlwaysOrUnreachable"
	DisplaySometimes           AssertionDisplay = "Sometimes"
	DisplayReachable           AssertionDisplay = "Reachable"
	DisplayUnreachable         AssertionDisplay = "Unreachable"
)

// Type maps a display name to its handling type.
func (d AssertionDisplay) Type() AssertType {
	switch d {
	case DisplayAlways, DisplayAlwaysOrUnreachable:
		return TypeAlways
	case DisplaySometimes:
		return TypeSometimes
	default:
		return TypeReachability
	}
}

// AssertInfo is the internal representation of one record bound for the
// engine: either a site definition (Hit=false) or one evaluation outcome
// (Hit=true).
type AssertInfo struct {
	Hit         bool
	MustHit     bool
	AssertType  AssertType
	DisplayType AssertionDisplay
	Message     string
	Condition   bool
	ID          string
	Location    LocationInfo
	Details     map[string]any
}

// String is the informal representation used by the diagnostic harness.
func (ai *AssertInfo) String() string {
	return fmt.Sprintf("%s '%s' => %v", ai.DisplayType, ai.Message, ai.Condition)
}

func (ai *AssertInfo) toMap() map[string]any {
	var details any
	if ai.Details != nil {
		details = ai.Details
	}
	return map[string]any{
		"hit":          ai.Hit,
		"must_hit":     ai.MustHit,
		"assert_type":  string(ai.AssertType),
		"display_type": string(ai.DisplayType),
		"message":      ai.Message,
		"condition":    ai.Condition,
		"id":           ai.ID,
		"location":     ai.Location.toMap(),
		"details":      details,
	}
}

// normalizeMessage puts a message in NFC form for identity derivation.
func normalizeMessage(s string) string {
	return wire.NormalizeNFC(s)
}

// emitAssert encodes and forwards one record. Failures degrade to no-ops;
// assertion instrumentation never raises into the host program.
func emitAssert(ai *AssertInfo) {
	if !emitter.Get().HandlesOutput() {
		return
	}
	payload, err := wire.Marshal(map[string]any{"voidstar_assert": ai.toMap()})
	if err != nil {
		return
	}
	emitter.DispatchOutput(payload)
}
