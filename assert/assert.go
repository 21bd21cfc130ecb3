// Package assert provides the basic assertion directives: Always,
// AlwaysOrUnreachable, Sometimes, Reachable, and Unreachable.
//
// Directives define test properties about the host program inline with its
// logic. Outside the fuzzing environment they are no-ops with minimal
// overhead, unless VOIDSTAR_SDK_LOCAL_OUTPUT points at a file, in which case
// records are captured there as JSON lines for local inspection or triage.
//
// Every directive takes a message: the human-readable identity of the
// property. The engine generates one test property per unique message, and
// the property's verdict aggregates every evaluation sharing that message.
// Different assertions should use different messages; the same assertion
// keeps its message even if the code moves to another file.
//
// Every directive also takes details: an optional map of context recorded
// with each evaluation and surfaced alongside failures. Directives never
// return errors and never panic: instrumentation must not alter the
// correctness of the program it observes.
package assert

// Frame skip depth from a public directive to the host caller:
// host -> directive -> callerLocation.
const directiveSkip = 2

// Always asserts that condition is true on every evaluation. The property
// fails if the site is never reached.
func Always(condition bool, message string, details map[string]any) {
	loc := callerLocation(directiveSkip)
	assertImpl(condition, message, details, loc, true, true, DisplayAlways)
}

// AlwaysOrUnreachable asserts that condition is true on every evaluation,
// but the property passes if the site is never reached.
func AlwaysOrUnreachable(condition bool, message string, details map[string]any) {
	loc := callerLocation(directiveSkip)
	assertImpl(condition, message, details, loc, true, false, DisplayAlwaysOrUnreachable)
}

// Sometimes asserts that condition is true on at least one evaluation. The
// property fails if the site is never reached or never passes.
func Sometimes(condition bool, message string, details map[string]any) {
	loc := callerLocation(directiveSkip)
	assertImpl(condition, message, details, loc, true, true, DisplaySometimes)
}

// Reachable asserts that this line runs at least once. Reaching it is itself
// the passing outcome.
func Reachable(message string, details map[string]any) {
	loc := callerLocation(directiveSkip)
	assertImpl(true, message, details, loc, true, true, DisplayReachable)
}

// Unreachable asserts that this line never runs. Reaching it is itself the
// failing outcome.
func Unreachable(message string, details map[string]any) {
	loc := callerLocation(directiveSkip)
	assertImpl(false, message, details, loc, true, false, DisplayUnreachable)
}

// makeKey derives the site identity. The message alone identifies a logical
// property: two textually identical messages at different locations are one
// site. NFC normalization keeps visually identical messages on one site
// regardless of Unicode composition. Location still rides along on every
// record for triage. See DESIGN.md for the rationale.
func makeKey(message string, _ LocationInfo) string {
	return normalizeMessage(message)
}

// assertImpl composes, tracks, and emits one directive evaluation.
//
// The first evaluation of a site (across all goroutines) additionally emits
// the site's definition record, exactly once. Every evaluation emits one
// outcome record and bumps the site's tallies.
func assertImpl(cond bool, message string, details map[string]any, loc LocationInfo,
	hit, mustHit bool, display AssertionDisplay) {

	id := makeKey(message, loc)
	rawImpl(cond, message, details, loc, hit, mustHit, display.Type(), display, id)
}

func rawImpl(cond bool, message string, details map[string]any, loc LocationInfo,
	hit, mustHit bool, assertType AssertType, display AssertionDisplay, id string) {

	tracker := DefaultTracker()
	entry := tracker.entry(id, loc.Filename, loc.Class)

	// Report the filename and class captured when the site registered, so
	// catalog-time and runtime records stay consistent for the same site.
	if loc.Filename != entry.filename {
		loc.Filename = entry.filename
	}
	if loc.Class != entry.classname {
		loc.Class = entry.classname
	}

	info := &AssertInfo{
		Hit:         hit,
		MustHit:     mustHit,
		AssertType:  assertType,
		DisplayType: display,
		Message:     message,
		Condition:   cond,
		ID:          id,
		Location:    loc,
		Details:     details,
	}

	if !hit {
		// Catalog path: a definition record with no evaluation attached.
		if entry.markDefined() {
			emitAssert(info)
		}
		return
	}

	if entry.markDefined() {
		def := *info
		def.Hit = false
		def.Condition = false
		def.Details = nil
		emitAssert(&def)
	}

	if cond {
		entry.passes.Add(1)
	} else {
		entry.fails.Add(1)
	}
	emitAssert(info)
}

// Raw is the adapter entry point: callers supply explicit location and type
// fields instead of having them derived. Instrumentation tooling and the
// catalog loader use it; application code should prefer the directives.
func Raw(condition bool, message string, details map[string]any,
	locFilename, locFunction, locClass string, locBeginLine, locBeginColumn int,
	hit, mustHit bool, assertType AssertType, display AssertionDisplay, id string) {

	loc := LocationInfo{
		Filename:    locFilename,
		Function:    locFunction,
		Class:       locClass,
		BeginLine:   locBeginLine,
		BeginColumn: locBeginColumn,
	}
	rawImpl(condition, message, details, loc, hit, mustHit, assertType, display, id)
}
