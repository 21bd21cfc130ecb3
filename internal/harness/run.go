package harness

import (
	"fmt"
	"strings"

	"github.com/voidstarhq/voidstar-go/assert"
	"github.com/voidstarhq/voidstar-go/internal/emitter"
	"github.com/voidstarhq/voidstar-go/internal/wire"
	"github.com/voidstarhq/voidstar-go/lifecycle"
	"github.com/voidstarhq/voidstar-go/random"
)

// defaultSeed feeds the recorder's PRNG when the scenario does not set one.
const defaultSeed = 1

// versionPrefix identifies the one-time SDK version record in a capture.
const versionPrefix = `{"voidstar_sdk":`

// Runner executes scenarios with injected determinism knobs.
type Runner struct {
	// Tokens supplies run tokens. Nil defaults to UUIDv7Generator.
	Tokens TokenGenerator
}

// Result is the outcome of one scenario run.
type Result struct {
	Scenario string
	RunToken string

	// Steps mirror the scenario's steps, in order.
	Steps []StepResult

	// Emissions holds every record the SDK produced, in order, excluding
	// the one-time version announcement.
	Emissions []string

	// VersionEmitted reports whether the version announcement was seen.
	VersionEmitted bool

	// Sites is the final tracker state, keyed by site id.
	Sites map[string]assert.SiteCounts

	Passes int
	Fails  int
}

// Passed reports whether no step recorded a failing evaluation.
func (r *Result) Passed() bool {
	return r.Fails == 0
}

// StepResult summarizes one step's evaluations.
type StepResult struct {
	Directive string
	Message   string
	Passes    int
	Fails     int

	// Values holds the draws made by a random step.
	Values []uint64
}

// Run validates and executes the scenario. A fresh tracker and a recording
// transport are installed for the duration of the run and restored after,
// so runs never disturb the process-wide SDK state.
func (r *Runner) Run(s *Scenario) (*Result, error) {
	if errs := s.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid scenario: %s", strings.Join(msgs, "; "))
	}

	seed := s.Seed
	if seed == 0 {
		seed = defaultSeed
	}
	recorder := emitter.NewRecorder(seed)
	restoreHandler := emitter.Set(recorder)
	defer restoreHandler()

	tracker := assert.NewTracker()
	restoreTracker := assert.SetTracker(tracker)
	defer restoreTracker()

	token := s.RunToken
	if token == "" {
		gen := r.Tokens
		if gen == nil {
			gen = UUIDv7Generator{}
		}
		token = gen.Generate()
	}

	result := &Result{
		Scenario: s.Name,
		RunToken: token,
	}

	for i, step := range s.Steps {
		result.Steps = append(result.Steps, runStep(s, i, step, token))
	}

	for _, sr := range result.Steps {
		result.Passes += sr.Passes
		result.Fails += sr.Fails
	}
	result.Sites = tracker.Snapshot()

	for _, line := range recorder.Lines() {
		if strings.HasPrefix(line, versionPrefix) {
			result.VersionEmitted = true
			continue
		}
		result.Emissions = append(result.Emissions, line)
	}
	return result, nil
}

// runStep drives one step through the SDK surface.
//
// Assertion steps go through assert.Raw with a synthetic, scenario-derived
// location: the step index stands in for a source line, which keeps the
// emission stream stable no matter where the harness itself lives on disk.
func runStep(s *Scenario, index int, step Step, token string) StepResult {
	sr := StepResult{Directive: step.Directive, Message: step.Message}
	loc := stepLocation(s, index, step)

	switch step.Directive {
	case DirectiveAlways:
		evalConditions(&sr, step, loc, true, assert.DisplayAlways)
	case DirectiveAlwaysOrUnreachable:
		evalConditions(&sr, step, loc, false, assert.DisplayAlwaysOrUnreachable)
	case DirectiveSometimes:
		evalConditions(&sr, step, loc, true, assert.DisplaySometimes)
	case DirectiveReachable:
		callRaw(true, step, loc, true, assert.DisplayReachable)
		sr.Passes++
	case DirectiveUnreachable:
		callRaw(false, step, loc, false, assert.DisplayUnreachable)
		sr.Fails++
	case DirectiveEvent:
		lifecycle.SendEvent(step.Name, withRunToken(step.Details, token))
	case DirectiveSetupComplete:
		lifecycle.SetupComplete(withRunToken(step.Details, token))
	case DirectiveRandom:
		count := step.Count
		if count == 0 {
			count = 1
		}
		for range count {
			sr.Values = append(sr.Values, random.GetRandom())
		}
	}
	return sr
}

func evalConditions(sr *StepResult, step Step, loc assert.LocationInfo,
	mustHit bool, display assert.AssertionDisplay) {
	for _, cond := range step.Conditions {
		callRaw(cond, step, loc, mustHit, display)
		if cond {
			sr.Passes++
		} else {
			sr.Fails++
		}
	}
}

func callRaw(cond bool, step Step, loc assert.LocationInfo,
	mustHit bool, display assert.AssertionDisplay) {
	assert.Raw(cond, step.Message, step.Details,
		loc.Filename, loc.Function, loc.Class, loc.BeginLine, loc.BeginColumn,
		true, mustHit, display.Type(), display, wire.NormalizeNFC(step.Message))
}

// stepLocation builds the synthetic location for a step. Lines are 1-based
// step indexes.
func stepLocation(s *Scenario, index int, step Step) assert.LocationInfo {
	return assert.LocationInfo{
		Filename:  fmt.Sprintf("scenario/%s.yaml", s.Name),
		Function:  step.Directive,
		BeginLine: index + 1,
	}
}

// withRunToken returns a copy of details carrying the run token. The input
// map is never mutated.
func withRunToken(details map[string]any, token string) map[string]any {
	out := make(map[string]any, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out["run_token"] = token
	return out
}
