package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Directive names accepted in scenario steps.
const (
	DirectiveAlways              = "always"
	DirectiveAlwaysOrUnreachable = "always_or_unreachable"
	DirectiveSometimes           = "sometimes"
	DirectiveReachable           = "reachable"
	DirectiveUnreachable         = "unreachable"
	DirectiveEvent               = "event"
	DirectiveSetupComplete       = "setup_complete"
	DirectiveRandom              = "random"
)

// Scenario defines one smoke run of the SDK surface.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Seed feeds the recording transport's PRNG. Zero means seed 1.
	Seed uint64 `yaml:"seed,omitempty"`

	// RunToken is an optional fixed run token for deterministic output.
	// If empty, the runner's token generator supplies one.
	RunToken string `yaml:"run_token,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`
}

// Step is one directive invocation.
type Step struct {
	// Directive selects the SDK operation (see Directive constants).
	Directive string `yaml:"directive"`

	// Message is the property identity for assertion directives.
	Message string `yaml:"message,omitempty"`

	// Conditions are evaluated one directive call per entry. Assertion
	// directives that take no condition (reachable, unreachable) ignore it.
	Conditions []bool `yaml:"conditions,omitempty"`

	// Details is the optional context map forwarded with each call.
	Details map[string]any `yaml:"details,omitempty"`

	// Name is the event name for the event directive.
	Name string `yaml:"name,omitempty"`

	// Count is the number of draws for the random directive. Zero means 1.
	Count int `yaml:"count,omitempty"`
}

// LoadScenario reads and decodes a scenario file. Unknown YAML fields are
// rejected. Semantic checks (directive names, required fields) run
// separately via Validate so callers can report all problems at once.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var scenario Scenario
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	return &scenario, nil
}

// Validate performs semantic checks beyond the CUE schema. Returns all
// problems found rather than failing fast.
func (s *Scenario) Validate() []ValidationError {
	var errs []ValidationError

	if s.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "name is required and must be non-empty",
			Code:    ErrScenarioNameEmpty,
		})
	}
	if len(s.Steps) == 0 {
		errs = append(errs, ValidationError{
			Field:   "steps",
			Message: "at least one step is required",
			Code:    ErrScenarioNoSteps,
		})
	}

	for i, step := range s.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		switch step.Directive {
		case DirectiveAlways, DirectiveAlwaysOrUnreachable, DirectiveSometimes:
			if step.Message == "" {
				errs = append(errs, ValidationError{
					Field:   field + ".message",
					Message: fmt.Sprintf("directive %q requires a message", step.Directive),
					Code:    ErrStepMessageEmpty,
				})
			}
			if len(step.Conditions) == 0 {
				errs = append(errs, ValidationError{
					Field:   field + ".conditions",
					Message: fmt.Sprintf("directive %q requires at least one condition", step.Directive),
					Code:    ErrStepNoConditions,
				})
			}
		case DirectiveReachable, DirectiveUnreachable:
			if step.Message == "" {
				errs = append(errs, ValidationError{
					Field:   field + ".message",
					Message: fmt.Sprintf("directive %q requires a message", step.Directive),
					Code:    ErrStepMessageEmpty,
				})
			}
		case DirectiveEvent:
			if step.Name == "" {
				errs = append(errs, ValidationError{
					Field:   field + ".name",
					Message: "event directive requires a name",
					Code:    ErrStepEventNameEmpty,
				})
			}
		case DirectiveSetupComplete, DirectiveRandom:
			// No required fields.
		default:
			errs = append(errs, ValidationError{
				Field:   field + ".directive",
				Message: fmt.Sprintf("unknown directive %q", step.Directive),
				Code:    ErrStepUnknownDirective,
			})
		}
	}
	return errs
}
