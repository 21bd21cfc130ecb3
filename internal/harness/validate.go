package harness

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

// Validation error codes (E200-E299).
const (
	ErrScenarioNotFound     = "E200" // scenario file missing or unreadable
	ErrScenarioNameEmpty    = "E201" // name is required
	ErrScenarioNoSteps      = "E202" // at least one step required
	ErrStepUnknownDirective = "E203" // directive not recognized
	ErrStepMessageEmpty     = "E204" // assertion directive missing message
	ErrStepNoConditions     = "E205" // assertion directive missing conditions
	ErrStepEventNameEmpty   = "E206" // event directive missing name
	ErrSchemaViolation      = "E210" // CUE schema rejected the document
	ErrYAMLParse            = "E211" // document is not valid YAML
)

// ValidationError describes one problem with a scenario file.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

//go:embed schema.cue
var schemaCUE string

// ValidateFile checks a scenario file against the embedded CUE schema and
// then against the Go-level semantic rules. Returns all errors found.
func ValidateFile(path string) []ValidationError {
	data, err := os.ReadFile(path)
	if err != nil {
		return []ValidationError{{
			Field:   "file",
			Message: fmt.Sprintf("cannot read scenario: %v", err),
			Code:    ErrScenarioNotFound,
		}}
	}

	if errs := validateSchema(path, data); len(errs) > 0 {
		return errs
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		return []ValidationError{{
			Field:   "file",
			Message: err.Error(),
			Code:    ErrYAMLParse,
		}}
	}
	return scenario.Validate()
}

// validateSchema unifies the YAML document with the scenario schema.
func validateSchema(path string, data []byte) []ValidationError {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("scenario_schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; a compile failure is a programming error,
		// surfaced as a validation error rather than a panic.
		return []ValidationError{{
			Field:   "schema",
			Message: fmt.Sprintf("internal schema error: %v", err),
			Code:    ErrSchemaViolation,
		}}
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return []ValidationError{{
			Field:   "file",
			Message: fmt.Sprintf("not valid YAML: %v", err),
			Code:    ErrYAMLParse,
		}}
	}

	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return []ValidationError{{
			Field:   "file",
			Message: fmt.Sprintf("cannot build document: %v", err),
			Code:    ErrYAMLParse,
		}}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var errs []ValidationError
		for _, e := range cueerrors.Errors(err) {
			field := strings.Join(pathStrings(e.Path()), ".")
			ve := ValidationError{
				Field:   field,
				Message: e.Error(),
				Code:    ErrSchemaViolation,
			}
			if pos := e.Position(); pos.IsValid() {
				ve.Line = pos.Line()
			}
			errs = append(errs, ve)
		}
		return errs
	}
	return nil
}

func pathStrings(path []string) []string {
	if len(path) == 0 {
		return []string{"document"}
	}
	return path
}
