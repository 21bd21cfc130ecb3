package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// defaultGoldenToken stands in when a scenario does not pin a run token.
// Golden comparison needs a stable token; production runs use UUIDv7.
const defaultGoldenToken = "smoke-run-default"

// RunWithGolden executes a scenario and compares its emission stream against
// the golden file testdata/{scenario.Name}.golden.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
//
// The snapshot is the raw record stream, one record per line, exactly as the
// transport would have received it (minus the version announcement, which
// embeds the toolchain version and would churn the files). Golden files are
// the source of truth for the binding's wire behavior.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	if scenario.RunToken == "" {
		scenario.RunToken = defaultGoldenToken
	}

	runner := &Runner{Tokens: NewFixedGenerator(defaultGoldenToken)}
	result, err := runner.Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := strings.Join(result.Emissions, "\n") + "\n"
	g := goldie.New(t)
	g.Assert(t, scenario.Name, []byte(snapshot))
	return result, nil
}
