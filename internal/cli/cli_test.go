package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	stdassert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidstarhq/voidstar-go/assert"
)

// execute runs the CLI with args against a fresh command tree and a fresh
// assertion tracker, returning stdout, stderr, and the execution error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	restore := assert.SetTracker(assert.NewTracker())
	t.Cleanup(restore)

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestAlwaysCommand_AllPass(t *testing.T) {
	out, _, err := execute(t, "always", "this always works", "t", "true", "T")
	require.NoError(t, err)
	stdassert.Contains(t, out, "PASS: AlwaysOrUnreachable 'this always works' => true")
	stdassert.Contains(t, out, "3 passed, 0 failed")
}

func TestAlwaysCommand_AnyFalseFails(t *testing.T) {
	out, _, err := execute(t, "always", "this always works", "t", "f", "t", "t", "f", "f", "t", "f")
	require.Error(t, err)
	stdassert.Equal(t, ExitFailure, GetExitCode(err))
	stdassert.Contains(t, out, "4 passed, 4 failed")
	stdassert.Contains(t, out, "FAIL: AlwaysOrUnreachable 'this always works' => false")
}

func TestAlwaysCommand_BadToken(t *testing.T) {
	_, _, err := execute(t, "always", "msg", "t", "maybe")
	require.Error(t, err)
	stdassert.Equal(t, ExitCommandError, GetExitCode(err))
	stdassert.Contains(t, err.Error(), `invalid boolean token "maybe"`)
}

func TestAlwaysCommand_EmptyMessage(t *testing.T) {
	_, _, err := execute(t, "always", "  ", "t")
	require.Error(t, err)
	stdassert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSometimesCommand_AnyTruePasses(t *testing.T) {
	out, _, err := execute(t, "sometimes", "works at least once", "f", "f", "t")
	require.NoError(t, err)
	stdassert.Contains(t, out, "1 passed, 2 failed")
}

func TestSometimesCommand_AllFalseFails(t *testing.T) {
	_, _, err := execute(t, "sometimes", "works at least once", "f", "false")
	require.Error(t, err)
	stdassert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestDirectiveCommand_JSONOutput(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "sometimes", "works", "t", "f")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	stdassert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	stdassert.Equal(t, "Sometimes", data["directive"])
	stdassert.Equal(t, float64(1), data["passes"])
	stdassert.Equal(t, float64(1), data["fails"])
}

func TestInvalidFormatRejected(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "addx", "1", "2")
	require.Error(t, err)
	stdassert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAddxCommand(t *testing.T) {
	out, _, err := execute(t, "addx", "55", "11")
	require.NoError(t, err)
	stdassert.Equal(t, "Adding: 55 + 11 => 66\n", out)
}

func TestAddxCommand_CoercesBadInput(t *testing.T) {
	out, _, err := execute(t, "addx", "seven")
	require.NoError(t, err)
	stdassert.Equal(t, "Adding: 0 + 0 => 0\n", out)
}

func TestRandomxCommand(t *testing.T) {
	out, _, err := execute(t, "randomx", "--count", "5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	stdassert.Len(t, lines, 5)
}

func TestEventxCommand_Defaults(t *testing.T) {
	out, _, err := execute(t, "eventx")
	require.NoError(t, err)
	stdassert.Equal(t, "sent event \"tree\" (leaf_color=green)\n", out)
}

func TestSetupxCommand(t *testing.T) {
	out, _, err := execute(t, "setupx")
	require.NoError(t, err)
	stdassert.Equal(t, "setup complete\n", out)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const passingScenario = `name: checkout
seed: 3
run_token: cli-test-token
steps:
  - directive: always
    message: cart ok
    conditions: [true, true]
  - directive: event
    name: checkout
  - directive: setup_complete
`

const failingScenario = `name: checkout
run_token: cli-test-token
steps:
  - directive: always
    message: cart ok
    conditions: [true, false]
`

func TestRunCommand_Passes(t *testing.T) {
	path := writeFile(t, "ok.yaml", passingScenario)

	out, _, err := execute(t, "run", path)
	require.NoError(t, err)
	stdassert.Contains(t, out, "scenario: checkout (run token cli-test-token)")
	stdassert.Contains(t, out, "[1] always 'cart ok': 2 passed, 0 failed")
	stdassert.Contains(t, out, "2 passed, 0 failed, 5 records emitted")
}

func TestRunCommand_FailingStep(t *testing.T) {
	path := writeFile(t, "fail.yaml", failingScenario)

	out, _, err := execute(t, "run", path)
	require.Error(t, err)
	stdassert.Equal(t, ExitFailure, GetExitCode(err))
	stdassert.Contains(t, out, "1 passed, 1 failed")
}

func TestRunCommand_InvalidScenario(t *testing.T) {
	path := writeFile(t, "bad.yaml", "name: x\nsteps:\n  - directive: frobnicate\n")

	_, errOut, err := execute(t, "run", path)
	require.Error(t, err)
	stdassert.Equal(t, ExitCommandError, GetExitCode(err))
	stdassert.Contains(t, errOut, "E210")
}

func TestRunCommand_MissingFile(t *testing.T) {
	_, _, err := execute(t, "run", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	stdassert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand_Valid(t *testing.T) {
	path := writeFile(t, "ok.yaml", passingScenario)

	out, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	stdassert.Equal(t, "scenario is valid\n", out)
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", "name: x\nsteps:\n  - directive: always\n")

	_, errOut, err := execute(t, "validate", path)
	require.Error(t, err)
	stdassert.Equal(t, ExitFailure, GetExitCode(err))
	stdassert.Contains(t, errOut, "E204")
	stdassert.Contains(t, errOut, "E205")
}

func TestValidateCommand_InvalidJSON(t *testing.T) {
	path := writeFile(t, "bad.yaml", "name: x\nsteps:\n  - directive: always\n")

	out, _, err := execute(t, "--format", "json", "validate", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	stdassert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	stdassert.Equal(t, "validation", resp.Error.Code)
}

const sampleCapture = `{"voidstar_assert":{"assert_type":"always","condition":false,"details":null,"display_type":"Always","hit":false,"id":"cart ok","location":{"begin_column":0,"begin_line":1,"class":"","filename":"a.go","function":"f"},"message":"cart ok","must_hit":true}}
{"voidstar_assert":{"assert_type":"always","condition":true,"details":null,"display_type":"Always","hit":true,"id":"cart ok","location":{"begin_column":0,"begin_line":1,"class":"","filename":"a.go","function":"f"},"message":"cart ok","must_hit":true}}
{"checkout":{"phase":"begin"}}
`

func TestTriageCommand(t *testing.T) {
	path := writeFile(t, "capture.jsonl", sampleCapture)

	out, _, err := execute(t, "triage", path, "--events")
	require.NoError(t, err)
	stdassert.Contains(t, out, "ingested 3 record(s) from 3 line(s), 0 skipped")
	stdassert.Contains(t, out, "PROPERTY")
	stdassert.Contains(t, out, "cart ok")
	stdassert.Contains(t, out, "checkout")
}

func TestTriageCommand_JSON(t *testing.T) {
	path := writeFile(t, "capture.jsonl", sampleCapture)

	out, _, err := execute(t, "--format", "json", "triage", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	stdassert.Equal(t, "ok", resp.Status)
}

func TestTriageCommand_MissingCapture(t *testing.T) {
	_, _, err := execute(t, "triage", filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
	stdassert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseBoolToken(t *testing.T) {
	cases := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"t", true, false},
		{"TRUE", true, false},
		{" f ", false, false},
		{"False", false, false},
		{"1", false, true},
		{"yes", false, true},
		{"", false, true},
	}
	for _, tc := range cases {
		got, err := parseBoolToken(tc.in)
		if tc.wantErr {
			stdassert.Error(t, err, "token %q", tc.in)
			continue
		}
		require.NoError(t, err, "token %q", tc.in)
		stdassert.Equal(t, tc.want, got, "token %q", tc.in)
	}
}
