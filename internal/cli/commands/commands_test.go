// Package commands_test provides tests for CLI command creation.
package commands

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapasp/internal/cli/output"
	"github.com/leapstack-labs/leapasp/internal/cli/testutil"
	"github.com/leapstack-labs/leapasp/pkg/solver"
)

func TestNewParseCommand(t *testing.T) {
	cmd := NewParseCommand()

	assert.Equal(t, "parse FILE...", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewCheckCommand(t *testing.T) {
	cmd := NewCheckCommand()

	assert.Equal(t, "check FILE...", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("ground"), "flag ground should exist")
}

func TestNewSolveCommand(t *testing.T) {
	cmd := NewSolveCommand()

	assert.Equal(t, "solve FILE...", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	// Verify flags exist (output is a global flag on root, not local)
	flags := []string{"models", "opt-mode", "timeout", "filter", "watch", "exactly-one", "const"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "n", cmd.Flags().Lookup("models").Shorthand)
	assert.Equal(t, "c", cmd.Flags().Lookup("const").Shorthand)
}

func TestNewHerbrandCommand(t *testing.T) {
	cmd := NewHerbrandCommand()

	assert.Equal(t, "herbrand FILE...", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("predicate"))
}

func TestNewDepsCommand(t *testing.T) {
	cmd := NewDepsCommand()

	assert.Equal(t, "deps FILE...", cmd.Use)
	for _, flag := range []string{"predicate", "edges", "dot"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %s should exist", flag)
	}
}

func TestBuildProgram(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeText, false)
	prog, err := buildProgram(tr.Renderer, []source{
		{Name: "guess.lp", Text: "a; b."},
		{Name: "close.lp", Text: "a :- b.\nb :- a."},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/0", "b/0"}, prog.Nodes())

	// The cycle spans both files and is reported for the disjunctive rule.
	cycles := prog.cycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, "guess.lp", cycles[0].File)
	assert.Equal(t, 1, cycles[0].Line)
	assert.Empty(t, tr.ErrorOutput())

	tr.Reset()
	_, err = buildProgram(tr.Renderer, []source{{Name: "bad.lp", Text: "a :- )."}})
	require.ErrorIs(t, err, ErrDiagnostics)
	assert.Contains(t, tr.ErrorOutput(), "bad.lp:1:")
}

func TestNewREPLCommand(t *testing.T) {
	cmd := NewREPLCommand()

	assert.Equal(t, "repl [FILE...]", cmd.Use)
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")
}

func TestNewLSPCommand(t *testing.T) {
	cmd := NewLSPCommand()

	assert.Equal(t, "lsp", cmd.Use)
	flag := cmd.Flags().Lookup("ground-timeout")
	require.NotNil(t, flag)
	assert.Equal(t, "2s", flag.DefValue)
}

func TestFileArgs(t *testing.T) {
	cmd := &cobra.Command{Use: "solve"}
	err := fileArgs(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solve requires at least one file")

	assert.NoError(t, fileArgs(cmd, []string{"a.lp"}))
}

func TestReadSources(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("a."))

	sources, err := readSources(cmd, []string{"-", "-"})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, source{Name: "<stdin>", Text: "a."}, sources[0])
	assert.Equal(t, source{Name: "<stdin>", Text: ""}, sources[1])

	_, err = readSources(cmd, []string{"does-not-exist.lp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read does-not-exist.lp")
}

func TestConstDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    string
		wantErr string
	}{
		{name: "none", want: ""},
		{name: "number", pairs: []string{"n=3"}, want: "#const n=3. [override]\n"},
		{
			name:  "several",
			pairs: []string{"n=3", " m=f(a) "},
			want:  "#const n=3. [override]\n#const m=f(a). [override]\n",
		},
		{name: "missing value", pairs: []string{"n"}, wantErr: "expected name=value"},
		{name: "uppercase name", pairs: []string{"N=3"}, wantErr: "expected name=value"},
		{name: "bad term", pairs: []string{"n=f("}, wantErr: `invalid constant "n=f("`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := constDefinitions(tt.pairs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResultOf(t *testing.T) {
	tests := []struct {
		name        string
		res         solver.Result
		interrupted bool
		want        string
	}{
		{name: "optimum", res: solver.Result{Models: 2, Exhausted: true, OptimalityProven: true}, want: output.ResultOptimum},
		{name: "satisfiable", res: solver.Result{Models: 1}, want: output.ResultSatisfiable},
		{name: "unsatisfiable", res: solver.Result{Exhausted: true}, want: output.ResultUnsatisfiable},
		{name: "interrupted", res: solver.Result{Exhausted: true}, interrupted: true, want: output.ResultUnknown},
		{name: "unknown", res: solver.Result{}, want: output.ResultUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resultOf(tt.res, tt.interrupted))
		})
	}
}
