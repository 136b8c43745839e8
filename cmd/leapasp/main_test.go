// Package main provides tests for the leapasp CLI.
package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapasp/internal/cli"
	"github.com/leapstack-labs/leapasp/internal/cli/commands"
	"github.com/leapstack-labs/leapasp/internal/cli/output"
	"github.com/leapstack-labs/leapasp/internal/cli/testutil"
)

// run executes the root command with args inside a fresh test project.
// Output buffers are not terminals, so auto mode prints facts.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	return dir
}

func TestVersionCommand(t *testing.T) {
	setup(t)
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapasp v")
}

func TestHelpCommand(t *testing.T) {
	out, _, err := run(t, "", "--help")
	require.NoError(t, err)
	for _, expected := range []string{"parse", "check", "solve", "herbrand", "deps", "repl", "lsp", "completion"} {
		assert.Contains(t, out, expected)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapasp")

	_, _, err = run(t, "", "completion", "tcsh")
	require.Error(t, err)
}

func TestSolveCommand_Facts(t *testing.T) {
	setup(t)
	out, _, err := run(t, "", "solve", "unique.lp")
	require.NoError(t, err)
	assert.Equal(t, "% Answer: 1\na.\nb.\nc.\n% SATISFIABLE\n", out)
	testutil.AssertNoANSI(t, out)
}

func TestSolveCommand_Stdin(t *testing.T) {
	setup(t)
	out, _, err := run(t, "p(1). q(X) :- p(X).", "solve", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "p(1).\nq(1).")
}

func TestSolveCommand_JSON(t *testing.T) {
	setup(t)
	out, _, err := run(t, "", "solve", "-o", "json", "coloring.lp")
	require.NoError(t, err)

	var got output.SolveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Models, 6)
	assert.Equal(t, 6, got.Summary.Models)
	assert.True(t, got.Summary.Exhausted)
	assert.Equal(t, output.ResultSatisfiable, got.Summary.Result)
	assert.NotEmpty(t, got.Summary.RunID)
	for _, m := range got.Models {
		require.Len(t, m.Elements, 2)
		assert.True(t, strings.HasPrefix(m.Elements[0], "assign(1,"), m.Elements[0])
		assert.True(t, strings.HasPrefix(m.Elements[1], "assign(2,"), m.Elements[1])
	}
}

func TestSolveCommand_ModelLimit(t *testing.T) {
	setup(t)
	out, _, err := run(t, "", "solve", "-n", "2", "coloring.lp")
	require.NoError(t, err)
	assert.Contains(t, out, "% Answer: 2")
	assert.NotContains(t, out, "% Answer: 3")
}

func TestSolveCommand_Optimization(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "auto", args: nil},
		{name: "optN", args: []string{"--opt-mode", "optN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			args := append([]string{"solve", "-o", "json", "optimize.lp"}, tt.args...)
			out, _, err := run(t, "", args...)
			require.NoError(t, err)

			var got output.SolveOutput
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			require.NotEmpty(t, got.Models)
			last := got.Models[len(got.Models)-1]
			assert.Equal(t, []string{"b"}, last.Elements)
			assert.Equal(t, []int{1}, last.Cost)
			assert.True(t, last.Optimal)
			assert.Equal(t, output.ResultOptimum, got.Summary.Result)
			assert.True(t, got.Summary.Optimum)
		})
	}
}

func TestSolveCommand_ExactlyOne(t *testing.T) {
	dir := setup(t)
	testutil.WriteFile(t, filepath.Join(dir, "unsat.lp"), "a. :- a.\n")

	out, _, err := run(t, "", "solve", "--exactly-one", "unique.lp")
	require.NoError(t, err)
	assert.Contains(t, out, "a.\nb.\nc.")

	_, _, err = run(t, "", "solve", "--exactly-one", "coloring.lp")
	assert.ErrorIs(t, err, commands.ErrAmbiguousAnswer)

	_, _, err = run(t, "", "solve", "--exactly-one", "unsat.lp")
	assert.ErrorIs(t, err, commands.ErrNoAnswer)
}

func TestSolveCommand_Unsatisfiable(t *testing.T) {
	dir := setup(t)
	testutil.WriteFile(t, filepath.Join(dir, "unsat.lp"), "a. :- a.\n")

	out, _, err := run(t, "", "solve", "unsat.lp")
	require.NoError(t, err)
	assert.Equal(t, "% UNSATISFIABLE\n", out)
}

func TestSolveCommand_Const(t *testing.T) {
	dir := setup(t)
	testutil.WriteFile(t, filepath.Join(dir, "const.lp"), "#const n=1.\np(n).\n")

	out, _, err := run(t, "", "solve", "const.lp")
	require.NoError(t, err)
	assert.Contains(t, out, "p(1).")

	out, _, err = run(t, "", "solve", "-c", "n=3", "const.lp")
	require.NoError(t, err)
	assert.Contains(t, out, "p(3).")

	_, _, err = run(t, "", "solve", "-c", "3", "const.lp")
	require.Error(t, err)
}

func TestSolveCommand_Filter(t *testing.T) {
	dir := setup(t)
	testutil.WriteFile(t, filepath.Join(dir, "filter.star"), `
def accept(model):
    return "assign(1,red)" in [e.text for e in model.elements]

def keep(e):
    return e.args[0] == 2
`)

	out, _, err := run(t, "", "solve", "-o", "json", "--filter", "filter.star", "coloring.lp")
	require.NoError(t, err)

	var got output.SolveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Models, 2)
	assert.Equal(t, 2, got.Summary.Models)
	for _, m := range got.Models {
		require.Len(t, m.Elements, 1)
		assert.NotEqual(t, "assign(2,red)", m.Elements[0])
	}

	_, _, err = run(t, "", "solve", "--filter", "missing.star", "coloring.lp")
	require.Error(t, err)
}

func TestSolveCommand_ParseError(t *testing.T) {
	setup(t)
	out, errOut, err := run(t, "", "solve", "unique.lp", "broken.lp")
	require.ErrorIs(t, err, commands.ErrDiagnostics)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "broken.lp:2:")
	assert.Contains(t, errOut, "error:")
	assert.Contains(t, errOut, "b :- ).")
}

func TestSolveCommand_MissingArgs(t *testing.T) {
	setup(t)
	_, _, err := run(t, "", "solve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one file")
}

func TestParseCommand(t *testing.T) {
	setup(t)
	out, _, err := run(t, "", "parse", "unique.lp")
	require.NoError(t, err)
	assert.Equal(t, "a.\nb :- a.\nc :- not d.\n", out)
}

func TestParseCommand_JSON(t *testing.T) {
	setup(t)
	out, _, err := run(t, "", "parse", "-o", "json", "unique.lp", "optimize.lp")
	require.NoError(t, err)

	var files []output.FileView
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 2)
	assert.Equal(t, "unique.lp", files[0].File)
	kinds := make([]string, len(files[0].Statements))
	for i, s := range files[0].Statements {
		kinds[i] = s.Kind
	}
	assert.Equal(t, []string{output.KindFact, output.KindRule, output.KindRule}, kinds)
	assert.Equal(t, output.KindWeak, files[1].Statements[1].Kind)
	assert.Equal(t, 2, files[1].Statements[1].Line)
}

func TestCheckCommand(t *testing.T) {
	setup(t)
	_, errOut, err := run(t, "", "check", "unique.lp", "coloring.lp", "optimize.lp")
	require.NoError(t, err)
	assert.Contains(t, errOut, "3 files OK")

	_, errOut, err = run(t, "", "check", "broken.lp", "unique.lp")
	require.ErrorIs(t, err, commands.ErrDiagnostics)
	assert.Contains(t, errOut, "broken.lp:2:")
	assert.NotContains(t, errOut, "unique.lp")
}

func TestCheckCommand_Ground(t *testing.T) {
	dir := setup(t)
	testutil.WriteFile(t, filepath.Join(dir, "unsafe.lp"), "p(X) :- not q(X).\n")

	_, _, err := run(t, "", "check", "unsafe.lp")
	require.NoError(t, err)

	_, errOut, err := run(t, "", "check", "--ground", "unsafe.lp")
	require.ErrorIs(t, err, commands.ErrDiagnostics)
	assert.Contains(t, errOut, "unsafe.lp")
	assert.Contains(t, errOut, "unsafe")
}

func TestCheckCommand_YAML(t *testing.T) {
	setup(t)
	out, _, err := run(t, "", "check", "-o", "yaml", "broken.lp", "unique.lp")
	require.ErrorIs(t, err, commands.ErrDiagnostics)

	var got struct {
		Diagnostics []output.DiagnosticView `yaml:"diagnostics"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, "broken.lp", got.Diagnostics[0].File)
	assert.Equal(t, 2, got.Diagnostics[0].Line)
}

func TestCheckCommand_HeadCycle(t *testing.T) {
	dir := setup(t)
	testutil.WriteFile(t, filepath.Join(dir, "hc.lp"), "a; b.\na :- b.\nb :- a.\n")

	_, errOut, err := run(t, "", "check", "hc.lp")
	require.NoError(t, err)
	assert.Contains(t, errOut, "warning: hc.lp:1: head cycle through a/0, b/0")
	assert.Contains(t, errOut, "1 files OK")

	_, errOut, err = run(t, "", "solve", "hc.lp")
	require.NoError(t, err)
	assert.Contains(t, errOut, "models may not be minimal")
}

func TestDepsCommand(t *testing.T) {
	setup(t)
	out, _, err := run(t, "", "deps", "unique.lp")
	require.NoError(t, err)
	assert.Equal(t, "level 0: a/0, d/0\nlevel 1: b/0, c/0\nstratified: yes\n", out)

	out, _, err = run(t, "", "deps", "-p", "b/0", "unique.lp")
	require.NoError(t, err)
	assert.Equal(t, "level 0: a/0\nlevel 1: b/0\nstratified: yes\n", out)

	_, _, err = run(t, "", "deps", "-p", "zz/3", "unique.lp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown predicate")
}

func TestDepsCommand_Unstratified(t *testing.T) {
	setup(t)
	out, _, err := run(t, "p :- not q. q :- not p.", "deps", "-o", "json", "-")
	require.NoError(t, err)

	var got output.DepsView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Stratified)
	require.NotNil(t, got.Violation)
	assert.Equal(t, output.EdgeView{From: "p/0", To: "q/0", Negative: true}, *got.Violation)
	require.Len(t, got.Components, 1)
	assert.True(t, got.Components[0].Recursive)
}

func TestDepsCommand_DOT(t *testing.T) {
	setup(t)
	out, _, err := run(t, "", "deps", "--dot", "unique.lp")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph dependencies {\n"))
	assert.Contains(t, out, "\"a/0\" -> \"b/0\";")
	assert.Contains(t, out, "\"d/0\" -> \"c/0\" [style=dashed];")

	_, errOut, err := run(t, "", "deps", "broken.lp")
	require.ErrorIs(t, err, commands.ErrDiagnostics)
	assert.Contains(t, errOut, "broken.lp:2:")
}

func lspFrame(body string) string {
	return "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
}

func TestLSPCommand(t *testing.T) {
	setup(t)
	stdin := lspFrame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"processId":1,"rootUri":"file:///work","capabilities":{}}}`) +
		lspFrame(`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///work/p.lp","languageId":"asp","version":1,"text":"p(X) :- not q(X).\nq(1).\n"}}}`) +
		lspFrame(`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`) +
		lspFrame(`{"jsonrpc":"2.0","method":"exit"}`)

	out, _, err := run(t, stdin, "lsp")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Content-Length: "))
	assert.Contains(t, out, `"hoverProvider":true`)
	assert.Contains(t, out, `"textDocument/publishDiagnostics"`)
	assert.Contains(t, out, `"code":"unsafe"`)
	assert.Contains(t, out, `"id":2,"result":null`)

	_, _, err = run(t, lspFrame(`{"jsonrpc":"2.0","method":"exit"}`), "lsp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit before shutdown")
}

func TestHerbrandCommand(t *testing.T) {
	dir := setup(t)
	testutil.WriteFile(t, filepath.Join(dir, "base.lp"), "p(1..2). q(X) :- p(X). s.\n")

	out, _, err := run(t, "", "herbrand", "base.lp")
	require.NoError(t, err)
	assert.Equal(t, "p(1).\np(2).\nq(1).\nq(2).\ns.\n", out)

	out, _, err = run(t, "", "herbrand", "-p", "q/1", "base.lp")
	require.NoError(t, err)
	assert.Equal(t, "q(1).\nq(2).\n", out)

	// Directives are rejected.
	_, _, err = run(t, "", "herbrand", "coloring.lp")
	require.ErrorIs(t, err, commands.ErrDiagnostics)
}

func TestConfigFile(t *testing.T) {
	dir := setup(t)
	testutil.WriteFile(t, filepath.Join(dir, "leapasp.yaml"), "output: json\nmodels: 1\n")

	out, _, err := run(t, "", "solve", "coloring.lp")
	require.NoError(t, err)
	var got output.SolveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Models, 1)
	assert.False(t, got.Summary.Exhausted)

	// Flags override the file.
	out, _, err = run(t, "", "solve", "-o", "facts", "-n", "0", "coloring.lp")
	require.NoError(t, err)
	assert.Contains(t, out, "% Answer: 6")
}

func TestEnvironmentOverride(t *testing.T) {
	setup(t)
	t.Setenv("LEAPASP_OUTPUT", "yaml")

	out, _, err := run(t, "", "solve", "unique.lp")
	require.NoError(t, err)
	assert.Contains(t, out, "elements: [a, b, c]")
	assert.Contains(t, out, "result: SATISFIABLE")
}

func TestInvalidConfig(t *testing.T) {
	setup(t)
	_, _, err := run(t, "", "solve", "--opt-mode", "fastest", "unique.lp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fastest")
}
