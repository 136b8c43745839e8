// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/leapstack-labs/leapasp/internal/cli/output"
)

// Programs written by SetupTestProject.
const (
	// ColoringProgram has six models, three for each colouring of an edge.
	ColoringProgram = `node(1..2).
edge(1,2).
color(red). color(green). color(blue).
1 { assign(N,C) : color(C) } 1 :- node(N).
:- edge(X,Y), assign(X,C), assign(Y,C).
#show assign/2.
`
	// UniqueProgram has exactly one model.
	UniqueProgram = "a. b :- a. c :- not d.\n"
	// OptimizeProgram has the unique optimum b.
	OptimizeProgram = "1 { a; b; c } 1.\n:~ a. [3]\n:~ b. [1]\n:~ c. [2]\n"
	// BrokenProgram fails to parse on line 2.
	BrokenProgram = "a.\nb :- ).\n"
)

// SetupTestProject creates a temporary directory holding the test
// programs as coloring.lp, unique.lp, optimize.lp and broken.lp.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	files := map[string]string{
		"coloring.lp": ColoringProgram,
		"unique.lp":   UniqueProgram,
		"optimize.lp": OptimizeProgram,
		"broken.lp":   BrokenProgram,
	}
	for name, content := range files {
		WriteFile(t, filepath.Join(tmpDir, name), content)
	}
	return tmpDir
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection and never styled.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode, output.ColorNever),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
