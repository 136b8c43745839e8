package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapasp/internal/testutil"
)

func newTestSession(t *testing.T) (*replSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return newREPLSession(out, errOut, testutil.NewTestLogger(t), 0), out, errOut
}

func TestREPL_Inspection(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantOut []string
		wantErr string
	}{
		{
			name:    "ground term",
			line:    ":term f(1+2, a)",
			wantOut: []string{"term      : f((1+2),a)", "variables : (none)", "value     : f(3,a)"},
		},
		{
			name:    "term with variables",
			line:    ":term g(Y, X)",
			wantOut: []string{"variables : X Y"},
		},
		{
			name:    "ground atom",
			line:    ":atom -p(1,b)",
			wantOut: []string{"predicate : p/2", "negated   : true"},
		},
		{
			name:    "non-ground atom",
			line:    ":atom p(X)",
			wantOut: []string{"ground    : no"},
		},
		{
			name:    "rule",
			line:    ":rule p(X) :- q(X,Y), not r(Z).",
			wantOut: []string{"kind      : rule", "head      : X", "body      : X Y Z", "safe      : X Y"},
		},
		{
			name:    "constraint",
			line:    ":rule :- a.",
			wantOut: []string{"kind      : constraint"},
		},
		{
			name:    "predicate with arity",
			line:    ":predicate edge/2",
			wantOut: []string{"name      : edge", "arity     : 2"},
		},
		{
			name:    "predicate without arity",
			line:    ":pred edge",
			wantOut: []string{"arity     : any"},
		},
		{name: "missing argument", line: ":term", wantErr: "usage: :term TERM"},
		{name: "parse error", line: ":rule a :- b(.", wantErr: "Error:"},
		{name: "unknown command", line: ":frobnicate", wantErr: "Unknown command: :frobnicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out, errOut := newTestSession(t)
			assert.False(t, s.handle(context.Background(), tt.line))
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			if tt.wantErr != "" {
				assert.Contains(t, errOut.String(), tt.wantErr)
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestREPL_SessionProgram(t *testing.T) {
	s, out, errOut := newTestSession(t)
	ctx := context.Background()

	// A statement spanning two lines is added once complete.
	s.handle(ctx, "{ a; b }")
	assert.Positive(t, s.pending.Len())
	s.handle(ctx, ":- a, b.")
	assert.Zero(t, s.pending.Len())

	s.handle(ctx, "c :- a.")
	s.handle(ctx, "broken :- c(.")
	assert.Contains(t, errOut.String(), "Error:")
	require.Len(t, s.program, 2)

	s.handle(ctx, ":program")
	assert.Contains(t, out.String(), "c :- a.")

	out.Reset()
	s.handle(ctx, ":solve")
	got := out.String()
	assert.Contains(t, got, "Answer: 3")
	assert.NotContains(t, got, "Answer: 4")
	assert.Contains(t, got, "a c")
	assert.Contains(t, got, "SATISFIABLE")

	s.handle(ctx, ":reset")
	assert.Empty(t, s.program)
	assert.True(t, s.handle(ctx, ":quit"))
}

func TestREPL_SolveUnsatisfiable(t *testing.T) {
	s, out, _ := newTestSession(t)
	ctx := context.Background()

	s.handle(ctx, "a. :- a.")
	s.handle(ctx, ":solve")
	assert.Contains(t, out.String(), "UNSATISFIABLE")
}
