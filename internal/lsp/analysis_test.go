package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reachProgram = `p(1..3).
q(X) :- p(X), not r(X).
r(X) :- q(X), s.
#const n = 2.
`

func TestAnalyze(t *testing.T) {
	a := Analyze(reachProgram)
	require.Nil(t, a.ParseErr)
	require.NotNil(t, a.Program)

	assert.Equal(t, []string{"p/1", "q/1", "r/1", "s/0"}, a.Predicates())
	assert.Equal(t, []string{"p/1", "q/1", "r/1"}, a.DefinedPredicates())
	assert.False(t, a.Defined("s/0"))
	assert.Equal(t, 1, a.RuleCount("q/1"))
	assert.Equal(t, 0, a.RuleCount("s/0"))

	assert.Len(t, a.Heads("q/1"), 1)
	assert.Len(t, a.References("q/1"), 2)
	assert.Len(t, a.References("r/1"), 2)

	require.Contains(t, a.Constants, "n")
	assert.Equal(t, "2", a.Constants["n"].Value.String())
}

func TestAnalyze_ClassicalNegation(t *testing.T) {
	a := Analyze("-p(1). q :- -p(1).")
	require.Nil(t, a.ParseErr)
	assert.Equal(t, []string{"-p/1", "q/0"}, a.Predicates())
	assert.True(t, a.Defined("-p/1"))
}

func TestAnalyze_ChoiceAndDisjunction(t *testing.T) {
	a := Analyze("{ in(X) : node(X) }. a; b :- c. node(1). c.")
	require.Nil(t, a.ParseErr)

	assert.True(t, a.Defined("in/1"))
	assert.True(t, a.Defined("a/0"))
	assert.True(t, a.Defined("b/0"))
	// The condition of a choice element is not derived by it.
	assert.Len(t, a.Heads("node/1"), 1)
	assert.Len(t, a.References("node/1"), 2)
}

func TestAnalyze_SyntaxError(t *testing.T) {
	a := Analyze("a.\nb :- c(.")
	require.NotNil(t, a.ParseErr)
	assert.Nil(t, a.Statements)
	assert.Nil(t, a.Program)
	assert.Equal(t, 2, a.ParseErr.Span.Start.Line)
	assert.Contains(t, a.ParseErr.Message, "syntax error")
	assert.Empty(t, a.Predicates())
}

func TestAnalysis_OccurrenceAt(t *testing.T) {
	a := Analyze(reachProgram)
	body := len("p(1..3).\nq(X) :- ")

	tests := []struct {
		name   string
		offset int
		pred   string
		head   bool
	}{
		{"fact head", 0, "p/1", true},
		{"rule head", len("p(1..3).\n"), "q/1", true},
		{"body atom", body + 1, "p/1", false},
		{"cursor behind atom", body + len("p(X)"), "p/1", false},
		{"negated atom", body + len("p(X), not r"), "r/1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := a.OccurrenceAt(tt.offset)
			require.NotNil(t, o)
			assert.Equal(t, tt.pred, o.Predicate)
			assert.Equal(t, tt.head, o.Head)
		})
	}

	assert.Nil(t, a.OccurrenceAt(len("p(1..3).\nq(X) :")))
	assert.Nil(t, (*Analysis)(nil).OccurrenceAt(0))
}
