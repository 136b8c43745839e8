package core

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

func TestParseGroundAtom(t *testing.T) {
	a, err := ParseGroundAtom("-edge(1, \"x\", f(a))")
	require.NoError(t, err)
	assert.Equal(t, `-edge(1,"x",f(a))`, a.String())
	assert.True(t, a.StronglyNegated())
	assert.Equal(t, "edge/3", a.Predicate().String())
	var args []string
	for _, arg := range a.Arguments() {
		args = append(args, arg.String())
	}
	assert.Equal(t, []string{"1", `"x"`, "f(a)"}, args)
	assert.Equal(t, symbol.Function, a.Symbol().Type())

	for _, input := range []string{"42", `"s"`, "(1,2)", "#inf"} {
		_, err := ParseGroundAtom(input)
		assert.ErrorIs(t, err, ErrValidation, input)
	}

	_, err = ParseGroundAtom("p(")
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestGroundAtom_Order(t *testing.T) {
	atoms := []GroundAtom{
		MustParseGroundAtom("b(2)"),
		MustParseGroundAtom("a(1)"),
		MustParseGroundAtom("a(2)"),
	}
	slices.SortFunc(atoms, GroundAtom.Compare)
	assert.Equal(t, "a(1) a(2) b(2)", join(atoms))

	tests := []struct {
		less, more string
	}{
		{"p(9)", "p(10)"},       // numbers compare numerically
		{"p(-1)", "p(a)"},       // numbers first
		{"p(a)", "p(b)"},        // others by printed form
		{`p("x")`, "p(a)"},      // '"' sorts before letters
		{"p(1,b)", "p(1,c)"},    // later positions break ties
		{"p", "p(1,2)"},         // arity is part of the predicate
		{"a", "-a"},             // positive before classical negation
		{"p(f(10))", "p(f(9))"}, // nested terms compare as text
	}
	for _, tt := range tests {
		t.Run(tt.less+"<"+tt.more, func(t *testing.T) {
			l, m := MustParseGroundAtom(tt.less), MustParseGroundAtom(tt.more)
			assert.Equal(t, -1, l.Compare(m))
			assert.Equal(t, 1, m.Compare(l))
			assert.Equal(t, 0, l.Compare(l))
		})
	}
}

func join(atoms []GroundAtom) string {
	var s string
	for i, a := range atoms {
		if i > 0 {
			s += " "
		}
		s += a.String()
	}
	return s
}
