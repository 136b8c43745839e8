package core

import (
	"cmp"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// GroundAtom is a variable-free atom.
type GroundAtom struct {
	sym symbol.Symbol
}

// ParseGroundAtom parses text as a ground atom.
func ParseGroundAtom(text string) (GroundAtom, error) {
	sym, err := ParseGroundTerm(text)
	if err != nil {
		return GroundAtom{}, err
	}
	return GroundAtomOf(sym)
}

// MustParseGroundAtom is like ParseGroundAtom but panics on error.
func MustParseGroundAtom(text string) GroundAtom {
	a, err := ParseGroundAtom(text)
	if err != nil {
		panic(err)
	}
	return a
}

// GroundAtomOf wraps a function symbol. Numbers, strings, tuples and
// #inf/#sup are rejected.
func GroundAtomOf(sym symbol.Symbol) (GroundAtom, error) {
	if sym.Type() != symbol.Function || sym.Name() == "" {
		return GroundAtom{}, validationf("not an atom: %s", sym)
	}
	return GroundAtom{sym: sym}, nil
}

// Symbol returns the wrapped symbol.
func (a GroundAtom) Symbol() symbol.Symbol { return a.sym }

// Predicate returns the predicate of the atom.
func (a GroundAtom) Predicate() Predicate { return PredicateOf(a.sym) }

// Arguments returns the arguments of the atom.
func (a GroundAtom) Arguments() []symbol.Symbol { return a.sym.Arguments() }

// StronglyNegated reports whether the atom is classically negated.
func (a GroundAtom) StronglyNegated() bool { return a.sym.IsNegative() }

// Equal reports whether both atoms are the same.
func (a GroundAtom) Equal(o GroundAtom) bool { return a.sym.Equal(o.sym) }

// Compare orders atoms by predicate, then argument by argument. At each
// position numbers sort first and compare numerically; other arguments
// compare by their printed form. An atom sorts before its classical
// negation.
func (a GroundAtom) Compare(o GroundAtom) int {
	if c := a.Predicate().Compare(o.Predicate()); c != 0 {
		return c
	}
	oargs := o.sym.Arguments()
	for i, x := range a.sym.Arguments() {
		if c := compareArgument(x, oargs[i]); c != 0 {
			return c
		}
	}
	switch {
	case a.StronglyNegated() == o.StronglyNegated():
		return 0
	case a.StronglyNegated():
		return 1
	}
	return -1
}

func compareArgument(x, y symbol.Symbol) int {
	xnum, ynum := x.Type() == symbol.Number, y.Type() == symbol.Number
	switch {
	case xnum && ynum:
		return cmp.Compare(x.Number(), y.Number())
	case xnum:
		return -1
	case ynum:
		return 1
	}
	return strings.Compare(x.String(), y.String())
}

func (a GroundAtom) String() string { return a.sym.String() }
