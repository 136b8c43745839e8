package core

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// MaxArity is the largest arity a Predicate may carry.
const MaxArity = 999

// noArity marks a predicate that matches any arity.
const noArity = -1

// Predicate identifies atoms by name and, optionally, arity. A predicate
// without arity matches atoms of every arity.
type Predicate struct {
	name  string
	arity int
}

// ParsePredicate builds a predicate from "name" or "name/arity", or from
// a name and an explicit arity. Giving the arity twice is an error.
func ParsePredicate(name string, arity ...int) (Predicate, error) {
	if len(arity) > 1 {
		return Predicate{}, validationf("predicate %s: more than one arity given", name)
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(name[i+1:])); err == nil {
			if len(arity) > 0 {
				return Predicate{}, validationf("predicate %s: arity given twice", name)
			}
			name, arity = strings.TrimSpace(name[:i]), []int{n}
		}
	}

	p := Predicate{name: name, arity: noArity}
	if len(arity) == 1 {
		if arity[0] < 0 || arity[0] > MaxArity {
			return Predicate{}, validationf("predicate %s: arity %d out of range [0, %d]", name, arity[0], MaxArity)
		}
		p.arity = arity[0]
	}

	sym, err := ParseGroundTerm(name)
	if err != nil {
		return Predicate{}, err
	}
	if sym.Type() != symbol.Function || sym.Name() == "" || sym.Arity() != 0 || sym.IsNegative() {
		return Predicate{}, validationf("invalid predicate name %q", name)
	}
	p.name = sym.Name()
	return p, nil
}

// MustParsePredicate is like ParsePredicate but panics on error.
func MustParsePredicate(name string, arity ...int) Predicate {
	p, err := ParsePredicate(name, arity...)
	if err != nil {
		panic(err)
	}
	return p
}

// PredicateOf returns the predicate of a function symbol.
func PredicateOf(sym symbol.Symbol) Predicate {
	return Predicate{name: sym.Name(), arity: sym.Arity()}
}

// Name returns the predicate name.
func (p Predicate) Name() string { return p.name }

// Arity returns the arity and whether it is set.
func (p Predicate) Arity() (int, bool) {
	if p.arity == noArity {
		return 0, false
	}
	return p.arity, true
}

// Match reports whether the names are equal and the arities are equal or
// unset on either side.
func (p Predicate) Match(o Predicate) bool {
	return p.name == o.name && (p.arity == noArity || o.arity == noArity || p.arity == o.arity)
}

// Compare orders by name, then by arity. A predicate without arity sorts
// after every predicate of the same name with arity.
func (p Predicate) Compare(o Predicate) int {
	if c := strings.Compare(p.name, o.name); c != 0 {
		return c
	}
	switch {
	case p.arity == o.arity:
		return 0
	case p.arity == noArity:
		return 1
	case o.arity == noArity:
		return -1
	}
	return cmp.Compare(p.arity, o.arity)
}

// Less reports whether p sorts before o.
func (p Predicate) Less(o Predicate) bool { return p.Compare(o) < 0 }

func (p Predicate) String() string {
	if p.arity == noArity {
		return p.name
	}
	return p.name + "/" + strconv.Itoa(p.arity)
}
