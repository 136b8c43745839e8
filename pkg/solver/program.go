package solver

import (
	"strings"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
)

// literal is a ground literal over an atom of the atom table.
type literal struct {
	atom int
	sign ast.Sign
}

// guard is a ground aggregate or choice bound.
type guard struct {
	op    ast.ComparisonOperator
	value symbol.Symbol
}

// aggElement is one ground "tuple : condition" element.
type aggElement struct {
	tuple []symbol.Symbol
	cond  []literal
}

// aggregate is a ground body aggregate.
type aggregate struct {
	fn    ast.AggregateFunction
	sign  ast.Sign
	elems []aggElement
	left  *guard // value op aggregate
	right *guard // aggregate op value
}

// condInstance is one ground instance "lit : cond" of a body conditional
// literal.
type condInstance struct {
	lit  literal
	cond []literal
}

// condLiteral holds all instances of a body conditional literal; it is
// true when every instance whose condition holds has a true literal.
type condLiteral struct {
	instances []condInstance
}

// body is a ground rule body.
type body struct {
	lits  []literal
	aggs  []*aggregate
	conds []*condLiteral
}

type headKind int

const (
	headNone headKind = iota // integrity constraint
	headAtom
	headDisjunction
	headChoice
)

// headElement is an atom of a disjunctive or choice head together with
// its condition.
type headElement struct {
	atom int
	cond []literal
}

// rule is a ground rule.
type rule struct {
	kind  headKind
	elems []headElement // exactly one for headAtom
	lower *guard        // choice bounds: lower op count, count op upper
	upper *guard
	body  body
}

// weak is a ground weak constraint.
type weak struct {
	weight   int
	priority int
	terms    []symbol.Symbol
	body     body
}

func (w *weak) key() string {
	var b strings.Builder
	b.WriteString(symbol.NewNumber(w.weight).String())
	b.WriteByte('@')
	b.WriteString(symbol.NewNumber(w.priority).String())
	for _, t := range w.terms {
		b.WriteByte(',')
		b.WriteString(t.String())
	}
	return b.String()
}

// showTerm is a ground "#show t : body." instance.
type showTerm struct {
	term symbol.Symbol
	body body
}

// program is the result of grounding.
type program struct {
	atoms      []symbol.Symbol
	index      map[string]int
	rules      []*rule
	weaks      []*weak
	shows      []showTerm
	signatures []*ast.ShowSignature
	hideAtoms  bool
	priorities []int // descending
}

// interpretation assigns truth values to atoms.
type interpretation interface {
	holds(atom int) bool
}

type boolSlice []bool

func (s boolSlice) holds(atom int) bool { return atom >= 0 && s[atom] }

func (l literal) holds(in interpretation) bool {
	v := in.holds(l.atom)
	if l.sign == ast.Negation {
		return !v
	}
	return v
}

func allHold(lits []literal, in interpretation) bool {
	for _, l := range lits {
		if !l.holds(in) {
			return false
		}
	}
	return true
}

// value computes the aggregate value over the elements whose condition
// holds. Equal tuples count once.
func (a *aggregate) value(in interpretation) symbol.Symbol {
	seen := make(map[string]struct{})
	var tuples [][]symbol.Symbol
	for _, e := range a.elems {
		if !allHold(e.cond, in) {
			continue
		}
		k := tupleKey(e.tuple)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		tuples = append(tuples, e.tuple)
	}
	return aggregateValue(a.fn, tuples)
}

func aggregateValue(fn ast.AggregateFunction, tuples [][]symbol.Symbol) symbol.Symbol {
	switch fn {
	case ast.AggregateCount:
		return symbol.NewNumber(len(tuples))
	case ast.AggregateSum, ast.AggregateSumPlus:
		sum := 0
		for _, t := range tuples {
			if len(t) == 0 || t[0].Type() != symbol.Number {
				continue
			}
			w := t[0].Number()
			if fn == ast.AggregateSumPlus && w < 0 {
				continue
			}
			sum += w
		}
		return symbol.NewNumber(sum)
	case ast.AggregateMin:
		v := symbol.Sup()
		for _, t := range tuples {
			if len(t) > 0 && t[0].Less(v) {
				v = t[0]
			}
		}
		return v
	case ast.AggregateMax:
		v := symbol.Inf()
		for _, t := range tuples {
			if len(t) > 0 && v.Less(t[0]) {
				v = t[0]
			}
		}
		return v
	}
	return symbol.NewNumber(0)
}

func tupleKey(tuple []symbol.Symbol) string {
	parts := make([]string, len(tuple))
	for i, t := range tuple {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

func checkGuards(v symbol.Symbol, left, right *guard) bool {
	if left != nil && !left.op.Compare(left.value, v) {
		return false
	}
	if right != nil && !right.op.Compare(v, right.value) {
		return false
	}
	return true
}

func (a *aggregate) holds(in interpretation) bool {
	ok := checkGuards(a.value(in), a.left, a.right)
	if a.sign == ast.Negation {
		return !ok
	}
	return ok
}

func (c *condLiteral) holds(in interpretation) bool {
	for _, inst := range c.instances {
		if allHold(inst.cond, in) && !inst.lit.holds(in) {
			return false
		}
	}
	return true
}

// holds evaluates a body. Positive literals are read from pos; all
// other parts from in.
func (b *body) holds(pos, in interpretation) bool {
	for _, l := range b.lits {
		if l.sign == ast.NoSign {
			if !pos.holds(l.atom) {
				return false
			}
		} else if !l.holds(in) {
			return false
		}
	}
	for _, a := range b.aggs {
		if !a.holds(in) {
			return false
		}
	}
	for _, c := range b.conds {
		if !c.holds(in) {
			return false
		}
	}
	return true
}

// isDefinite reports whether the body only has positive literals.
func (b *body) isDefinite() bool {
	if len(b.aggs) > 0 || len(b.conds) > 0 {
		return false
	}
	for _, l := range b.lits {
		if l.sign != ast.NoSign {
			return false
		}
	}
	return true
}

// nonMonotoneAtoms calls fn for every atom whose value the body reads
// outside of its positive literals.
func (b *body) nonMonotoneAtoms(fn func(int)) {
	visit := fn
	fn = func(atom int) {
		if atom >= 0 {
			visit(atom)
		}
	}
	for _, l := range b.lits {
		if l.sign != ast.NoSign {
			fn(l.atom)
		}
	}
	for _, a := range b.aggs {
		for _, e := range a.elems {
			for _, l := range e.cond {
				fn(l.atom)
			}
		}
	}
	for _, c := range b.conds {
		for _, inst := range c.instances {
			fn(inst.lit.atom)
			for _, l := range inst.cond {
				fn(l.atom)
			}
		}
	}
}
