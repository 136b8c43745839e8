package solver

import (
	"github.com/leapstack-labs/leapasp/pkg/ast"
)

// varSet is a set of variable names.
type varSet map[string]bool

func (s varSet) clone() varSet {
	out := make(varSet, len(s)+4)
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s varSet) addAll(names []string) {
	for _, n := range names {
		s[n] = true
	}
}

// missing returns the names not contained in s.
func (s varSet) missing(names []string) []string {
	var out []string
	for _, n := range names {
		if !s[n] {
			out = append(out, n)
		}
	}
	return out
}

func (s varSet) containsAll(names []string) bool {
	return len(s.missing(names)) == 0
}

func boundSet(b ast.Bindings) varSet {
	s := make(varSet, len(b))
	for k := range b {
		s[k] = true
	}
	return s
}

// ruleGlobals returns the variables that occur in a statement outside of
// aggregate elements, conditional literals and head elements.
func ruleGlobals(head ast.Head, terms []ast.Term, body []ast.BodyElement) varSet {
	g := make(varSet)
	switch h := head.(type) {
	case *ast.Literal:
		g.addAll(ast.Variables(h))
	case *ast.Aggregate:
		g.addAll(guardVariables(h.LeftGuard, h.RightGuard))
	}
	for _, t := range terms {
		g.addAll(ast.Variables(t))
	}
	for _, e := range body {
		lit, ok := e.(*ast.Literal)
		if !ok {
			continue
		}
		if agg, ok := lit.Atom.(*ast.BodyAggregate); ok {
			g.addAll(guardVariables(agg.LeftGuard, agg.RightGuard))
			continue
		}
		g.addAll(ast.Variables(lit))
	}
	return g
}

func guardVariables(guards ...*ast.Guard) []string {
	var out []string
	for _, gd := range guards {
		if gd != nil {
			out = append(out, ast.Variables(gd.Term)...)
		}
	}
	return out
}

// planner orders body elements so that each element is grounded only
// once the variables it needs are bound.
type planner struct {
	globals varSet // nil means every variable is global
}

func (pl planner) global(names []string) []string {
	if pl.globals == nil {
		return names
	}
	var out []string
	for _, n := range names {
		if pl.globals[n] {
			out = append(out, n)
		}
	}
	return out
}

func nonBindable(t ast.Term) []string {
	bindable := make(varSet)
	bindable.addAll(ast.BindableVariables(t))
	var out []string
	for _, v := range ast.Variables(t) {
		if !bindable[v] {
			out = append(out, v)
		}
	}
	return out
}

// assignmentVariable returns the unbound variable an aggregate assigns,
// if it is an assignment aggregate.
func assignmentVariable(agg *ast.BodyAggregate, bound varSet) (string, *ast.Guard) {
	for _, gd := range []*ast.Guard{agg.LeftGuard, agg.RightGuard} {
		if gd == nil || gd.Op != ast.Equal {
			continue
		}
		if v, ok := gd.Term.(*ast.Variable); ok && v.Name != "_" && !bound[v.Name] {
			return v.Name, gd
		}
	}
	return "", nil
}

// ready reports whether e can be grounded with bound variables, and
// which variables grounding it binds. positive is true for elements
// that match against the atom table.
func (pl planner) ready(e ast.BodyElement, bound varSet) (binds []string, positive, ok bool) {
	lit, isLit := e.(*ast.Literal)
	if !isLit {
		return nil, false, bound.containsAll(pl.global(ast.Variables(e)))
	}
	if lit.Sign != ast.NoSign {
		return nil, false, bound.containsAll(pl.global(ast.Variables(lit)))
	}

	switch a := lit.Atom.(type) {
	case *ast.SymbolicAtom:
		if !bound.containsAll(nonBindable(a.Symbol)) {
			return nil, true, false
		}
		return ast.BindableVariables(a.Symbol), true, true

	case *ast.Comparison:
		if bound.containsAll(ast.Variables(a)) {
			return nil, false, true
		}
		if a.Op != ast.Equal {
			return nil, false, false
		}
		if bound.containsAll(ast.Variables(a.Right)) && bound.containsAll(nonBindable(a.Left)) {
			return ast.BindableVariables(a.Left), false, true
		}
		if bound.containsAll(ast.Variables(a.Left)) && bound.containsAll(nonBindable(a.Right)) {
			return ast.BindableVariables(a.Right), false, true
		}
		return nil, false, false

	case *ast.BodyAggregate:
		needed := pl.global(elementVariables(a))
		name, gd := assignmentVariable(a, bound)
		if name != "" {
			other := a.LeftGuard
			if gd == a.LeftGuard {
				other = a.RightGuard
			}
			needed = append(needed, guardVariables(other)...)
			rest := bound.missing(needed)
			if len(rest) == 0 || (len(rest) == 1 && rest[0] == name) {
				return []string{name}, false, true
			}
			return nil, false, false
		}
		needed = append(needed, guardVariables(a.LeftGuard, a.RightGuard)...)
		return nil, false, bound.containsAll(needed)
	}
	return nil, false, bound.containsAll(ast.Variables(lit))
}

func elementVariables(a *ast.BodyAggregate) []string {
	var out []string
	for _, e := range a.Elements {
		out = append(out, ast.Variables(e)...)
	}
	return out
}

// plan orders elems. It returns the ordered elements, the bound set after
// grounding all of them, and the elements that could not be scheduled.
func (pl planner) plan(elems []ast.BodyElement, bound varSet) ([]ast.BodyElement, varSet, []ast.BodyElement) {
	bound = bound.clone()
	rest := append([]ast.BodyElement(nil), elems...)
	var out []ast.BodyElement

	for len(rest) > 0 {
		pick := -1
		var pickBinds []string
		for i, e := range rest {
			binds, positive, ok := pl.ready(e, bound)
			if !ok {
				continue
			}
			if positive {
				pick, pickBinds = i, binds
				break
			}
			if pick < 0 {
				pick, pickBinds = i, binds
			}
		}
		if pick < 0 {
			return out, bound, rest
		}
		out = append(out, rest[pick])
		bound.addAll(pickBinds)
		rest = append(rest[:pick], rest[pick+1:]...)
	}
	return out, bound, nil
}
