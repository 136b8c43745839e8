package depgraph

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/leapstack-labs/leapasp/pkg/ast"
	"github.com/leapstack-labs/leapasp/pkg/symbol"
	"github.com/leapstack-labs/leapasp/pkg/token"
)

// HeadCycle is a disjunctive rule with two head predicates depending
// positively on each other.
type HeadCycle struct {
	Span       token.Span
	Rule       string
	Predicates []string

	Node *ast.Rule
}

func (h HeadCycle) String() string {
	return fmt.Sprintf("line %d: head cycle through %v in %s", h.Span.Start.Line, h.Predicates, h.Rule)
}

// Program is the dependency graph of a program together with its
// disjunctive rules.
type Program struct {
	*Graph
	disjunctive []*ast.Rule
}

// Build creates the dependency graph of stmts. Every head predicate of a
// rule depends on every predicate in its body; predicates in the
// condition of a head element also become dependencies of that element.
// Weak constraints and show statements contribute no edges.
func Build(stmts []ast.Statement) *Program {
	p := &Program{Graph: NewGraph()}
	for _, stmt := range stmts {
		r, ok := stmt.(*ast.Rule)
		if !ok {
			continue
		}
		p.addRule(r)
	}
	return p
}

func (p *Program) addRule(r *ast.Rule) {
	var body []dependency
	for _, e := range r.Body {
		body = append(body, bodyDependencies(e)...)
	}

	var heads []string
	switch h := r.Head.(type) {
	case *ast.Literal:
		if pred, ok := literalPredicate(h); ok && h.Sign == ast.NoSign {
			heads = append(heads, pred)
			p.addDependencies(pred, body)
		}
	case *ast.Disjunction:
		for _, c := range h.Elements {
			heads = append(heads, p.addConditional(c, body)...)
		}
		if len(h.Elements) > 1 {
			p.disjunctive = append(p.disjunctive, r)
		}
	case *ast.Aggregate:
		for _, c := range h.Elements {
			heads = append(heads, p.addConditional(c, body)...)
		}
	}
	if len(heads) == 0 {
		// Constraints still mention their body predicates.
		for _, d := range body {
			p.AddNode(d.pred)
		}
	}
}

func (p *Program) addConditional(c *ast.ConditionalLiteral, body []dependency) []string {
	pred, ok := literalPredicate(c.Literal)
	if !ok {
		return nil
	}
	p.addDependencies(pred, body)
	for _, l := range c.Condition {
		if cp, ok := literalPredicate(l); ok {
			p.AddEdge(cp, pred, l.Sign != ast.NoSign)
		}
	}
	return []string{pred}
}

func (p *Program) addDependencies(head string, body []dependency) {
	p.AddNode(head)
	for _, d := range body {
		p.AddEdge(d.pred, head, d.negative)
	}
}

// HeadCycles returns the disjunctive rules whose head holds two
// predicates of the same component of the positive graph. For such rules
// shifting the disjunction does not preserve the stable models.
func (p *Program) HeadCycles() []HeadCycle {
	if len(p.disjunctive) == 0 {
		return nil
	}
	compOf := make(map[string]int)
	for i, comp := range p.Positive().Components() {
		for _, id := range comp {
			compOf[id] = i
		}
	}

	var out []HeadCycle
	for _, r := range p.disjunctive {
		byComp := make(map[int][]string)
		for _, c := range r.Head.(*ast.Disjunction).Elements {
			pred, ok := literalPredicate(c.Literal)
			if !ok {
				continue
			}
			comp := compOf[pred]
			byComp[comp] = append(byComp[comp], pred)
		}
		comps := make([]int, 0, len(byComp))
		for comp := range byComp {
			comps = append(comps, comp)
		}
		slices.Sort(comps)
		for _, comp := range comps {
			preds := byComp[comp]
			if len(preds) > 1 && p.componentIsCyclic(comp, compOf) {
				slices.Sort(preds)
				out = append(out, HeadCycle{Span: r.GetSpan(), Rule: r.String(), Predicates: slices.Compact(preds), Node: r})
				break
			}
		}
	}
	return out
}

// componentIsCyclic reports whether the positive component comp contains
// a cycle; distinct head predicates sharing a component always do, and a
// predicate repeated in one head needs a positive self loop.
func (p *Program) componentIsCyclic(comp int, compOf map[string]int) bool {
	members := 0
	for id, c := range compOf {
		if c != comp {
			continue
		}
		members++
		if negative, ok := p.edges[id][id]; ok && !negative {
			return true
		}
	}
	return members > 1
}

type dependency struct {
	pred     string
	negative bool
}

// bodyDependencies returns the predicates a body element depends on.
// Everything under negation or inside an aggregate is a negative
// dependency.
func bodyDependencies(e ast.BodyElement) []dependency {
	var out []dependency
	add := func(l *ast.Literal, negative bool) {
		if pred, ok := literalPredicate(l); ok {
			out = append(out, dependency{pred: pred, negative: negative || l.Sign != ast.NoSign})
		}
	}
	switch e := e.(type) {
	case *ast.Literal:
		if agg, ok := e.Atom.(*ast.BodyAggregate); ok {
			for _, elem := range agg.Elements {
				for _, l := range elem.Condition {
					add(l, true)
				}
			}
			return out
		}
		add(e, false)
	case *ast.ConditionalLiteral:
		add(e.Literal, false)
		for _, l := range e.Condition {
			add(l, true)
		}
	}
	return out
}

// literalPredicate returns the predicate of a literal over a symbolic
// atom.
func literalPredicate(l *ast.Literal) (string, bool) {
	atom, ok := l.Atom.(*ast.SymbolicAtom)
	if !ok {
		return "", false
	}
	return AtomPredicate(atom)
}

// AtomPredicate returns the predicate "name/arity" of a symbolic atom,
// "-name/arity" for classical negation. Atoms that are not functions,
// such as tuples and numbers, have no predicate.
func AtomPredicate(atom *ast.SymbolicAtom) (string, bool) {
	return termPredicate(atom.Symbol, "")
}

func termPredicate(t ast.Term, sign string) (string, bool) {
	switch t := t.(type) {
	case *ast.Function:
		if t.Name == "" {
			return "", false
		}
		return sign + t.Name + "/" + strconv.Itoa(len(t.Arguments)), true
	case *ast.SymbolicTerm:
		s := t.Symbol
		if s.Type() != symbol.Function || s.Name() == "" {
			return "", false
		}
		if s.IsNegative() {
			sign = "-"
		}
		return sign + s.Name() + "/" + strconv.Itoa(s.Arity()), true
	case *ast.UnaryOperation:
		if t.Op == ast.UnaryMinus && sign == "" {
			return termPredicate(t.Argument, "-")
		}
	}
	return "", false
}
